package price

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationLevelGte(t *testing.T) {
	t.Run("FullDominatesEverything", func(t *testing.T) {
		assert.True(t, FullVerification().Gte(FullVerification()))
		assert.True(t, FullVerification().Gte(PartialVerification(0)))
		assert.True(t, FullVerification().Gte(PartialVerification(255)))
	})

	t.Run("PartialNeverReachesFull", func(t *testing.T) {
		assert.False(t, PartialVerification(0).Gte(FullVerification()))
		assert.False(t, PartialVerification(255).Gte(FullVerification()))
	})

	t.Run("PartialOrderedBySignatureCount", func(t *testing.T) {
		assert.True(t, PartialVerification(5).Gte(PartialVerification(5)))
		assert.True(t, PartialVerification(6).Gte(PartialVerification(5)))
		assert.False(t, PartialVerification(4).Gte(PartialVerification(5)))
	})

	t.Run("Reflexive", func(t *testing.T) {
		levels := []VerificationLevel{
			FullVerification(),
			PartialVerification(0),
			PartialVerification(1),
			PartialVerification(255),
		}
		for _, level := range levels {
			assert.True(t, level.Gte(level))
		}
	})
}

func testUpdate(level VerificationLevel) *PriceUpdate {
	feedID, _ := ParseFeedID("0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d")
	return &PriceUpdate{
		WriteAuthority:    solana.PublicKey{},
		VerificationLevel: level,
		PriceMessage: PriceFeedMessage{
			FeedID:          feedID,
			Price:           6887568650000,
			Conf:            1500000000,
			Exponent:        -8,
			PublishTime:     1000,
			PrevPublishTime: 999,
			EmaPrice:        6800000000000,
			EmaConf:         1400000000,
		},
		PostedSlot: 7262895,
	}
}

func TestGetPriceUnchecked(t *testing.T) {
	update := testUpdate(PartialVerification(3))

	t.Run("ReturnsEmbeddedFields", func(t *testing.T) {
		p, err := update.GetPriceUnchecked(update.PriceMessage.FeedID)
		require.NoError(t, err)
		assert.Equal(t, update.PriceMessage.Price, p.Price)
		assert.Equal(t, update.PriceMessage.Conf, p.Conf)
		assert.Equal(t, update.PriceMessage.Exponent, p.Exponent)
		assert.Equal(t, update.PriceMessage.PublishTime, p.PublishTime)
	})

	t.Run("MismatchedFeed", func(t *testing.T) {
		var other FeedID
		other[0] = 0xff
		_, err := update.GetPriceUnchecked(other)
		assert.ErrorIs(t, err, ErrMismatchedFeedID)
	})
}

func TestGetPriceNoOlderThan(t *testing.T) {
	update := testUpdate(PartialVerification(3))
	feedID := update.PriceMessage.FeedID

	t.Run("PartialRecordFailsDefaultEntryPoint", func(t *testing.T) {
		_, err := update.GetPriceNoOlderThan(1010, 30, feedID)
		assert.ErrorIs(t, err, ErrInsufficientVerificationLevel)
	})

	t.Run("CustomLevelAccepts", func(t *testing.T) {
		p, err := update.GetPriceNoOlderThanWithCustomVerificationLevel(1010, 30, feedID, PartialVerification(3))
		require.NoError(t, err)
		assert.Equal(t, int64(6887568650000), p.Price)
		assert.Equal(t, uint64(1500000000), p.Conf)
		assert.Equal(t, int32(-8), p.Exponent)
		assert.Equal(t, int64(1000), p.PublishTime)
	})

	t.Run("StalePriceRejected", func(t *testing.T) {
		// publish_time 1000 + maximum_age 30 < current_time 1040
		_, err := update.GetPriceNoOlderThanWithCustomVerificationLevel(1040, 30, feedID, PartialVerification(3))
		assert.ErrorIs(t, err, ErrPriceTooOld)
	})

	t.Run("ExactBoundaryIsFresh", func(t *testing.T) {
		_, err := update.GetPriceNoOlderThanWithCustomVerificationLevel(1030, 30, feedID, PartialVerification(3))
		assert.NoError(t, err)
	})

	t.Run("HugeMaximumAgeSaturates", func(t *testing.T) {
		recent := testUpdate(FullVerification())
		recent.PriceMessage.PublishTime = math.MaxInt64 - 10
		_, err := recent.GetPriceNoOlderThan(math.MaxInt64, math.MaxUint64, recent.PriceMessage.FeedID)
		require.NoError(t, err)
	})

	t.Run("TrustCheckedBeforeIdentity", func(t *testing.T) {
		var other FeedID
		other[0] = 0xff

		full := testUpdate(FullVerification())
		_, err := full.GetPriceNoOlderThan(1010, 30, other)
		assert.ErrorIs(t, err, ErrMismatchedFeedID)

		weak := testUpdate(PartialVerification(0))
		_, err = weak.GetPriceNoOlderThan(1010, 30, other)
		assert.ErrorIs(t, err, ErrInsufficientVerificationLevel)
	})

	t.Run("IdentityCheckedBeforeFreshness", func(t *testing.T) {
		var other FeedID
		other[0] = 0xff
		stale := testUpdate(FullVerification())
		_, err := stale.GetPriceNoOlderThan(1040, 30, other)
		assert.ErrorIs(t, err, ErrMismatchedFeedID)
	})
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, int64(1030), saturatingAdd(1000, 30))
	assert.Equal(t, int64(math.MaxInt64), saturatingAdd(math.MaxInt64-10, math.MaxUint64))
	assert.Equal(t, int64(math.MaxInt64), saturatingAdd(1, math.MaxInt64))
	assert.Equal(t, int64(29), saturatingAdd(-1, 30))
}
