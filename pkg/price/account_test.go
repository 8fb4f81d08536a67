package price

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenAccount builds the byte-for-byte account encoding by hand: the
// discriminator, then every field little-endian in declaration order, with
// the verification level as a tag byte plus payload.
func goldenAccount(t *testing.T, u *PriceUpdate) []byte {
	t.Helper()

	data := append([]byte{}, AccountDiscriminator[:]...)
	data = append(data, u.WriteAuthority[:]...)

	switch u.VerificationLevel.Kind {
	case VerificationPartial:
		data = append(data, 0, u.VerificationLevel.NumSignatures)
	case VerificationFull:
		data = append(data, 1)
	default:
		t.Fatalf("unknown verification kind %d", u.VerificationLevel.Kind)
	}

	data = append(data, u.PriceMessage.FeedID[:]...)
	data = binary.LittleEndian.AppendUint64(data, uint64(u.PriceMessage.Price))
	data = binary.LittleEndian.AppendUint64(data, u.PriceMessage.Conf)
	data = binary.LittleEndian.AppendUint32(data, uint32(u.PriceMessage.Exponent))
	data = binary.LittleEndian.AppendUint64(data, uint64(u.PriceMessage.PublishTime))
	data = binary.LittleEndian.AppendUint64(data, uint64(u.PriceMessage.PrevPublishTime))
	data = binary.LittleEndian.AppendUint64(data, uint64(u.PriceMessage.EmaPrice))
	data = binary.LittleEndian.AppendUint64(data, u.PriceMessage.EmaConf)
	data = binary.LittleEndian.AppendUint64(data, u.PostedSlot)
	return data
}

func TestParsePriceUpdateAccount(t *testing.T) {
	t.Run("PartialAccount", func(t *testing.T) {
		update := testUpdate(PartialVerification(5))
		update.WriteAuthority = solana.MustPublicKeyFromBase58("rec5EKMGg6MxZYaMdyBfgwp4d5rB9T1VQH5pJv5LtFJ")

		data := goldenAccount(t, update)
		assert.Len(t, data, AccountLen)

		parsed, err := ParsePriceUpdateAccount(data)
		require.NoError(t, err)
		assert.Equal(t, update, parsed)
	})

	t.Run("FullAccount", func(t *testing.T) {
		update := testUpdate(FullVerification())
		data := goldenAccount(t, update)
		assert.Len(t, data, AccountLen-1)

		parsed, err := ParsePriceUpdateAccount(data)
		require.NoError(t, err)
		assert.Equal(t, update, parsed)
	})

	t.Run("BadDiscriminator", func(t *testing.T) {
		update := testUpdate(FullVerification())
		data := goldenAccount(t, update)
		data[0] ^= 0xff

		_, err := ParsePriceUpdateAccount(data)
		assert.ErrorIs(t, err, ErrInvalidDiscriminator)
	})

	t.Run("TruncatedData", func(t *testing.T) {
		_, err := ParsePriceUpdateAccount(AccountDiscriminator[:4])
		assert.ErrorIs(t, err, ErrInvalidDiscriminator)
	})

	t.Run("UnknownVerificationTag", func(t *testing.T) {
		update := testUpdate(FullVerification())
		data := goldenAccount(t, update)
		data[40] = 7 // verification level tag

		_, err := ParsePriceUpdateAccount(data)
		assert.ErrorIs(t, err, ErrInvalidVerificationLevel)
	})
}

func TestMarshalAccount(t *testing.T) {
	for _, level := range []VerificationLevel{FullVerification(), PartialVerification(3)} {
		update := testUpdate(level)

		data, err := update.MarshalAccount()
		require.NoError(t, err)
		assert.Equal(t, goldenAccount(t, update), data)

		parsed, err := ParsePriceUpdateAccount(data)
		require.NoError(t, err)
		assert.Equal(t, update, parsed)
	}
}
