// Package price implements the consumer-side trust and staleness checks for
// Pyth price updates bridged to Solana via Wormhole.
//
// Price updates are verified by an on-chain receiver program that checks
// Wormhole guardian signatures and writes the resulting account. This package
// never verifies signatures itself; it reads the verification level the
// receiver recorded and decides whether a stored update is trusted enough and
// recent enough for a caller to use.
package price

import (
	"math"

	"github.com/gagliardetto/solana-go"
)

// VerificationKind is the tag of a VerificationLevel.
type VerificationKind uint8

const (
	// VerificationPartial means only NumSignatures guardian signatures were
	// checked for the update.
	VerificationPartial VerificationKind = iota

	// VerificationFull means signatures for two thirds of the guardian set
	// were checked.
	VerificationFull
)

// VerificationLevel describes how much a price update has been verified.
//
// The usual process checks signatures for two thirds of the guardian set, but
// that can be cumbersome on Solana because of transaction size limits, so
// partial verification is also allowed.
//
// Using partially verified price updates is dangerous: it lowers the number
// of guardians that would need to collude to produce a malicious update.
type VerificationLevel struct {
	Kind VerificationKind

	// NumSignatures is the number of checked signatures. Only meaningful when
	// Kind is VerificationPartial.
	NumSignatures uint8
}

// FullVerification returns the level meaning two thirds of the guardian set
// was checked.
func FullVerification() VerificationLevel {
	return VerificationLevel{Kind: VerificationFull}
}

// PartialVerification returns the level meaning exactly numSignatures
// guardian signatures were checked.
func PartialVerification(numSignatures uint8) VerificationLevel {
	return VerificationLevel{Kind: VerificationPartial, NumSignatures: numSignatures}
}

// Gte reports whether l carries at least as much trust as other.
// Full is greater than every partial level, and partial levels are ordered by
// their signature count. The comparison is an explicit switch on the tag so
// that adding a variant can never silently reorder levels.
func (l VerificationLevel) Gte(other VerificationLevel) bool {
	switch l.Kind {
	case VerificationFull:
		return true
	default:
		if other.Kind == VerificationFull {
			return false
		}
		return l.NumSignatures >= other.NumSignatures
	}
}

// PriceFeedMessage is the attested payload of a price update, immutable once
// written. The true price is (Price ± Conf) * 10^Exponent.
type PriceFeedMessage struct {
	FeedID   FeedID
	Price    int64
	Conf     uint64
	Exponent int32

	// PublishTime is the timestamp of this price update in Unix seconds.
	PublishTime int64

	// PrevPublishTime is the timestamp of the previous update for the same
	// feed. It lets users identify the single unique update for any moment in
	// time: for any time t, the unique update is the one with
	// PrevPublishTime < t <= PublishTime. It may equal PublishTime when the
	// update was produced on a slot where aggregation was unsuccessful.
	PrevPublishTime int64

	EmaPrice int64
	EmaConf  uint64
}

// PriceUpdate is a price update account written by the receiver program.
// WriteAuthority may close the account to reclaim rent or overwrite it with a
// different update; this package only ever reads it. PostedSlot is the slot
// at which the update was posted.
type PriceUpdate struct {
	WriteAuthority    solana.PublicKey
	VerificationLevel VerificationLevel
	PriceMessage      PriceFeedMessage
	PostedSlot        uint64
}

// Price is the projection of a price update returned to callers.
type Price struct {
	Price       int64
	Conf        uint64
	Exponent    int32
	PublishTime int64
}

// GetPriceUnchecked returns the price for feedID from the update.
//
// Warning: this checks neither how recent the price is nor whether the update
// has been verified. Calling it without extra checks allows unverified or
// outdated prices through; it exists as an escape hatch for callers that
// perform their own policy checks.
func (u *PriceUpdate) GetPriceUnchecked(feedID FeedID) (Price, error) {
	if u.PriceMessage.FeedID != feedID {
		return Price{}, ErrMismatchedFeedID
	}
	return Price{
		Price:       u.PriceMessage.Price,
		Conf:        u.PriceMessage.Conf,
		Exponent:    u.PriceMessage.Exponent,
		PublishTime: u.PriceMessage.PublishTime,
	}, nil
}

// GetPriceNoOlderThanWithCustomVerificationLevel returns the price for feedID
// if the update meets requiredLevel and is no older than maximumAge seconds
// at currentTime (Unix seconds).
//
// Checks run in a fixed order: verification level, then feed identity, then
// age. Callers observing error precedence can rely on that order.
//
// Warning: lowering requiredLevel from full to partial increases the risk of
// using a malicious price update. See VerificationLevel.
func (u *PriceUpdate) GetPriceNoOlderThanWithCustomVerificationLevel(
	currentTime int64,
	maximumAge uint64,
	feedID FeedID,
	requiredLevel VerificationLevel,
) (Price, error) {
	if !u.VerificationLevel.Gte(requiredLevel) {
		return Price{}, ErrInsufficientVerificationLevel
	}
	p, err := u.GetPriceUnchecked(feedID)
	if err != nil {
		return Price{}, err
	}
	if saturatingAdd(p.PublishTime, maximumAge) < currentTime {
		return Price{}, ErrPriceTooOld
	}
	return p, nil
}

// GetPriceNoOlderThan returns the price for feedID if the update is fully
// verified and no older than maximumAge seconds at currentTime. This is the
// recommended entry point.
func (u *PriceUpdate) GetPriceNoOlderThan(currentTime int64, maximumAge uint64, feedID FeedID) (Price, error) {
	return u.GetPriceNoOlderThanWithCustomVerificationLevel(currentTime, maximumAge, feedID, FullVerification())
}

// saturatingAdd adds age seconds to a publish time, clamping at the maximum
// int64 instead of wrapping, so an absurdly large maximum age means "never
// stale" rather than an overflowed comparison.
func saturatingAdd(publishTime int64, age uint64) int64 {
	if age > math.MaxInt64 {
		return math.MaxInt64
	}
	if publishTime > math.MaxInt64-int64(age) {
		return math.MaxInt64
	}
	return publishTime + int64(age)
}
