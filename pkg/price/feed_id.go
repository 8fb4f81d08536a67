package price

import (
	"encoding/hex"
)

// FeedID is the 32 byte unique identifier of a Pyth price feed.
// Feeds are often referred to by a 64 character hex string (with or without a
// 0x prefix); the raw bytes match the on-chain encoding with no byte-order
// transform.
type FeedID [32]byte

// ParseFeedID parses a feed id from its hex string form.
// It accepts exactly 66 characters (a two character prefix followed by 64 hex
// characters) or exactly 64 hex characters, case-insensitive.
func ParseFeedID(input string) (FeedID, error) {
	var id FeedID

	switch len(input) {
	case 66:
		input = input[2:]
	case 64:
	default:
		return id, ErrFeedIDMustBe32Bytes
	}

	decoded, err := hex.DecodeString(input)
	if err != nil {
		return id, ErrFeedIDNonHexCharacter
	}

	copy(id[:], decoded)
	return id, nil
}

// String returns the 0x-prefixed lowercase hex form of the feed id.
func (id FeedID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Bytes returns the raw 32 byte identifier.
func (id FeedID) Bytes() []byte {
	return id[:]
}
