package price

import "errors"

// Error variables for consistent error handling.
// Every accessor failure maps to exactly one of these; checks short-circuit
// on the first failure and never aggregate.
var (
	// ErrMismatchedFeedID is returned when the stored update belongs to a
	// different feed than the one requested.
	ErrMismatchedFeedID = errors.New("mismatched feed id")

	// ErrInsufficientVerificationLevel is returned when the stored update was
	// verified against fewer guardian signatures than the caller requires.
	ErrInsufficientVerificationLevel = errors.New("insufficient verification level")

	// ErrPriceTooOld is returned when the update's publish time plus the
	// allowed maximum age is behind the supplied current time.
	ErrPriceTooOld = errors.New("price too old")

	// ErrFeedIDMustBe32Bytes is returned when a feed id string is neither 64
	// hex characters nor 66 characters with a 0x prefix.
	ErrFeedIDMustBe32Bytes = errors.New("feed id must be 32 bytes")

	// ErrFeedIDNonHexCharacter is returned when a feed id string of the right
	// length contains a character outside [0-9a-fA-F].
	ErrFeedIDNonHexCharacter = errors.New("feed id contains non-hex character")

	// ErrInvalidDiscriminator is returned when account data does not start
	// with the price update account discriminator.
	ErrInvalidDiscriminator = errors.New("invalid account discriminator")

	// ErrInvalidVerificationLevel is returned when account data carries an
	// unknown verification level tag.
	ErrInvalidVerificationLevel = errors.New("invalid verification level tag")
)
