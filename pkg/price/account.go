package price

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// AccountDiscriminator is the 8 byte prefix identifying a price update
// account, sha256("account:PriceUpdateV2")[:8].
var AccountDiscriminator = [8]byte{34, 241, 35, 99, 157, 126, 244, 205}

// AccountLen is the maximum serialized size of a price update account:
// discriminator, write authority, verification level (tag plus payload),
// price message, posted slot. A fully verified account is one byte shorter
// because the full tag carries no payload.
const AccountLen = 8 + 32 + 2 + 32 + 8 + 8 + 4 + 8 + 8 + 8 + 8 + 8

// MarshalWithEncoder writes the Borsh form of the level: the tag byte in
// declaration order (partial = 0, full = 1) followed by the signature count
// for partial levels.
func (l VerificationLevel) MarshalWithEncoder(encoder *bin.Encoder) error {
	switch l.Kind {
	case VerificationPartial:
		if err := encoder.Encode(uint8(VerificationPartial)); err != nil {
			return err
		}
		return encoder.Encode(l.NumSignatures)
	case VerificationFull:
		return encoder.Encode(uint8(VerificationFull))
	default:
		return fmt.Errorf("%w: %d", ErrInvalidVerificationLevel, l.Kind)
	}
}

// UnmarshalWithDecoder reads the Borsh form written by MarshalWithEncoder.
func (l *VerificationLevel) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	switch VerificationKind(tag) {
	case VerificationPartial:
		numSignatures, err := decoder.ReadUint8()
		if err != nil {
			return err
		}
		*l = PartialVerification(numSignatures)
	case VerificationFull:
		*l = FullVerification()
	default:
		return fmt.Errorf("%w: %d", ErrInvalidVerificationLevel, tag)
	}
	return nil
}

// ParsePriceUpdateAccount decodes a price update from raw account data as
// stored by the receiver program, discriminator included.
func ParsePriceUpdateAccount(data []byte) (*PriceUpdate, error) {
	if len(data) < len(AccountDiscriminator) || !bytes.Equal(data[:len(AccountDiscriminator)], AccountDiscriminator[:]) {
		return nil, ErrInvalidDiscriminator
	}
	update := new(PriceUpdate)
	if err := bin.NewBorshDecoder(data[len(AccountDiscriminator):]).Decode(update); err != nil {
		return nil, fmt.Errorf("decoding price update account: %w", err)
	}
	return update, nil
}

// MarshalAccount serializes the update in account form, discriminator
// included. It is the inverse of ParsePriceUpdateAccount.
func (u *PriceUpdate) MarshalAccount() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(AccountDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(u); err != nil {
		return nil, fmt.Errorf("encoding price update account: %w", err)
	}
	return buf.Bytes(), nil
}
