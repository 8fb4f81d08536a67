// Package pda derives the program addresses used by the Pyth receiver
// program on Solana. Callers assembling post-update or price-consuming
// instructions need these accounts.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ReceiverProgramID is the address of the Pyth receiver program.
var ReceiverProgramID = solana.MustPublicKeyFromBase58("rec5EKMGg6MxZYaMdyBfgwp4d5rB9T1VQH5pJv5LtFJ")

// WormholeReceiverProgramID is the address of the Wormhole receiver program
// that stores guardian sets.
var WormholeReceiverProgramID = solana.MustPublicKeyFromBase58("HDwcJBJXjL9FpJ7UBsYBtaDjsBUhuLCUYoz3zr8SWWaQ")

// Seeds for the receiver program's derived accounts.
const (
	configSeed      = "config"
	treasurySeed    = "treasury"
	guardianSetSeed = "GuardianSet"
)

// ConfigAddress returns the receiver program's config account address.
func ConfigAddress() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(configSeed)},
		ReceiverProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving config address: %w", err)
	}
	return addr, nil
}

// TreasuryAddress returns the treasury account address for the given treasury
// id. The receiver spreads fees over multiple treasury accounts to reduce
// write contention.
func TreasuryAddress(treasuryID uint8) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(treasurySeed), {treasuryID}},
		ReceiverProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving treasury address: %w", err)
	}
	return addr, nil
}

// GuardianSetAddress returns the Wormhole guardian set account address for
// the given index. The index is encoded big-endian in the seed.
func GuardianSetAddress(wormholeProgramID solana.PublicKey, guardianSetIndex uint32) (solana.PublicKey, error) {
	seed := []byte{
		byte(guardianSetIndex >> 24),
		byte(guardianSetIndex >> 16),
		byte(guardianSetIndex >> 8),
		byte(guardianSetIndex),
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(guardianSetSeed), seed},
		wormholeProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving guardian set address: %w", err)
	}
	return addr, nil
}
