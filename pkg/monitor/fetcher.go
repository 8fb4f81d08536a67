package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound is returned when the queried account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Fetcher retrieves raw account data by address.
type Fetcher interface {
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
}

// RPCFetcher fetches accounts from a Solana RPC node.
type RPCFetcher struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewRPCFetcher creates a fetcher against the given RPC endpoint. An empty
// commitment defaults to finalized.
func NewRPCFetcher(endpoint string, commitment rpc.CommitmentType) *RPCFetcher {
	if commitment == "" {
		commitment = rpc.CommitmentFinalized
	}
	return &RPCFetcher{
		client:     rpc.New(endpoint),
		commitment: commitment,
	}
}

// AccountData returns the raw data of the account.
func (f *RPCFetcher) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	out, err := f.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: f.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("rpc get account info: %w", err)
	}
	if out == nil || out.Value == nil {
		return nil, ErrAccountNotFound
	}
	return out.Value.Data.GetBinary(), nil
}
