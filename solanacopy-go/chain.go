package solanacopygo

import (
	"context"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	lookup "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ChainClient is the solana-go RPC implementation of the external collaborator
// interfaces the core depends on. The core itself only sees the narrow
// interfaces, so tests and alternative transports can swap it out.
type ChainClient struct {
	rpc *rpc.Client
	Log *logrus.Logger
}

// NewChainClient builds a rate-limited RPC client for the given endpoint.
func NewChainClient(endpoint string) *ChainClient {
	return &ChainClient{
		rpc: rpc.NewWithCustomRPCClient(rpc.NewWithLimiter(
			endpoint,
			rate.Every(time.Second),
			5,
		)),
		Log: newDefaultLogger(),
	}
}

// NewChainClientFromRPC wraps an existing RPC client.
func NewChainClientFromRPC(client *rpc.Client) *ChainClient {
	return &ChainClient{rpc: client, Log: newDefaultLogger()}
}

// FetchLookupTable returns the full address list of an on-chain lookup table.
func (c *ChainClient) FetchLookupTable(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error) {
	info, err := c.rpc.GetAccountInfo(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lookup table %s: %w", table, err)
	}

	state, err := lookup.DecodeAddressLookupTableState(info.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to decode lookup table %s: %w", table, err)
	}

	return state.Addresses, nil
}

// FetchAccountOwner returns the owner program of the given account.
func (c *ChainClient) FetchAccountOwner(ctx context.Context, account solana.PublicKey) (solana.PublicKey, error) {
	info, err := c.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to fetch account %s: %w", account, err)
	}
	if info.Value == nil {
		return solana.PublicKey{}, fmt.Errorf("account %s not found", account)
	}
	return info.Value.Owner, nil
}

// FetchTransaction fetches a confirmed transaction by signature and
// normalizes it.
func (c *ChainClient) FetchTransaction(ctx context.Context, signature solana.Signature) (*TransactionRecord, error) {
	tx, err := c.rpc.GetTransaction(
		ctx,
		signature,
		&rpc.GetTransactionOpts{
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: pointer.ToUint64(0),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", signature, err)
	}

	return NewTransactionRecord(tx)
}
