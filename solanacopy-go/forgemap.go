package solanacopygo

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ForgingMap substitutes original addresses with the replacement signer's
// equivalents. Built fresh per clone request; it encodes one specific
// substitute signer and one specific pair of mints, so it is never shared.
type ForgingMap map[solana.PublicKey]solana.PublicKey

// Resolve maps an address through the table, identity when absent.
func (m ForgingMap) Resolve(key solana.PublicKey) solana.PublicKey {
	if mapped, ok := m[key]; ok {
		return mapped
	}
	return key
}

// AccountOwnerFetcher returns the owner program of an on-chain account. Used
// to discriminate which token program a mint belongs to.
type AccountOwnerFetcher interface {
	FetchAccountOwner(ctx context.Context, account solana.PublicKey) (solana.PublicKey, error)
}

// ForgingMapBuilder derives the substitution table for a signer swap: the
// trader's own address and the trader's associated token accounts for both
// trade mints.
type ForgingMapBuilder struct {
	owners AccountOwnerFetcher
	cache  *ttlCache[solana.PublicKey]
	Log    *logrus.Logger
}

const tokenProgramTTL = 10 * time.Minute

func NewForgingMapBuilder(owners AccountOwnerFetcher) *ForgingMapBuilder {
	return &ForgingMapBuilder{
		owners: owners,
		cache:  newTTLCache[solana.PublicKey](tokenProgramTTL),
		Log:    newDefaultLogger(),
	}
}

// Build derives the full substitution table. All four identifiers are
// required: a partial map would forge an instruction set that references a
// mix of the trader's and the substitute's accounts.
func (b *ForgingMapBuilder) Build(ctx context.Context, trader, substitute, inputMint, outputMint solana.PublicKey) (ForgingMap, error) {
	if trader.IsZero() || substitute.IsZero() {
		return nil, fmt.Errorf("trader and substitute addresses are required")
	}
	if inputMint.IsZero() || outputMint.IsZero() {
		return nil, fmt.Errorf("input and output mints are required")
	}

	forgingMap := ForgingMap{trader: substitute}

	for _, mint := range []solana.PublicKey{inputMint, outputMint} {
		if mint.Equals(NATIVE_SOL_MINT_PROGRAM_ID) {
			continue
		}

		tokenProgram := b.tokenProgramForMint(ctx, mint)

		traderATA, err := deriveAssociatedTokenAccount(trader, mint, tokenProgram)
		if err != nil {
			return nil, fmt.Errorf("failed to derive trader ATA for mint %s: %w", mint, err)
		}
		substituteATA, err := deriveAssociatedTokenAccount(substitute, mint, tokenProgram)
		if err != nil {
			return nil, fmt.Errorf("failed to derive substitute ATA for mint %s: %w", mint, err)
		}

		forgingMap[traderATA] = substituteATA
	}

	return forgingMap, nil
}

// tokenProgramForMint discriminates classic vs extended token program for the
// mint. Fetch failures and unknown owners default to the classic program,
// which covers the overwhelming majority of mints.
func (b *ForgingMapBuilder) tokenProgramForMint(ctx context.Context, mint solana.PublicKey) solana.PublicKey {
	if cached, ok := b.cache.get(mint); ok {
		return cached
	}

	owner, err := b.owners.FetchAccountOwner(ctx, mint)
	if err != nil {
		b.Log.Warnf("failed to fetch owner of mint %s, assuming classic token program: %v", mint, err)
		return solana.TokenProgramID
	}

	tokenProgram := solana.TokenProgramID
	if owner.Equals(solana.Token2022ProgramID) {
		tokenProgram = solana.Token2022ProgramID
	}

	b.cache.set(mint, tokenProgram)
	return tokenProgram
}

// deriveAssociatedTokenAccount computes the deterministic per-owner-per-mint
// token account address under the given token program.
func deriveAssociatedTokenAccount(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			tokenProgram.Bytes(),
			mint.Bytes(),
		},
		solana.SPLAssociatedTokenAccountProgramID,
	)
	return address, err
}
