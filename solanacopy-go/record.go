package solanacopygo

import (
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenBalance is one pre or post token balance entry, normalized to raw units.
type TokenBalance struct {
	AccountIndex uint16
	Owner        solana.PublicKey
	Mint         solana.PublicKey
	RawAmount    uint64
	Decimals     uint8
}

// LookupTableReference is a compact address-table reference carried by a
// versioned transaction that has not been expanded yet.
type LookupTableReference struct {
	TableAddress    solana.PublicKey
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// TransactionRecord is the single normalized shape every transaction takes
// before any classification or forging runs. It is an immutable snapshot:
// derived structures are always new values, the record itself is never edited.
type TransactionRecord struct {
	Signatures []solana.Signature

	// StaticKeys is the transaction's inline account list. AccountKeys is the
	// fully expanded table: static accounts, then every table's writable
	// entries in table order, then every table's readonly entries in table
	// order. Instructions index into AccountKeys.
	StaticKeys  solana.PublicKeySlice
	AccountKeys solana.PublicKeySlice

	// Writable runs parallel to AccountKeys.
	Writable []bool

	// Unavailable runs parallel to AccountKeys; true marks a slot whose
	// lookup-table entry could not be resolved. The slot is kept so every
	// later entry stays at the index the transaction compiled against. Nil
	// when every account resolved.
	Unavailable []bool

	// TableReferences holds lookup tables that still need resolution. Empty
	// when the execution metadata already carried the loaded addresses.
	TableReferences []LookupTableReference

	Instructions      []solana.CompiledInstruction
	InnerInstructions map[int][]solana.CompiledInstruction

	PreBalances  []uint64
	PostBalances []uint64

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance

	LogMessages []string
	Succeeded   bool

	numRequiredSignatures int
}

// NewTransactionRecord normalizes a fetched transaction into the single shape
// the core operates on.
func NewTransactionRecord(tx *rpc.GetTransactionResult) (*TransactionRecord, error) {
	if tx == nil || tx.Meta == nil {
		return nil, fmt.Errorf("transaction has no execution metadata")
	}

	txInfo, err := tx.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return NewTransactionRecordFromTransaction(txInfo, tx.Meta)
}

// NewTransactionRecordFromTransaction normalizes a raw transaction plus its
// metadata, e.g. when the pair arrives over a push stream instead of an RPC
// fetch.
func NewTransactionRecordFromTransaction(tx *solana.Transaction, txMeta *rpc.TransactionMeta) (*TransactionRecord, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}
	if txMeta == nil {
		return nil, fmt.Errorf("transaction metadata is nil")
	}

	msg := &tx.Message
	numSigners := int(msg.Header.NumRequiredSignatures)

	record := &TransactionRecord{
		Signatures:            tx.Signatures,
		StaticKeys:            msg.AccountKeys,
		Instructions:          msg.Instructions,
		InnerInstructions:     make(map[int][]solana.CompiledInstruction),
		PreBalances:           txMeta.PreBalances,
		PostBalances:          txMeta.PostBalances,
		LogMessages:           txMeta.LogMessages,
		Succeeded:             txMeta.Err == nil,
		numRequiredSignatures: numSigners,
	}

	record.AccountKeys = append(record.AccountKeys, msg.AccountKeys...)
	record.AccountKeys = append(record.AccountKeys, txMeta.LoadedAddresses.Writable...)
	record.AccountKeys = append(record.AccountKeys, txMeta.LoadedAddresses.ReadOnly...)

	record.Writable = staticWritableFlags(msg)
	for range txMeta.LoadedAddresses.Writable {
		record.Writable = append(record.Writable, true)
	}
	for range txMeta.LoadedAddresses.ReadOnly {
		record.Writable = append(record.Writable, false)
	}

	// Tables the metadata did not expand for us are kept as references for
	// AddressTableResolver.
	if len(txMeta.LoadedAddresses.Writable)+len(txMeta.LoadedAddresses.ReadOnly) == 0 {
		for _, lookup := range msg.AddressTableLookups {
			record.TableReferences = append(record.TableReferences, LookupTableReference{
				TableAddress:    lookup.AccountKey,
				WritableIndexes: lookup.WritableIndexes,
				ReadonlyIndexes: lookup.ReadonlyIndexes,
			})
		}
	}

	for _, inner := range txMeta.InnerInstructions {
		record.InnerInstructions[int(inner.Index)] = inner.Instructions
	}

	record.PreTokenBalances = normalizeTokenBalances(txMeta.PreTokenBalances)
	record.PostTokenBalances = normalizeTokenBalances(txMeta.PostTokenBalances)

	return record, nil
}

func staticWritableFlags(msg *solana.Message) []bool {
	numSigners := int(msg.Header.NumRequiredSignatures)
	numReadonlySigned := int(msg.Header.NumReadonlySignedAccounts)
	numReadonlyUnsigned := int(msg.Header.NumReadonlyUnsignedAccounts)

	flags := make([]bool, len(msg.AccountKeys))
	for i := range msg.AccountKeys {
		if i < numSigners {
			flags[i] = i < numSigners-numReadonlySigned
		} else {
			flags[i] = i < len(msg.AccountKeys)-numReadonlyUnsigned
		}
	}
	return flags
}

func normalizeTokenBalances(balances []rpc.TokenBalance) []TokenBalance {
	normalized := make([]TokenBalance, 0, len(balances))
	for _, balance := range balances {
		var owner solana.PublicKey
		if balance.Owner != nil {
			owner = *balance.Owner
		}

		var raw uint64
		var decimals uint8
		if balance.UiTokenAmount != nil {
			// A raw amount that does not parse is unusable for delta math;
			// the entry is kept with a zero amount so ownership stays visible.
			raw, _ = strconv.ParseUint(balance.UiTokenAmount.Amount, 10, 64)
			decimals = balance.UiTokenAmount.Decimals
		}

		normalized = append(normalized, TokenBalance{
			AccountIndex: balance.AccountIndex,
			Owner:        owner,
			Mint:         balance.Mint,
			RawAmount:    raw,
			Decimals:     decimals,
		})
	}
	return normalized
}

// Account resolves an instruction account index against the expanded table.
// The second return is false when the index points past the table or lands on
// a slot whose lookup-table entry never resolved.
func (r *TransactionRecord) Account(index uint16) (solana.PublicKey, bool) {
	if int(index) >= len(r.AccountKeys) || r.isUnavailable(int(index)) {
		return solana.PublicKey{}, false
	}
	return r.AccountKeys[index], true
}

func (r *TransactionRecord) isUnavailable(index int) bool {
	return index < len(r.Unavailable) && r.Unavailable[index]
}

// AccountIndex returns the position of the given key in the expanded table,
// -1 when absent.
func (r *TransactionRecord) AccountIndex(key solana.PublicKey) int {
	for i, candidate := range r.AccountKeys {
		if candidate.Equals(key) {
			return i
		}
	}
	return -1
}

// IsSignerIndex reports whether the account at the given expanded-table index
// signed the original transaction.
func (r *TransactionRecord) IsSignerIndex(index int) bool {
	return index >= 0 && index < r.numRequiredSignatures
}

// IsWritableIndex reports whether the account at the given expanded-table
// index was writable in the original transaction.
func (r *TransactionRecord) IsWritableIndex(index int) bool {
	return index >= 0 && index < len(r.Writable) && r.Writable[index]
}

// AccountsResolvable reports whether every account index the instruction
// references resolves inside the expanded table. Instructions that fail this
// degrade to "accounts unavailable" rather than aborting the pipeline.
func (r *TransactionRecord) AccountsResolvable(instr solana.CompiledInstruction) bool {
	if _, ok := r.Account(instr.ProgramIDIndex); !ok {
		return false
	}
	for _, accountIndex := range instr.Accounts {
		if _, ok := r.Account(accountIndex); !ok {
			return false
		}
	}
	return true
}

// InnerInstructionsFor returns the nested instructions produced by the outer
// instruction at the given index.
func (r *TransactionRecord) InnerInstructionsFor(outerIndex int) []solana.CompiledInstruction {
	return r.InnerInstructions[outerIndex]
}

// WithExpandedKeys derives a new record carrying a fully expanded account
// table, leaving the receiver untouched.
func (r *TransactionRecord) WithExpandedKeys(keys solana.PublicKeySlice, writable, unavailable []bool) *TransactionRecord {
	expanded := *r
	expanded.AccountKeys = keys
	expanded.Writable = writable
	expanded.Unavailable = unavailable
	expanded.TableReferences = nil
	return &expanded
}
