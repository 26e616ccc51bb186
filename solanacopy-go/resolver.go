package solanacopygo

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// LookupTableFetcher fetches the full address list of an on-chain lookup
// table. Implemented by ChainClient; tests supply fakes.
type LookupTableFetcher interface {
	FetchLookupTable(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error)
}

// AddressTableResolver expands a record's compact lookup-table references into
// the full account table. Table contents are append-only on chain, so results
// are cached by table address with a short TTL.
type AddressTableResolver struct {
	fetcher LookupTableFetcher
	cache   *ttlCache[solana.PublicKeySlice]
	Log     *logrus.Logger
}

const lookupTableTTL = 2 * time.Minute

func NewAddressTableResolver(fetcher LookupTableFetcher) *AddressTableResolver {
	return &AddressTableResolver{
		fetcher: fetcher,
		cache:   newTTLCache[solana.PublicKeySlice](lookupTableTTL),
		Log:     newDefaultLogger(),
	}
}

// Resolve returns the fully expanded account table for the record: static
// accounts first, then every table's writable entries in table order, then
// every table's readonly entries in table order. That matches how instruction
// indices were assigned when the transaction was compiled.
//
// A table that cannot be fetched is not fatal: every index it would have
// provided keeps its positional slot, marked unavailable, so entries from
// later tables stay at the indices the instructions reference. Classification
// continues on balance evidence alone for the unavailable slots. The second
// and third return values carry the writable and unavailable flags parallel
// to the returned keys.
func (r *AddressTableResolver) Resolve(ctx context.Context, record *TransactionRecord) (solana.PublicKeySlice, []bool, []bool) {
	if len(record.TableReferences) == 0 {
		return record.AccountKeys, record.Writable, record.Unavailable
	}

	tables := r.fetchAll(ctx, record.TableReferences)

	keys := make(solana.PublicKeySlice, 0, len(record.StaticKeys))
	keys = append(keys, record.StaticKeys...)
	writable := make([]bool, len(record.Writable))
	copy(writable, record.Writable)
	unavailable := make([]bool, len(record.StaticKeys))

	appendEntry := func(table solana.PublicKeySlice, ref LookupTableReference, index uint8, isWritable bool) {
		key, ok := tableEntry(table, index)
		if !ok {
			r.Log.Warnf("lookup table %s missing index %d, account unavailable", ref.TableAddress, index)
		}
		keys = append(keys, key)
		writable = append(writable, isWritable)
		unavailable = append(unavailable, !ok)
	}

	// Writable entries across all tables come before any readonly entry.
	for i, ref := range record.TableReferences {
		for _, index := range ref.WritableIndexes {
			appendEntry(tables[i], ref, index, true)
		}
	}
	for i, ref := range record.TableReferences {
		for _, index := range ref.ReadonlyIndexes {
			appendEntry(tables[i], ref, index, false)
		}
	}

	return keys, writable, unavailable
}

// fetchAll fetches every referenced table, concurrently for the ones not in
// cache. Results land in reference order regardless of completion order.
func (r *AddressTableResolver) fetchAll(ctx context.Context, refs []LookupTableReference) []solana.PublicKeySlice {
	tables := make([]solana.PublicKeySlice, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		if cached, ok := r.cache.get(ref.TableAddress); ok {
			tables[i] = cached
			continue
		}

		wg.Add(1)
		go func(i int, table solana.PublicKey) {
			defer wg.Done()
			addresses, err := r.fetcher.FetchLookupTable(ctx, table)
			if err != nil {
				r.Log.Warnf("failed to fetch lookup table %s: %v", table, err)
				return
			}
			if len(addresses) == 0 {
				r.Log.Warnf("lookup table %s resolved empty", table)
				return
			}
			tables[i] = addresses
			r.cache.set(table, addresses)
		}(i, ref.TableAddress)
	}
	wg.Wait()

	return tables
}

func tableEntry(table solana.PublicKeySlice, index uint8) (solana.PublicKey, bool) {
	if int(index) >= len(table) {
		return solana.PublicKey{}, false
	}
	return table[index], true
}
