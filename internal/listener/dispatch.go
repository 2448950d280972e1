package listener

import (
	"sync"

	"github.com/lumenforge/spvchain/internal/log"
	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/tx"
)

// Registry holds the set of registered listeners and fans out block and
// re-org events to them in registration order.
//
// A listener's callback may add or remove listeners (its own registration
// included) from within the callback itself; dispatch tolerates this by
// iterating a snapshot copy of the slice, so such a change takes effect from
// the next dispatch (spec §4.2 step 7).
type Registry struct {
	mu        sync.Mutex
	listeners []Listener
}

// NewRegistry returns an empty listener registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers l to receive future dispatch, if it is not already present.
func (r *Registry) Add(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.listeners {
		if existing == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// Remove unregisters l. It is a no-op if l was never registered.
func (r *Registry) Remove(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

// snapshot returns the current listener slice for safe iteration outside the
// lock; callbacks that mutate the registry act on the live slice via Add/Remove,
// not on the copy being iterated.
func (r *Registry) snapshot() []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Listener(nil), r.listeners...)
}

// DispatchBlock delivers every relevant transaction in block to every
// listener that finds it relevant, then notifies NotifyNewBestBlock exactly
// once per listener when kind is BestChain.
//
// A full block (block.Transactions set) is delivered entirely through
// ReceiveFromBlock. A filtered block (block.Transactions nil) instead
// delivers bodies it has (filteredTxs) through ReceiveFromBlock and, for
// each hash in the original block's complete set (allHashes) that the
// listener's IsTransactionRelevant accepts, additionally calls
// NotifyTxInBlock — matching a peer's filtered-block summary, which names
// every transaction but carries bodies for only the matched subset.
//
// Listener errors from a parse-level problem (anything ReceiveFromBlock or
// NotifyTxInBlock itself returns) are logged and swallowed so one observer's
// bug cannot stall the chain; an error surfaced by the underlying store
// layer is distinguished by the store.ErrStoreFailure sentinel and
// propagates to the caller, since that indicates the engine's own state may
// be unreliable.
func DispatchBlock(r *Registry, block *store.StoredBlock, filteredTxs []*tx.Transaction, allHashes []chainhash.Hash, kind Kind) error {
	txs := block.Transactions
	if txs == nil {
		txs = filteredTxs
	}
	if err := deliverTransactions(r, txs, block, kind); err != nil {
		return err
	}

	if block.Transactions == nil {
		for _, l := range r.snapshot() {
			for _, h := range allHashes {
				if !l.IsTransactionRelevant(h) {
					continue
				}
				if err := l.NotifyTxInBlock(h, block, kind); err != nil {
					if isStoreFailure(err) {
						return err
					}
					log.Listener.Error().Err(err).Msg("notify_tx_in_block failed, swallowing")
				}
			}
		}
	}

	if kind == BestChain {
		for _, l := range r.snapshot() {
			if err := l.NotifyNewBestBlock(block); err != nil {
				if isStoreFailure(err) {
					return err
				}
				log.Listener.Error().Err(err).Msg("notify_new_best_block failed, swallowing")
			}
		}
	}

	return nil
}

// deliverTransactions walks transaction-major, listener-minor so the copy
// rule (spec §4.4) applies correctly: for a given transaction, whichever
// listener is first (in registration order) to find it relevant gets the
// original object, every later interested listener gets an independent copy.
func deliverTransactions(r *Registry, txs []*tx.Transaction, block *store.StoredBlock, kind Kind) error {
	listeners := r.snapshot()
	for _, t := range txs {
		first := true
		for _, l := range listeners {
			if !l.IsRelevant(t) {
				continue
			}
			deliver := t
			if !first {
				deliver = copyTransaction(t)
			}
			first = false
			if err := l.ReceiveFromBlock(deliver, block, kind); err != nil {
				if isStoreFailure(err) {
					return err
				}
				log.Listener.Error().Err(err).Msg("receive_from_block failed, swallowing")
			}
		}
	}
	return nil
}

// DispatchReorg notifies every listener of a re-org, in registration order.
// oldBlocks runs from the prior tip back to (but excluding) the split point;
// newBlocks likewise runs from the new tip back to (but excluding) the split
// point.
func DispatchReorg(r *Registry, split *store.StoredBlock, oldBlocks, newBlocks []*store.StoredBlock) error {
	for _, l := range r.snapshot() {
		if err := l.Reorganize(split, oldBlocks, newBlocks); err != nil {
			if isStoreFailure(err) {
				return err
			}
			log.Listener.Error().Err(err).Msg("reorganize failed, swallowing")
		}
	}
	return nil
}

func isStoreFailure(err error) bool {
	return err == store.ErrStoreFailure
}

// AnyRelevant reports whether any registered listener finds at least one of
// txs relevant, letting the chain engine skip Merkle-root recomputation and
// per-transaction dispatch work entirely on a block nobody cares about.
func (r *Registry) AnyRelevant(txs []*tx.Transaction) bool {
	if len(txs) == 0 {
		return false
	}
	for _, l := range r.snapshot() {
		for _, t := range txs {
			if l.IsRelevant(t) {
				return true
			}
		}
	}
	return false
}

// AnyTransactionRelevant is the filtered-block counterpart of AnyRelevant,
// consulting IsTransactionRelevant over bare hashes.
func (r *Registry) AnyTransactionRelevant(hashes []chainhash.Hash) bool {
	if len(hashes) == 0 {
		return false
	}
	for _, l := range r.snapshot() {
		for _, h := range hashes {
			if l.IsTransactionRelevant(h) {
				return true
			}
		}
	}
	return false
}
