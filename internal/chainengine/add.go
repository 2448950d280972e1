package chainengine

import (
	"fmt"
	"math/big"
	"time"

	"github.com/lumenforge/spvchain/internal/consensus"
	"github.com/lumenforge/spvchain/internal/listener"
	"github.com/lumenforge/spvchain/internal/log"
	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// nowUnix returns the current wall-clock time as a header-compatible Unix
// timestamp, the verifying node's view of "now" for timestamp-drift checks.
func nowUnix() uint32 {
	return uint32(time.Now().Unix())
}

// Add submits a full or filtered block to the engine. It returns true if the
// block is now linked into the known tree (extension, side branch, or via a
// re-org it triggered); false if it was recorded as an orphan. A non-nil
// error is a *VerificationError, a *PrunedError, an error wrapping
// ErrStoreFailure, or a store.ErrStoreFailure that a listener callback
// returned and listener dispatch passed on unchanged.
func (e *Engine) Add(blk *wire.Block) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(blk, true)
}

func (e *Engine) addLocked(blk *wire.Block, topLevel bool) (bool, error) {
	hash := blk.Hash()

	// Step 1: deduplication. A block already stored (whether it is the
	// current head, an ancestor, or an already-recorded side branch)
	// requires no further work. This also covers the spec's "split point
	// equals the new block itself" re-seen case, and S6 (duplicate
	// submit) directly.
	if _, ok, err := e.store.Get(hash); err != nil {
		return false, wrapStore(err)
	} else if ok {
		return true, nil
	}
	if topLevel && e.orphans.Has(hash) {
		return false, nil
	}

	// Step 2: mode check.
	if e.verifier.ShouldVerifyTransactions() && blk.Transactions == nil {
		return false, &VerificationError{Hash: hash, Err: fmt.Errorf("full mode requires transaction bodies")}
	}

	// Step 3: relevance short-circuit.
	contentsImportant := e.verifier.ShouldVerifyTransactions()
	if !contentsImportant {
		if blk.Transactions != nil {
			contentsImportant = e.listeners.AnyRelevant(blk.Transactions)
		} else {
			contentsImportant = e.listeners.AnyTransactionRelevant(blk.TxHashes) || e.listeners.AnyRelevant(blk.FilteredTxs)
		}
	}

	// Step 4: header verification.
	if err := consensus.VerifyProofOfWork(blk.Header); err != nil {
		return false, &VerificationError{Hash: hash, Err: err}
	}
	if contentsImportant {
		if err := consensus.CheckMerkleRoot(blk.Header, blk.AllTxHashes()); err != nil {
			return false, &VerificationError{Hash: hash, Err: err}
		}
	}

	// Step 5: parent lookup.
	parent, ok, err := e.store.Get(blk.Header.PrevHash)
	if err != nil {
		return false, wrapStore(err)
	}
	if !ok {
		e.orphans.Add(blk, blk.TxHashes, blk.FilteredTxs)
		return false, nil
	}

	medianTime, err := e.medianTimePast(parent)
	if err != nil {
		return false, err
	}
	if err := consensus.CheckTimestamp(blk.Header, medianTime, nowUnix()); err != nil {
		return false, &VerificationError{Hash: hash, Err: err}
	}

	height := parent.Height + 1

	// Step 6: difficulty transition check.
	intervalStart, err := e.intervalStartTimestamp(parent)
	if err != nil {
		return false, err
	}
	if err := consensus.VerifyDifficultyTransition(blk.Header, int64(height), parent.Header.Bits, parent.Header.Timestamp, intervalStart, e.params); err != nil {
		return false, &VerificationError{Hash: hash, Err: err}
	}

	// Step 7: checkpoint gate.
	if err := consensus.CheckCheckpoint(int64(height), hash, blk.Header.Timestamp, e.checkpointTimestamp(int64(height)), e.params); err != nil {
		return false, &VerificationError{Hash: hash, Err: err}
	}

	// Step 8: finality check (full mode only).
	if e.verifier.ShouldVerifyTransactions() {
		for _, t := range blk.Transactions {
			if !t.IsFinal(height, blk.Header.Timestamp) {
				return false, &VerificationError{Hash: hash, Err: fmt.Errorf("transaction %s is not final", t.Hash())}
			}
		}
	}

	sb := &store.StoredBlock{
		Header:         *blk.Header,
		CumulativeWork: new(big.Int).Add(parent.CumulativeWork, wire.CalcWork(blk.Header.Bits)),
		Height:         height,
		Transactions:   blk.Transactions,
	}

	head := e.ChainHead()

	// Step 9: dispatch.
	switch {
	case parent.Hash() == head.Hash():
		if err := e.persistExtension(sb); err != nil {
			return false, err
		}
		e.setHead(sb)
		if err := e.dispatchExtension(sb, blk); err != nil {
			return false, err
		}

	case sb.CumulativeWork.Cmp(head.CumulativeWork) <= 0:
		if err := e.store.Put(sb); err != nil {
			return false, wrapStore(err)
		}
		if err := e.dispatchSideChain(sb, blk); err != nil {
			return false, err
		}

	default:
		if err := e.store.Put(sb); err != nil {
			return false, wrapStore(err)
		}
		if err := e.dispatchSideChain(sb, blk); err != nil {
			return false, err
		}
		if err := e.reorgTo(sb); err != nil {
			return false, err
		}
	}

	// Step 10: orphan replay to a fixed point.
	e.replayOrphans(hash)

	return true, nil
}

// persistExtension connects sb's transactions (full mode) or simply stores
// it (header-only mode) as the new tip of the current best chain.
func (e *Engine) persistExtension(sb *store.StoredBlock) error {
	if !e.verifier.ShouldVerifyTransactions() {
		return wrapStore(e.store.PutHead(sb))
	}
	undo, err := e.verifier.Connect(sb.Transactions, sb.Height)
	if err != nil {
		return &VerificationError{Hash: sb.Hash(), Err: err}
	}
	if err := e.store.PutWithUndo(sb, undo); err != nil {
		return wrapStore(err)
	}
	return wrapStore(e.store.PutHead(sb))
}

func (e *Engine) dispatchExtension(sb *store.StoredBlock, blk *wire.Block) error {
	return listener.DispatchBlock(e.listeners, sb, blk.FilteredTxs, blk.TxHashes, listener.BestChain)
}

func (e *Engine) dispatchSideChain(sb *store.StoredBlock, blk *wire.Block) error {
	return listener.DispatchBlock(e.listeners, sb, blk.FilteredTxs, blk.TxHashes, listener.SideChain)
}

// replayOrphans attempts to connect every orphan whose parent is now
// hash, recursing into each newly-linked child so a whole orphaned sub-tree
// reconnects to a fixed point in one pass (spec §4.1 step 10).
func (e *Engine) replayOrphans(hash chainhash.Hash) {
	for _, child := range e.orphans.ChildrenOf(hash) {
		childHash := child.Block.Hash()
		e.orphans.Remove(childHash)
		linked, err := e.addLocked(child.Block, false)
		if err != nil {
			log.Orphan.Error().Err(err).Str("hash", childHash.String()).Msg("orphan replay failed")
			continue
		}
		if linked {
			e.replayOrphans(childHash)
		}
	}
}
