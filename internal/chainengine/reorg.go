package chainengine

import (
	"errors"
	"fmt"

	"github.com/lumenforge/spvchain/internal/listener"
	"github.com/lumenforge/spvchain/internal/log"
	"github.com/lumenforge/spvchain/internal/store"
)

// reorgTo switches the chain head from the current best to newHead, which
// has already been verified and persisted (without its transactions
// connected) by the caller. Implements spec §4.2.
func (e *Engine) reorgTo(newHead *store.StoredBlock) error {
	oldHead := e.ChainHead()

	split, err := e.findSplit(oldHead, newHead)
	if err != nil {
		return &VerificationError{Hash: newHead.Hash(), Err: err}
	}

	oldBlocks, err := e.collectPath(oldHead, split)
	if err != nil {
		return err
	}
	newBlocks, err := e.collectPath(newHead, split)
	if err != nil {
		return err
	}

	if e.verifier.ShouldVerifyTransactions() {
		if err := e.disconnectOldBlocks(oldBlocks); err != nil {
			return err
		}
		if err := e.connectNewBlocks(newBlocks); err != nil {
			return err
		}
	}

	if err := e.store.PutHead(newHead); err != nil {
		return wrapStore(err)
	}
	e.setHead(newHead)

	log.Chain.Info().
		Str("split", split.Hash().String()).
		Int("old_blocks", len(oldBlocks)).
		Int("new_blocks", len(newBlocks)).
		Msg("chain reorganized")

	return listener.DispatchReorg(e.listeners, split, oldBlocks, newBlocks)
}

// disconnectOldBlocks reverts each block in oldBlocks' UTXO delta, newest
// first (oldBlocks is already ordered that way by collectPath). It first
// confirms every block's undo data is resident before reverting any of
// them, so a pruned ancestor deep in the path fails the whole re-org before
// the UTXO set is touched, rather than leaving it half-unwound.
func (e *Engine) disconnectOldBlocks(oldBlocks []*store.StoredBlock) error {
	undos := make([]*store.UndoData, len(oldBlocks))
	for i, ob := range oldBlocks {
		_, undo, err := e.store.GetUndoable(ob.Hash())
		if err != nil {
			if errors.Is(err, store.ErrPruned) {
				return &PrunedError{Hash: ob.Hash()}
			}
			return wrapStore(err)
		}
		undos[i] = undo
	}

	for i, ob := range oldBlocks {
		if err := e.verifier.Disconnect(undos[i]); err != nil {
			return &VerificationError{Hash: ob.Hash(), Err: err}
		}
	}
	return nil
}

// connectNewBlocks connects each block in newBlocks, oldest first (newBlocks
// arrives newest-first from collectPath, so this walks it in reverse),
// re-enforcing transaction finality exactly as add does.
func (e *Engine) connectNewBlocks(newBlocks []*store.StoredBlock) error {
	for i := len(newBlocks) - 1; i >= 0; i-- {
		nb := newBlocks[i]
		sb, ok, err := e.store.Get(nb.Hash())
		if err != nil {
			return wrapStore(err)
		}
		if !ok || sb.Transactions == nil {
			return &PrunedError{Hash: nb.Hash()}
		}

		for _, t := range sb.Transactions {
			if !t.IsFinal(sb.Height, sb.Header.Timestamp) {
				return &VerificationError{Hash: sb.Hash(), Err: fmt.Errorf("transaction %s is not final", t.Hash())}
			}
		}

		undo, err := e.verifier.Connect(sb.Transactions, sb.Height)
		if err != nil {
			return &VerificationError{Hash: sb.Hash(), Err: err}
		}
		if err := e.store.PutWithUndo(sb, undo); err != nil {
			return wrapStore(err)
		}
	}
	return nil
}

// findSplit walks both chains backward — always stepping the deeper cursor
// first until heights match, then stepping both together — to find the
// deepest common ancestor (spec §4.2 step 1).
func (e *Engine) findSplit(a, b *store.StoredBlock) (*store.StoredBlock, error) {
	var err error
	for a.Height > b.Height {
		if a, err = e.parentOf(a); err != nil {
			return nil, err
		}
	}
	for b.Height > a.Height {
		if b, err = e.parentOf(b); err != nil {
			return nil, err
		}
	}
	for a.Hash() != b.Hash() {
		if a, err = e.parentOf(a); err != nil {
			return nil, err
		}
		if b, err = e.parentOf(b); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (e *Engine) parentOf(sb *store.StoredBlock) (*store.StoredBlock, error) {
	parent, ok, err := e.store.Get(sb.Header.PrevHash)
	if err != nil {
		return nil, wrapStore(err)
	}
	if !ok {
		return nil, fmt.Errorf("forks chain but split point is null: %s has no stored parent", sb.Hash())
	}
	return parent, nil
}

// collectPath returns the path from tip down to (exclusive) split, in
// descending height order.
func (e *Engine) collectPath(tip, split *store.StoredBlock) ([]*store.StoredBlock, error) {
	var path []*store.StoredBlock
	cur := tip
	for cur.Hash() != split.Hash() {
		path = append(path, cur)
		parent, err := e.parentOf(cur)
		if err != nil {
			return nil, &VerificationError{Hash: tip.Hash(), Err: err}
		}
		cur = parent
	}
	return path, nil
}
