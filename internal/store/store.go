package store

import (
	"errors"

	"github.com/lumenforge/spvchain/pkg/chainhash"
)

// ErrPruned is returned by GetUndoable when the store no longer has undo
// data for a block (spec §7, Pruned(hash)).
var ErrPruned = errors.New("undo data pruned")

// ErrStoreFailure marks an error a listener callback raised while trying to
// persist its own state, as opposed to a parse-level complaint about the
// transaction it was handed. The chain engine's dispatcher treats the two
// differently: a parse-level error is logged and swallowed, a store failure
// propagates since it implies the listener's (and possibly the engine's)
// durable state is no longer trustworthy.
var ErrStoreFailure = errors.New("listener store failure")

// Store is the Block Store contract (spec §4.6). Every operation may fail
// with a wrapped store error; callers treat that as fatal to the current
// add/reorg.
type Store interface {
	// Get looks up a stored block by hash. ok is false if absent.
	Get(hash chainhash.Hash) (sb *StoredBlock, ok bool, err error)

	// GetHead returns the durable chain-head pointer, or ok=false on a
	// fresh store.
	GetHead() (sb *StoredBlock, ok bool, err error)
	// PutHead durably records the chain-head pointer. This is the reorg
	// and extension commit point.
	PutHead(sb *StoredBlock) error

	// Put persists a stored block without transaction connection (header
	// mode, or a full-mode side branch that hasn't been connected).
	Put(sb *StoredBlock) error
	// PutWithUndo persists a stored block together with the UTXO delta its
	// connection produced (full mode).
	PutWithUndo(sb *StoredBlock, undo *UndoData) error

	// GetUndoable returns the stored block plus whether its undo data is
	// still resident. If the block exists but undo data was pruned,
	// GetUndoable returns ErrPruned.
	GetUndoable(hash chainhash.Hash) (sb *StoredBlock, undo *UndoData, err error)

	// PruneBody discards a stored block's transaction bodies and undo
	// data, retaining only its header, height, and cumulative work (spec
	// §3 lifecycle: "stored blocks are never deleted... the store may
	// prune transaction bodies but retains headers plus work/height").
	PruneBody(hash chainhash.Hash) error

	Close() error
}
