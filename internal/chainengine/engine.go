// Package chainengine implements the chain-engine state machine (spec
// component C7): the core that links arriving blocks into a tree rooted at
// genesis, tracks the branch of greatest cumulative work, re-organizes when
// a competitor overtakes it, and fans out inclusion and re-org events to
// listeners.
package chainengine

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumenforge/spvchain/internal/listener"
	"github.com/lumenforge/spvchain/internal/orphan"
	"github.com/lumenforge/spvchain/internal/store"
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/chainparams"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// Engine is the chain-engine state machine. Exactly one goroutine at a time
// may be inside Add (enforced by mu); any number of readers may call
// ChainHead/BestHeight concurrently without blocking behind it, since those
// go through the separate atomic head latch (spec §5).
type Engine struct {
	// mu serializes add, orphan replay, and re-org. It is held for the
	// entire duration of one top-level Add call; addLocked recurses under
	// the same acquisition during orphan replay rather than re-locking, so
	// the "reentrant self-call" the spec requires falls out for free.
	mu sync.Mutex

	// head is the lock-free chain-head latch readers consult.
	head atomic.Pointer[store.StoredBlock]

	store     store.Store
	orphans   *orphan.Pool
	listeners *listener.Registry
	verifier  Verifier
	params    *chainparams.Params
}

// New constructs an engine over st. If st has no recorded chain head yet, it
// bootstraps one from params.GenesisHeader. maxOrphans bounds the orphan
// pool (spec §9 open question 3); maxOrphans <= 0 means unbounded.
func New(st store.Store, params *chainparams.Params, verifier Verifier, maxOrphans int) (*Engine, error) {
	e := &Engine{
		store:     st,
		orphans:   orphan.New(maxOrphans),
		listeners: listener.NewRegistry(),
		verifier:  verifier,
		params:    params,
	}

	head, ok, err := st.GetHead()
	if err != nil {
		return nil, wrapStore(err)
	}
	if ok {
		e.head.Store(head)
		return e, nil
	}

	genesis := &store.StoredBlock{
		Header:         params.GenesisHeader,
		CumulativeWork: wire.CalcWork(params.GenesisHeader.Bits),
		Height:         0,
	}
	if err := st.PutHead(genesis); err != nil {
		return nil, wrapStore(err)
	}
	e.head.Store(genesis)
	return e, nil
}

// ChainHead returns the current best stored block. Safe for concurrent use
// with Add; never blocks behind it.
func (e *Engine) ChainHead() *store.StoredBlock {
	return e.head.Load()
}

// BestHeight returns the height of the current chain head.
func (e *Engine) BestHeight() uint64 {
	h := e.head.Load()
	if h == nil {
		return 0
	}
	return h.Height
}

// IsOrphan reports whether hash is currently held in the orphan pool.
func (e *Engine) IsOrphan(hash chainhash.Hash) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orphans.Has(hash)
}

// OrphanRoot returns the earliest still-orphaned ancestor of hash, the block
// a peer should be asked to supply next.
func (e *Engine) OrphanRoot(hash chainhash.Hash) (chainhash.Hash, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orphans.OrphanRoot(hash)
}

// AddListener registers l to receive inclusion and re-org events.
func (e *Engine) AddListener(l listener.Listener) {
	e.listeners.Add(l)
}

// RemoveListener unregisters l.
func (e *Engine) RemoveListener(l listener.Listener) {
	e.listeners.Remove(l)
}

// AddWallet registers w exactly as AddListener would; a wallet is simply a
// listener with its own notion of relevance.
func (e *Engine) AddWallet(w listener.Listener) {
	e.AddListener(w)
}

// EstimateBlockTime extrapolates a wall-clock estimate for height from the
// current head's timestamp and the network's mean inter-block interval.
func (e *Engine) EstimateBlockTime(height uint64) time.Time {
	head := e.ChainHead()
	if head == nil {
		return time.Time{}
	}
	delta := int64(height) - int64(head.Height)
	offset := delta * int64(e.params.TargetSpacing.Seconds())
	return time.Unix(int64(head.Header.Timestamp)+offset, 0).UTC()
}

// medianTimePast returns the median timestamp of up to the last 11 blocks
// ending at (and including) parent, the conventional SPV "timestamp must
// advance past this" boundary.
func (e *Engine) medianTimePast(parent *store.StoredBlock) (uint32, error) {
	const window = 11
	timestamps := make([]uint32, 0, window)
	cur := parent
	for i := 0; i < window; i++ {
		timestamps = append(timestamps, cur.Header.Timestamp)
		if cur.Height == 0 {
			break
		}
		pb, ok, err := e.store.Get(cur.Header.PrevHash)
		if err != nil {
			return 0, wrapStore(err)
		}
		if !ok {
			break
		}
		cur = pb
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps[len(timestamps)/2], nil
}

// intervalStartTimestamp returns the timestamp of the block that opened the
// current retarget period, walked back from parent.
func (e *Engine) intervalStartTimestamp(parent *store.StoredBlock) (uint32, error) {
	steps := e.params.RetargetInterval - 1
	cur := parent
	for i := int64(0); i < steps; i++ {
		pb, ok, err := e.store.Get(cur.Header.PrevHash)
		if err != nil {
			return 0, wrapStore(err)
		}
		if !ok {
			return cur.Header.Timestamp, nil
		}
		cur = pb
	}
	return cur.Header.Timestamp, nil
}

// checkpointTimestamp returns the timestamp of the newest checkpoint at or
// below height, or 0 if none qualifies or its block is not resident.
func (e *Engine) checkpointTimestamp(height int64) uint32 {
	cp := e.params.PriorCheckpoint(height)
	if cp == nil {
		return 0
	}
	sb, ok, err := e.store.Get(cp.Hash)
	if err != nil || !ok {
		return 0
	}
	return sb.Header.Timestamp
}

func (e *Engine) setHead(sb *store.StoredBlock) {
	e.head.Store(sb)
}
