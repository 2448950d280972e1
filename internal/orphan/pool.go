// Package orphan holds blocks whose parent has not yet been linked into the
// block store, replaying them once their parent arrives (spec component C4).
package orphan

import (
	"github.com/lumenforge/spvchain/pkg/chainhash"
	"github.com/lumenforge/spvchain/pkg/tx"
	"github.com/lumenforge/spvchain/pkg/wire"
)

// Entry is one orphaned block together with whatever Bloom-filter context it
// arrived with: a filtered block carries its full hash set and the subset of
// transaction bodies that matched the filter, a full block carries neither.
type Entry struct {
	Block        *wire.Block
	FilteredHash []chainhash.Hash
	FilteredTxs  []*tx.Transaction

	seq uint64
}

// Pool stores orphans keyed by their own hash, preserving arrival order and
// indexing by parent hash so a newly-connected block can find its waiting
// children in O(1).
type Pool struct {
	byHash   map[chainhash.Hash]*Entry
	byParent map[chainhash.Hash][]chainhash.Hash
	order    []chainhash.Hash // oldest first; used for eviction

	maxEntries int
	nextSeq    uint64
}

// New creates an orphan pool that evicts its oldest entry once it holds more
// than maxEntries blocks. maxEntries <= 0 means unbounded.
func New(maxEntries int) *Pool {
	return &Pool{
		byHash:     make(map[chainhash.Hash]*Entry),
		byParent:   make(map[chainhash.Hash][]chainhash.Hash),
		maxEntries: maxEntries,
	}
}

// Has reports whether hash is currently held as an orphan.
func (p *Pool) Has(hash chainhash.Hash) bool {
	_, ok := p.byHash[hash]
	return ok
}

// Get returns the entry for hash, if present.
func (p *Pool) Get(hash chainhash.Hash) (*Entry, bool) {
	e, ok := p.byHash[hash]
	return e, ok
}

// Len returns the number of orphans currently held.
func (p *Pool) Len() int {
	return len(p.byHash)
}

// Add inserts block as an orphan. If the pool is at capacity, the oldest
// entry is evicted first; Add reports that hash if so, since the caller may
// want to stop tracking it as a download candidate.
func (p *Pool) Add(block *wire.Block, filteredHashes []chainhash.Hash, filteredTxs []*tx.Transaction) (evicted *chainhash.Hash) {
	hash := block.Hash()
	if _, exists := p.byHash[hash]; exists {
		return nil
	}

	entry := &Entry{
		Block:        block,
		FilteredHash: filteredHashes,
		FilteredTxs:  filteredTxs,
		seq:          p.nextSeq,
	}
	p.nextSeq++

	p.byHash[hash] = entry
	p.order = append(p.order, hash)

	parent := block.Header.PrevHash
	p.byParent[parent] = append(p.byParent[parent], hash)

	if p.maxEntries > 0 && len(p.byHash) > p.maxEntries {
		evictedHash := p.order[0]
		p.order = p.order[1:]
		p.remove(evictedHash)
		evicted = &evictedHash
	}

	return evicted
}

// Remove drops hash from the pool without regard to why (connected,
// abandoned, or otherwise).
func (p *Pool) Remove(hash chainhash.Hash) {
	if _, ok := p.byHash[hash]; !ok {
		return
	}
	p.remove(hash)
	for i, h := range p.order {
		if h == hash {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// remove deletes the byHash/byParent bookkeeping for hash without touching
// p.order; callers that already know the order index patch it themselves.
func (p *Pool) remove(hash chainhash.Hash) {
	entry, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)

	parent := entry.Block.Header.PrevHash
	siblings := p.byParent[parent]
	for i, h := range siblings {
		if h == hash {
			siblings = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	if len(siblings) == 0 {
		delete(p.byParent, parent)
	} else {
		p.byParent[parent] = siblings
	}
}

// ChildrenOf returns, in arrival order, the orphans whose declared parent is
// parentHash. The engine calls this once parentHash is connected, to find
// which orphans may now connect in turn.
func (p *Pool) ChildrenOf(parentHash chainhash.Hash) []*Entry {
	hashes := p.byParent[parentHash]
	if len(hashes) == 0 {
		return nil
	}
	entries := make([]*Entry, 0, len(hashes))
	for _, h := range hashes {
		if e, ok := p.byHash[h]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// OrphanRoot walks the prev-hash chain within the pool starting at hash and
// returns the earliest ancestor still held as an orphan. If hash itself is
// not an orphan, ok is false.
func (p *Pool) OrphanRoot(hash chainhash.Hash) (root chainhash.Hash, ok bool) {
	entry, present := p.byHash[hash]
	if !present {
		return chainhash.Hash{}, false
	}
	root = hash
	for {
		parent := entry.Block.Header.PrevHash
		parentEntry, parentPresent := p.byHash[parent]
		if !parentPresent {
			return root, true
		}
		root = parent
		entry = parentEntry
	}
}
