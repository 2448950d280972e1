// Package bloom implements the probabilistic membership filter that
// filtered-block payloads are built against (spec component C9): sizing,
// insertion, membership tests, merging and the wire form. No other package
// in this module imports it; the chain engine takes a filtered block's
// matched transactions and hash list as given.
package bloom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/spaolacci/murmur3"
)

// UpdateFlag controls how a remote peer should update a filter as it scans
// new transactions, mirrored here only as an opaque wire value — the engine
// itself neither reads nor acts on it.
type UpdateFlag uint8

const (
	UpdateNone UpdateFlag = iota
	UpdateAll
	UpdateP2PubkeyOnly
)

const (
	// maxFilterBytes and maxHashFuncs bound a filter's resource footprint
	// regardless of the (n, p) parameters requested.
	maxFilterBytes = 36000
	maxHashFuncs   = 50

	// tweakMultiplier is the per-hash-function seed spacing used by the
	// BIP37 filter construction this package follows.
	tweakMultiplier = 0xFBA4C795
)

// ErrArgument reports API misuse: merging incompatible filters, or
// constructing one with invalid parameters.
var ErrArgument = errors.New("bloom: invalid argument")

// Filter is a fixed-size bit array tested by k independent hash functions,
// each seeded by its index and a per-filter tweak.
type Filter struct {
	bits       []byte
	k          uint32
	tweak      uint32
	updateFlag UpdateFlag
}

// New sizes a filter for n expected elements and false-positive rate p,
// clamping the result to the size and hash-function-count ceilings.
func New(n int, p float64, tweak uint32, flag UpdateFlag) *Filter {
	sizeBits := optimalSizeBits(n, p)
	sizeBytes := (sizeBits + 7) / 8
	if sizeBytes > maxFilterBytes {
		sizeBytes = maxFilterBytes
	}
	if sizeBytes < 1 {
		sizeBytes = 1
	}

	k := optimalK(sizeBytes*8, n)

	return &Filter{
		bits:       make([]byte, sizeBytes),
		k:          k,
		tweak:      tweak,
		updateFlag: flag,
	}
}

func optimalSizeBits(n int, p float64) int {
	if n <= 0 {
		return 8
	}
	if p <= 0 {
		p = 0.0001
	}
	if p >= 1 {
		p = 0.999
	}
	size := -1.0 / (math.Ln2 * math.Ln2) * float64(n) * math.Log(p)
	if size < 8 {
		size = 8
	}
	return int(size)
}

// optimalK computes k = (sizeBits/n) * ln(2), clamped to [1, maxHashFuncs].
// Left to the formula alone, k is about -log2(p), so it exceeds maxHashFuncs
// only for very small p; when New has pinned the size at maxFilterBytes, k
// falls instead and can drop below 1 for a large n.
func optimalK(sizeBits, n int) uint32 {
	if n <= 0 {
		return 1
	}
	k := int(float64(sizeBits) / float64(n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	if k > maxHashFuncs {
		k = maxHashFuncs
	}
	return uint32(k)
}

// NewRaw constructs a filter directly from its wire parameters, used by
// DecodeFilter and by callers replaying a known configuration.
func NewRaw(bits []byte, k, tweak uint32, flag UpdateFlag) *Filter {
	return &Filter{bits: bits, k: k, tweak: tweak, updateFlag: flag}
}

func (f *Filter) hashIndex(i uint32, data []byte) uint32 {
	seed := i*tweakMultiplier + f.tweak
	sum := murmur3.Sum32WithSeed(data, seed)
	return sum % uint32(len(f.bits)*8)
}

// Insert sets the k bit positions data hashes to.
func (f *Filter) Insert(data []byte) {
	for i := uint32(0); i < f.k; i++ {
		bit := f.hashIndex(i, data)
		f.bits[bit/8] |= 1 << (bit % 8)
	}
}

// Contains reports whether every one of the k bit positions data hashes to
// is set. False positives are possible; false negatives are not.
func (f *Filter) Contains(data []byte) bool {
	for i := uint32(0); i < f.k; i++ {
		bit := f.hashIndex(i, data)
		if f.bits[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

// Merge ORs other's bits into f. Both filters must share size, k, and tweak;
// otherwise the merge is meaningless and Merge fails with ErrArgument.
func (f *Filter) Merge(other *Filter) error {
	if other == nil {
		return fmt.Errorf("%w: nil filter", ErrArgument)
	}
	if len(f.bits) != len(other.bits) || f.k != other.k || f.tweak != other.tweak {
		return fmt.Errorf("%w: incompatible filter (size/k/tweak mismatch)", ErrArgument)
	}
	for i := range f.bits {
		f.bits[i] |= other.bits[i]
	}
	return nil
}

// K returns the number of hash functions.
func (f *Filter) K() uint32 { return f.k }

// Tweak returns the per-filter hash seed offset.
func (f *Filter) Tweak() uint32 { return f.tweak }

// UpdateFlag returns the filter's wire-carried update policy.
func (f *Filter) UpdateFlag() UpdateFlag { return f.updateFlag }

// Size returns the bit array's length in bytes.
func (f *Filter) Size() int { return len(f.bits) }

// Encode serializes the filter to its wire form: varint-length-prefixed bit
// array, k (u32 LE), tweak (u32 LE), update-flag (1 byte).
func (f *Filter) Encode() []byte {
	buf := new(bytes.Buffer)

	var varintBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(varintBuf[:], uint64(len(f.bits)))
	buf.Write(varintBuf[:n])
	buf.Write(f.bits)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], f.k)
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], f.tweak)
	buf.Write(u32[:])

	buf.WriteByte(byte(f.updateFlag))

	return buf.Bytes()
}

// DecodeFilter parses a filter from its wire form.
func DecodeFilter(b []byte) (*Filter, error) {
	size, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, fmt.Errorf("bloom: malformed size varint")
	}
	off := n

	if size > maxFilterBytes {
		return nil, fmt.Errorf("bloom: filter size %d exceeds maximum %d", size, maxFilterBytes)
	}
	if uint64(len(b)-off) < size {
		return nil, fmt.Errorf("bloom: truncated bit array")
	}
	bits := make([]byte, size)
	copy(bits, b[off:off+int(size)])
	off += int(size)

	if len(b)-off < 9 {
		return nil, fmt.Errorf("bloom: truncated filter trailer")
	}
	k := binary.LittleEndian.Uint32(b[off:])
	off += 4
	tweak := binary.LittleEndian.Uint32(b[off:])
	off += 4
	flag := UpdateFlag(b[off])

	if k > maxHashFuncs {
		return nil, fmt.Errorf("bloom: k=%d exceeds maximum %d", k, maxHashFuncs)
	}

	return &Filter{bits: bits, k: k, tweak: tweak, updateFlag: flag}, nil
}
