package filters

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// checkHashSeedOffset tweaks the IBLT's seed for checkHash so it diverges
// from the seed used for cell-index hashing, even though both ultimately
// derive from the same per-instance seed.
const checkHashSeedOffset = 0x9e3779b9

// ibltCell is one cell of an Invertible Bloom Lookup Table: a signed
// adds-minus-deletes counter and two XOR accumulators.
type ibltCell struct {
	count   int64
	idSum   []byte
	hashSum uint32
}

func newIBLTCell(elementLen uint) ibltCell {
	return ibltCell{idSum: make([]byte, elementLen)}
}

// isEmpty reports whether the cell has never been touched, or has been
// touched back to a net-zero state.
func (c *ibltCell) isEmpty() bool {
	if c.count != 0 || c.hashSum != 0 {
		return false
	}
	for _, b := range c.idSum {
		if b != 0 {
			return false
		}
	}
	return true
}

// isPure reports whether the cell names exactly one element: |count| == 1
// and the stored hashSum matches checkHash of the stored idSum.
func (c *ibltCell) isPure(checkHash func([]byte) uint32) bool {
	if c.count != 1 && c.count != -1 {
		return false
	}
	return checkHash(c.idSum) == c.hashSum
}

func (c *ibltCell) xorIn(x []byte, hx uint32, sign int64) {
	c.count += sign
	for i := range c.idSum {
		c.idSum[i] ^= x[i]
	}
	c.hashSum ^= hx
}

// Presence is the three-valued result of IBLT.Has.
type Presence int

const (
	// PresenceAbsent means the element is definitely not represented.
	PresenceAbsent Presence = iota
	// PresencePresent means a pure cell names exactly this element.
	PresencePresent
	// PresenceMaybe means the structure cannot resolve presence without
	// decoding.
	PresenceMaybe
)

// String renders the three-valued presence result for diagnostics.
func (p Presence) String() string {
	switch p {
	case PresenceAbsent:
		return "absent"
	case PresencePresent:
		return "present"
	case PresenceMaybe:
		return "maybe"
	default:
		return "unknown"
	}
}

// IBLT (Invertible Bloom Lookup Table) encodes a set into XOR-accumulator
// cells supporting pairwise Subtract and peel-Decode of the symmetric
// difference between two sets — the basis for set reconciliation. All
// inserted elements must share the same byte length, elementLen.
type IBLT struct {
	cells      []ibltCell
	m          uint
	k          uint
	elementLen uint
	seed       uint64
}

// NewIBLT creates an IBLT with m cells, k cell indices per element, and a
// fixed element byte length elementLen.
func NewIBLT(m, k, elementLen uint) (*IBLT, error) {
	if m < 1 {
		return nil, &ParameterError{Msg: "IBLT: m must be at least 1"}
	}
	if k < 1 {
		return nil, &ParameterError{Msg: "IBLT: k must be at least 1"}
	}
	if k > m {
		return nil, &ParameterError{Msg: "IBLT: k must not exceed m"}
	}
	if elementLen < 1 {
		return nil, &ParameterError{Msg: "IBLT: elementLen must be at least 1"}
	}

	cells := make([]ibltCell, m)
	for i := range cells {
		cells[i] = newIBLTCell(elementLen)
	}

	return &IBLT{
		cells:      cells,
		m:          m,
		k:          k,
		elementLen: elementLen,
		seed:       DefaultSeed,
	}, nil
}

func (t *IBLT) checkHash(x []byte) uint32 {
	h := xxhash.Sum64(appendSeed(x, t.seed+checkHashSeedOffset))
	return uint32(h)
}

// appendSeed mixes seed into data for a keyed hash without an in-place
// mutation of the caller's slice.
func appendSeed(data []byte, seed uint64) []byte {
	buf := make([]byte, len(data)+8)
	copy(buf, data)
	putUint64LE(buf[len(data):], seed)
	return buf
}

func (t *IBLT) indices(x []byte) ([]uint64, error) {
	return distinctIndices(x, int(t.m), int(t.k), t.seed)
}

// Add inserts x. Fails with ParameterError (mutating nothing) if len(x) !=
// elementLen.
func (t *IBLT) Add(x []byte) error {
	return t.apply(x, 1)
}

// Delete removes x. Fails with ParameterError (mutating nothing) if
// len(x) != elementLen.
func (t *IBLT) Delete(x []byte) error {
	return t.apply(x, -1)
}

func (t *IBLT) apply(x []byte, sign int64) error {
	if uint(len(x)) != t.elementLen {
		return &ParameterError{Msg: "IBLT: element length does not match elementLen"}
	}

	idx, err := t.indices(x)
	if err != nil {
		return err
	}

	hx := t.checkHash(x)
	for _, i := range idx {
		t.cells[i].xorIn(x, hx, sign)
	}
	return nil
}

// Has reports whether x is present, absent, or indeterminate ("maybe")
// without decoding the full structure.
func (t *IBLT) Has(x []byte) (Presence, error) {
	if uint(len(x)) != t.elementLen {
		return PresenceAbsent, &ParameterError{Msg: "IBLT: element length does not match elementLen"}
	}

	idx, err := t.indices(x)
	if err != nil {
		return PresenceAbsent, err
	}

	allEmpty := true
	anyZeroCount := false
	for _, i := range idx {
		c := &t.cells[i]
		if !c.isEmpty() {
			allEmpty = false
		}
		if c.isPure(t.checkHash) && bytes.Equal(c.idSum, x) {
			return PresencePresent, nil
		}
		if c.count == 0 {
			anyZeroCount = true
		}
	}
	if allEmpty {
		return PresenceAbsent, nil
	}
	if anyZeroCount {
		return PresenceAbsent, nil
	}
	return PresenceMaybe, nil
}

// Subtract returns a new IBLT whose cells are the cell-wise difference of
// t and remote: count = t.count - remote.count, idSum/hashSum XORed.
// Fails with IncompatibleShapeError if m, k, seed, or elementLen differ.
func (t *IBLT) Subtract(remote *IBLT) (*IBLT, error) {
	if t.m != remote.m || t.k != remote.k || t.seed != remote.seed || t.elementLen != remote.elementLen {
		return nil, &IncompatibleShapeError{Msg: "IBLT: subtract requires matching m, k, seed, and elementLen"}
	}

	out, err := NewIBLT(t.m, t.k, t.elementLen)
	if err != nil {
		return nil, err
	}
	out.seed = t.seed

	for i := range t.cells {
		a, b := &t.cells[i], &remote.cells[i]
		out.cells[i].count = a.count - b.count
		for j := range out.cells[i].idSum {
			out.cells[i].idSum[j] = a.idSum[j] ^ b.idSum[j]
		}
		out.cells[i].hashSum = a.hashSum ^ b.hashSum
	}

	return out, nil
}

// DecodeResult is the outcome of IBLT.Decode.
type DecodeResult struct {
	// Additional holds elements present in the minuend but not the
	// subtrahend of the Subtract that produced this IBLT (A \ B).
	Additional [][]byte
	// Missing holds elements present in the subtrahend but not the
	// minuend (B \ A).
	Missing [][]byte
	// Complete is true if every cell peeled back to zero; false means
	// the peel loop stalled with non-empty cells remaining — m was too
	// small relative to the true symmetric difference, and Additional/
	// Missing list only what was recovered before it stalled.
	Complete bool
}

// Decode peels t (typically the result of a Subtract) to recover the
// symmetric difference it encodes. Decode consumes t: its cells are
// mutated down to (ideally) all-zero by the peel loop. Call Clone first
// if the pre-decode state is still needed.
func (t *IBLT) Decode() (*DecodeResult, error) {
	additional, missing := t.peel()

	complete := true
	for i := range t.cells {
		if !t.cells[i].isEmpty() {
			complete = false
			break
		}
	}

	return &DecodeResult{Additional: additional, Missing: missing, Complete: complete}, nil
}

// ListResult is the outcome of IBLT.ListEntries.
type ListResult struct {
	// Entries holds every element recovered by peeling.
	Entries [][]byte
	// Complete is true if every cell peeled back to zero.
	Complete bool
}

// ListEntries peels t (normally a filter built purely by Add, not a
// Subtract result) to recover every element it holds, using the same
// peel loop as Decode but without distinguishing additions from deletions
// in its output. Like Decode, it consumes t.
func (t *IBLT) ListEntries() (*ListResult, error) {
	additional, missing := t.peel()

	entries := make([][]byte, 0, len(additional)+len(missing))
	entries = append(entries, additional...)
	entries = append(entries, missing...)

	complete := true
	for i := range t.cells {
		if !t.cells[i].isEmpty() {
			complete = false
			break
		}
	}

	return &ListResult{Entries: entries, Complete: complete}, nil
}

// peel runs the shared pure-cell peeling loop: repeatedly finds a pure
// cell, emits its element to additional (count == +1) or missing
// (count == -1), and removes that element's contribution from every cell
// it hashes to. Terminates when no pure cell remains — O(k*m) because
// each peel strictly removes the peeled element from the pure set and
// touches at most k cells.
func (t *IBLT) peel() (additional, missing [][]byte) {
	for {
		j := t.findPureCell()
		if j < 0 {
			return additional, missing
		}

		cell := &t.cells[j]
		e := make([]byte, len(cell.idSum))
		copy(e, cell.idSum)
		sign := cell.count // +1 or -1

		if sign == 1 {
			additional = append(additional, e)
		} else {
			missing = append(missing, e)
		}

		he := t.checkHash(e)
		idx, err := t.indices(e)
		if err != nil {
			// e's own length matches elementLen by construction, so this
			// can only happen if k > m, already rejected at construction.
			return additional, missing
		}
		for _, i := range idx {
			t.cells[i].xorIn(e, he, -sign)
		}
	}
}

func (t *IBLT) findPureCell() int {
	for i := range t.cells {
		if t.cells[i].isPure(t.checkHash) {
			return i
		}
	}
	return -1
}

// M returns the cell count.
func (t *IBLT) M() uint { return t.m }

// K returns the number of cell indices per element.
func (t *IBLT) K() uint { return t.k }

// ElementLen returns the fixed element byte length.
func (t *IBLT) ElementLen() uint { return t.elementLen }

// Seed returns the IBLT's current hash seed.
func (t *IBLT) Seed() uint64 { return t.seed }

// SetSeed changes the hash seed used for subsequent operations.
func (t *IBLT) SetSeed(seed uint64) { t.seed = seed }

// Clone returns a deep copy of t.
func (t *IBLT) Clone() *IBLT {
	cells := make([]ibltCell, len(t.cells))
	for i, c := range t.cells {
		idSum := make([]byte, len(c.idSum))
		copy(idSum, c.idSum)
		cells[i] = ibltCell{count: c.count, idSum: idSum, hashSum: c.hashSum}
	}
	return &IBLT{
		cells:      cells,
		m:          t.m,
		k:          t.k,
		elementLen: t.elementLen,
		seed:       t.seed,
	}
}
