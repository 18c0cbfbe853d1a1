package filters

import (
	"encoding/binary"
	"math"
)

// Type tags identifying the six structures in a serialized record. A
// decoder receiving an unrecognized tag fails with FormatError.
const (
	typeBloomFilter            byte = 1
	typePartitionedBloomFilter byte = 2
	typeCountingBloomFilter    byte = 3
	typeCuckooFilter           byte = 4
	typeCountMinSketch         byte = 5
	typeIBLT                   byte = 6

	serializeVersion byte = 1

	// commonHeaderSize is tag(1) + version(1) + seed(8).
	commonHeaderSize = 10
)

// byteWriter accumulates a little-endian binary record. It exists so each
// MarshalBinary method can describe its layout as a sequence of field
// writes instead of hand-tracked offset arithmetic.
type byteWriter struct {
	buf []byte
}

func newByteWriter(sizeHint int) *byteWriter {
	return &byteWriter{buf: make([]byte, 0, sizeHint)}
}

func (w *byteWriter) byte(b byte) { w.buf = append(w.buf, b) }

func (w *byteWriter) uint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *byteWriter) uint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *byteWriter) int64(v int64) { w.uint64(uint64(v)) }

func (w *byteWriter) float64(v float64) { w.uint64(floatBits(v)) }

func (w *byteWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *byteWriter) bytesOf(v []uint64) {
	for _, x := range v {
		w.uint64(x)
	}
}

// byteReader consumes a little-endian binary record written by byteWriter.
// Every read checks remaining length and sets err on underrun so callers
// can perform a single err check after a sequence of reads.
type byteReader struct {
	buf []byte
	pos int
	err error
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf}
}

func (r *byteReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.buf) {
		r.err = &FormatError{Msg: "truncated serialized data"}
		return false
	}
	return true
}

func (r *byteReader) readByte() byte {
	if !r.need(1) {
		return 0
	}
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *byteReader) readUint64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v
}

func (r *byteReader) readUint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *byteReader) readInt64() int64 { return int64(r.readUint64()) }

func (r *byteReader) readFloat64() float64 { return floatFromBits(r.readUint64()) }

func (r *byteReader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+n])
	r.pos += n
	return b
}

func (r *byteReader) readUint64Slice(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.readUint64()
	}
	return out
}

func (r *byteReader) remaining() int { return len(r.buf) - r.pos }

func (r *byteReader) exactlyConsumed() bool { return r.err == nil && r.pos == len(r.buf) }

// floatBits/floatFromBits round-trip a float64 through its IEEE-754 bit
// pattern so byteWriter/byteReader only need to know about uint64.
func floatBits(f float64) uint64     { return math.Float64bits(f) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }

func wordsFor(nbits uint) int { return int((nbits + wordBits - 1) / wordBits) }

// readHeader validates the common tag/version/seed prefix shared by every
// record, failing with FormatError on a short buffer, wrong tag, or
// unsupported version.
func readHeader(r *byteReader, wantTag byte) (seed uint64, ok bool) {
	if len(r.buf) < commonHeaderSize {
		r.err = &FormatError{Msg: "record shorter than common header"}
		return 0, false
	}
	tag := r.readByte()
	version := r.readByte()
	seed = r.readUint64()

	if tag != wantTag {
		r.err = &FormatError{Msg: "unexpected type tag"}
		return 0, false
	}
	if version != serializeVersion {
		r.err = &FormatError{Msg: "unsupported serialization version"}
		return 0, false
	}
	return seed, r.err == nil
}

// --- BloomFilter ---

// MarshalBinary encodes f as: tag, version, seed, m, k, n, bit words.
func (f *BloomFilter) MarshalBinary() ([]byte, error) {
	w := newByteWriter(commonHeaderSize + 24 + len(f.bits.words)*8)
	w.byte(typeBloomFilter)
	w.byte(serializeVersion)
	w.uint64(f.seed)
	w.uint64(uint64(f.m))
	w.uint64(uint64(f.k))
	w.uint64(uint64(f.n))
	w.bytesOf(f.bits.words)
	return w.buf, nil
}

// UnmarshalBloomFilter decodes a record produced by BloomFilter.MarshalBinary.
func UnmarshalBloomFilter(data []byte) (*BloomFilter, error) {
	r := newByteReader(data)
	seed, ok := readHeader(r, typeBloomFilter)
	if !ok {
		return nil, r.err
	}
	m := uint(r.readUint64())
	k := uint(r.readUint64())
	n := uint(r.readUint64())
	words := r.readUint64Slice(wordsFor(m))
	if !r.exactlyConsumed() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &FormatError{Msg: "trailing bytes after BloomFilter record"}
	}

	return &BloomFilter{
		bits: &bitArray{words: words, nbits: m},
		m:    m,
		k:    k,
		n:    n,
		seed: seed,
	}, nil
}

// --- PartitionedBloomFilter ---

// MarshalBinary encodes f as: tag, version, seed, k, sliceSize, n,
// loadFactor, then k slices of sliceSize-bit words.
func (f *PartitionedBloomFilter) MarshalBinary() ([]byte, error) {
	wordsPerSlice := wordsFor(f.sliceSize)
	w := newByteWriter(commonHeaderSize + 32 + int(f.k)*wordsPerSlice*8)
	w.byte(typePartitionedBloomFilter)
	w.byte(serializeVersion)
	w.uint64(f.seed)
	w.uint64(uint64(f.k))
	w.uint64(uint64(f.sliceSize))
	w.uint64(uint64(f.n))
	w.float64(f.loadFactor)
	for _, s := range f.slices {
		w.bytesOf(s.words)
	}
	return w.buf, nil
}

// UnmarshalPartitionedBloomFilter decodes a record produced by
// PartitionedBloomFilter.MarshalBinary.
func UnmarshalPartitionedBloomFilter(data []byte) (*PartitionedBloomFilter, error) {
	r := newByteReader(data)
	seed, ok := readHeader(r, typePartitionedBloomFilter)
	if !ok {
		return nil, r.err
	}
	k := uint(r.readUint64())
	sliceSize := uint(r.readUint64())
	n := uint(r.readUint64())
	loadFactor := r.readFloat64()

	wordsPerSlice := wordsFor(sliceSize)
	slices := make([]*bitArray, k)
	for i := range slices {
		slices[i] = &bitArray{words: r.readUint64Slice(wordsPerSlice), nbits: sliceSize}
	}
	if !r.exactlyConsumed() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &FormatError{Msg: "trailing bytes after PartitionedBloomFilter record"}
	}

	return &PartitionedBloomFilter{
		slices:     slices,
		sliceSize:  sliceSize,
		k:          k,
		n:          n,
		loadFactor: loadFactor,
		seed:       seed,
	}, nil
}

// --- CountingBloomFilter ---

// MarshalBinary encodes f as: tag, version, seed, m, k, n, saturated, then
// m raw counter bytes.
func (f *CountingBloomFilter) MarshalBinary() ([]byte, error) {
	w := newByteWriter(commonHeaderSize + 25 + len(f.counters.counters))
	w.byte(typeCountingBloomFilter)
	w.byte(serializeVersion)
	w.uint64(f.seed)
	w.uint64(uint64(f.m))
	w.uint64(uint64(f.k))
	w.uint64(uint64(f.n))
	if f.saturated {
		w.byte(1)
	} else {
		w.byte(0)
	}
	w.bytes(f.counters.counters)
	return w.buf, nil
}

// UnmarshalCountingBloomFilter decodes a record produced by
// CountingBloomFilter.MarshalBinary.
func UnmarshalCountingBloomFilter(data []byte) (*CountingBloomFilter, error) {
	r := newByteReader(data)
	seed, ok := readHeader(r, typeCountingBloomFilter)
	if !ok {
		return nil, r.err
	}
	m := uint(r.readUint64())
	k := uint(r.readUint64())
	n := uint(r.readUint64())
	saturated := r.readByte() != 0
	counters := r.readBytes(int(m))
	if !r.exactlyConsumed() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &FormatError{Msg: "trailing bytes after CountingBloomFilter record"}
	}

	return &CountingBloomFilter{
		counters:  &counterArray{counters: counters},
		m:         m,
		k:         k,
		n:         n,
		saturated: saturated,
		seed:      seed,
	}, nil
}

// --- CuckooFilter ---

// MarshalBinary encodes f as: tag, version, seed, b, s, f, maxKicks,
// count, victim presence flag, victim bucket, victim fingerprint, then for
// every bucket s fingerprint slots (zero is the empty sentinel, padding
// any bucket with fewer than s occupied slots).
func (f *CuckooFilter) MarshalBinary() ([]byte, error) {
	w := newByteWriter(commonHeaderSize + 64 + int(f.b)*int(f.s)*8)
	w.byte(typeCuckooFilter)
	w.byte(serializeVersion)
	w.uint64(f.seed)
	w.uint64(uint64(f.b))
	w.uint64(uint64(f.s))
	w.uint64(uint64(f.f))
	w.uint64(uint64(f.maxKicks))
	w.uint64(uint64(f.count))
	if f.victim != nil {
		w.byte(1)
		w.uint64(uint64(f.victim.bucket))
		w.uint64(uint64(f.victim.fp))
	} else {
		w.byte(0)
		w.uint64(0)
		w.uint64(0)
	}
	for _, bucket := range f.buckets {
		for i := uint(0); i < f.s; i++ {
			if i < uint(len(bucket)) {
				w.uint64(uint64(bucket[i]))
			} else {
				w.uint64(uint64(emptyFingerprint))
			}
		}
	}
	return w.buf, nil
}

// UnmarshalCuckooFilter decodes a record produced by CuckooFilter.MarshalBinary.
func UnmarshalCuckooFilter(data []byte) (*CuckooFilter, error) {
	r := newByteReader(data)
	seed, ok := readHeader(r, typeCuckooFilter)
	if !ok {
		return nil, r.err
	}
	b := uint(r.readUint64())
	s := uint(r.readUint64())
	fWidth := uint(r.readUint64())
	maxKicks := int(r.readUint64())
	count := uint(r.readUint64())
	hasVictim := r.readByte() != 0
	victimBucket := uint(r.readUint64())
	victimFP := fingerprint(r.readUint64())

	buckets := make([][]fingerprint, b)
	for i := range buckets {
		slots := make([]fingerprint, 0, s)
		for j := uint(0); j < s; j++ {
			fp := fingerprint(r.readUint64())
			if fp != emptyFingerprint {
				slots = append(slots, fp)
			}
		}
		buckets[i] = slots
	}
	if !r.exactlyConsumed() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &FormatError{Msg: "trailing bytes after CuckooFilter record"}
	}

	var fMask fingerprint
	if fWidth >= 64 {
		fMask = ^fingerprint(0)
	} else {
		fMask = (fingerprint(1) << fWidth) - 1
	}

	var victim *victimEntry
	if hasVictim {
		victim = &victimEntry{bucket: victimBucket, fp: victimFP}
	}

	return &CuckooFilter{
		buckets:  buckets,
		b:        b,
		s:        s,
		f:        fWidth,
		fMask:    fMask,
		maxKicks: maxKicks,
		count:    count,
		victim:   victim,
		rng:      newSplitmix64(DefaultSeed ^ 0x5a5a5a5a),
		seed:     seed,
	}, nil
}

// --- CountMinSketch ---

// MarshalBinary encodes s as: tag, version, seed, width, depth, total,
// then width*depth int64 counters.
func (s *CountMinSketch) MarshalBinary() ([]byte, error) {
	w := newByteWriter(commonHeaderSize + 24 + len(s.counters)*8)
	w.byte(typeCountMinSketch)
	w.byte(serializeVersion)
	w.uint64(s.seed)
	w.uint64(uint64(s.width))
	w.uint64(uint64(s.depth))
	w.int64(s.total)
	for _, c := range s.counters {
		w.int64(c)
	}
	return w.buf, nil
}

// UnmarshalCountMinSketch decodes a record produced by CountMinSketch.MarshalBinary.
func UnmarshalCountMinSketch(data []byte) (*CountMinSketch, error) {
	r := newByteReader(data)
	seed, ok := readHeader(r, typeCountMinSketch)
	if !ok {
		return nil, r.err
	}
	width := uint(r.readUint64())
	depth := uint(r.readUint64())
	total := r.readInt64()

	n := int(width * depth)
	counters := make([]int64, n)
	for i := range counters {
		counters[i] = r.readInt64()
	}
	if !r.exactlyConsumed() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &FormatError{Msg: "trailing bytes after CountMinSketch record"}
	}

	return &CountMinSketch{
		counters: counters,
		width:    width,
		depth:    depth,
		total:    total,
		seed:     seed,
	}, nil
}

// --- IBLT ---

// MarshalBinary encodes t as: tag, version, seed, m, k, elementLen, then m
// cells of (count int64, idSum elementLen bytes, hashSum uint32).
func (t *IBLT) MarshalBinary() ([]byte, error) {
	cellSize := 8 + int(t.elementLen) + 4
	w := newByteWriter(commonHeaderSize + 24 + int(t.m)*cellSize)
	w.byte(typeIBLT)
	w.byte(serializeVersion)
	w.uint64(t.seed)
	w.uint64(uint64(t.m))
	w.uint64(uint64(t.k))
	w.uint64(uint64(t.elementLen))
	for _, c := range t.cells {
		w.int64(c.count)
		w.bytes(c.idSum)
		w.uint32(c.hashSum)
	}
	return w.buf, nil
}

// UnmarshalIBLT decodes a record produced by IBLT.MarshalBinary.
func UnmarshalIBLT(data []byte) (*IBLT, error) {
	r := newByteReader(data)
	seed, ok := readHeader(r, typeIBLT)
	if !ok {
		return nil, r.err
	}
	m := uint(r.readUint64())
	k := uint(r.readUint64())
	elementLen := uint(r.readUint64())

	cells := make([]ibltCell, m)
	for i := range cells {
		cells[i].count = r.readInt64()
		cells[i].idSum = r.readBytes(int(elementLen))
		cells[i].hashSum = r.readUint32()
	}
	if !r.exactlyConsumed() {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &FormatError{Msg: "trailing bytes after IBLT record"}
	}

	return &IBLT{
		cells:      cells,
		m:          m,
		k:          k,
		elementLen: elementLen,
		seed:       seed,
	}, nil
}

// Decode dispatches on data's leading type tag byte and returns the
// decoded structure as one of *BloomFilter, *PartitionedBloomFilter,
// *CountingBloomFilter, *CuckooFilter, *CountMinSketch, or *IBLT. Useful
// for callers that persist mixed structure types under one key space and
// don't know ahead of time which of the six they're reading back.
func Decode(data []byte) (any, error) {
	if len(data) < 1 {
		return nil, &FormatError{Msg: "empty record"}
	}

	switch data[0] {
	case typeBloomFilter:
		return UnmarshalBloomFilter(data)
	case typePartitionedBloomFilter:
		return UnmarshalPartitionedBloomFilter(data)
	case typeCountingBloomFilter:
		return UnmarshalCountingBloomFilter(data)
	case typeCuckooFilter:
		return UnmarshalCuckooFilter(data)
	case typeCountMinSketch:
		return UnmarshalCountMinSketch(data)
	case typeIBLT:
		return UnmarshalIBLT(data)
	default:
		return nil, &FormatError{Msg: "unrecognized type tag"}
	}
}
