package shmbuf

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// headerSize is the fixed 16-byte header laid out in spec section 3.2:
// head(4) tail(4) capacity(4) reserved(4), all little-endian uint32.
const headerSize = 16

const (
	offHead     = 0
	offTail     = 4
	offCapacity = 8
	offReserved = 12
)

// minCapacity and maxCapacity bound the power-of-two data-area size, per
// invariant I1.
const (
	minCapacity uint32 = 4
	maxCapacity uint32 = 1 << 31
)

// ring is the non-owning Ring View of spec section 4.2. It interprets the
// first 16 bytes of base as the header and the remainder as the circular
// data area. A ring never allocates memory on the hot path and holds no
// lock: every field it touches in shared memory is reached through
// sync/atomic, and every field it caches locally (mask, capacity, data)
// is derived once, at construction, and never mutated afterward.
type ring struct {
	base []byte // header + data area, exactly as mapped
	data []byte // base[headerSize:], aliases the same backing array

	headPtr     *uint32
	tailPtr     *uint32
	capacityPtr *uint32
	reservedPtr *uint32

	capacity uint32 // cached, power of two
	mask     uint32 // capacity - 1

	invalid atomic.Bool
}

// headerPtr aliases the uint32 at the given header offset directly onto
// the mapped byte slice. This is the same trick the pack's io_uring
// bindings use to hang atomic cursors off of a mmap'd ring
// (cloudwego-gopkg/internal/iouring): the slice's backing array is the
// shared memory itself, so a load/store through the returned pointer is
// a load/store to the region, observable by the other process the
// instant the store instruction retires.
func headerPtr(base []byte, offset int) *uint32 {
	return (*uint32)(unsafe.Pointer(&base[offset]))
}

// newProducerRing initializes the header for a freshly created region
// and returns a Ring View bound to it, per spec section 4.2
// ("Initialisation (producer side)").
func newProducerRing(base []byte) (*ring, error) {
	if len(base) < headerSize+int(minCapacity) {
		return nil, wrapStatus("newProducerRing", StatusSizeSetFailed, nil)
	}
	cap32 := floorPow2(uint32(len(base) - headerSize))

	r := &ring{
		base:        base,
		data:        base[headerSize:],
		headPtr:     headerPtr(base, offHead),
		tailPtr:     headerPtr(base, offTail),
		capacityPtr: headerPtr(base, offCapacity),
		reservedPtr: headerPtr(base, offReserved),
		capacity:    cap32,
		mask:        cap32 - 1,
	}

	// Write order per spec: reserved=0, capacity, tail=0, head=0, then a
	// release so a consumer opening afterward sees a fully-initialised
	// header no matter which word it happens to read first.
	atomic.StoreUint32(r.reservedPtr, 0)
	atomic.StoreUint32(r.capacityPtr, cap32)
	atomic.StoreUint32(r.tailPtr, 0)
	atomic.StoreUint32(r.headPtr, 0)

	return r, nil
}

// newConsumerRing binds a Ring View to an already-initialised region and
// validates the capacity field the producer published, per the
// corruption check in spec section 4.2.4.
func newConsumerRing(base []byte) (*ring, error) {
	if len(base) < headerSize {
		return nil, wrapStatus("newConsumerRing", StatusMappingFailed, nil)
	}

	r := &ring{
		base:        base,
		data:        base[headerSize:],
		headPtr:     headerPtr(base, offHead),
		tailPtr:     headerPtr(base, offTail),
		capacityPtr: headerPtr(base, offCapacity),
		reservedPtr: headerPtr(base, offReserved),
	}

	cap32 := atomic.LoadUint32(r.capacityPtr)
	if !isValidCapacity(cap32) || int(cap32) > len(base)-headerSize {
		r.invalid.Store(true)
		return r, wrapStatus("newConsumerRing", StatusCorruptHeader, ErrInvalidRing)
	}
	r.capacity = cap32
	r.mask = cap32 - 1
	return r, nil
}

func isValidCapacity(c uint32) bool {
	return c >= minCapacity && c <= maxCapacity && c&(c-1) == 0
}

// floorPow2 returns the largest power of two <= n, clamped to
// [minCapacity, maxCapacity], per spec section 4.2.3's rounding rule
// (round down, never up).
func floorPow2(n uint32) uint32 {
	if n <= minCapacity {
		return minCapacity
	}
	x := uint64(1)
	for x*2 <= uint64(n) && x*2 <= uint64(maxCapacity) {
		x *= 2
	}
	return uint32(x)
}

// Capacity returns the data-area size in bytes, per spec section 4.2.
func (r *ring) Capacity() uint32 { return r.capacity }

// ReadableBytes returns the number of bytes currently occupied, i.e. the
// raw frame bytes awaiting a Read, not message count.
func (r *ring) ReadableBytes() uint32 {
	if r.invalid.Load() {
		return 0
	}
	tail := atomic.LoadUint32(r.tailPtr)
	head := atomic.LoadUint32(r.headPtr)
	return head - tail
}

// WriteableBytes returns the number of free bytes in the data area.
func (r *ring) WriteableBytes() uint32 {
	if r.invalid.Load() {
		return 0
	}
	return r.capacity - r.ReadableBytes()
}

// HasData reports whether a full length prefix is at least present,
// mirroring spec section 4.2's "true iff ReadableBytes() >= 4".
func (r *ring) HasData() bool {
	return r.ReadableBytes() >= 4
}

// writeWrap copies src into the data area starting at the logical index
// pos, wrapping to offset 0 if it would run past the end. Equivalent to
// spec section 4.2.1's copy_wrap when used for writes.
func (r *ring) writeWrap(pos uint32, src []byte) {
	off := pos & r.mask
	first := r.capacity - off
	if uint32(len(src)) <= first {
		copy(r.data[off:], src)
		return
	}
	n := copy(r.data[off:], src[:first])
	copy(r.data[0:], src[n:])
}

// readWrap is the read-side twin of writeWrap.
func (r *ring) readWrap(pos uint32, dst []byte) {
	off := pos & r.mask
	first := r.capacity - off
	if uint32(len(dst)) <= first {
		copy(dst, r.data[off:off+uint32(len(dst))])
		return
	}
	copy(dst, r.data[off:r.capacity])
	copy(dst[first:], r.data[0:uint32(len(dst))-first])
}

// Write implements spec section 4.2.1. It returns (true, nil) once the
// frame is fully published, (false, nil) if the ring is full (a
// transient condition the caller is expected to retry), and a non-nil
// error only for a payload that could never fit or a ring that failed
// its header sanity check.
func (r *ring) Write(payload []byte) (bool, error) {
	if r.invalid.Load() {
		return false, ErrInvalidRing
	}
	l := uint32(len(payload))
	if l == 0 {
		return false, ErrZeroLength
	}
	if l+4 > r.capacity {
		return false, ErrTooLarge
	}

	head := atomic.LoadUint32(r.headPtr) // relaxed: producer owns head
	tail := atomic.LoadUint32(r.tailPtr) // acquire: see consumer's progress

	free := r.capacity - (head - tail)
	if free < l+4 {
		return false, nil
	}

	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], l)
	r.writeWrap(head, lenPrefix[:])
	r.writeWrap(head+4, payload)

	atomic.StoreUint32(r.headPtr, head+l+4) // release: publish the frame
	return true, nil
}

// ReadOutcome distinguishes the three cases spec section 9's second open
// question notes are conflated by a bare Read: no data yet, a frame
// in flight but not fully written, and a frame dropped for being larger
// than the caller's buffer. Read (the wire-compatible API) never
// exposes this; ReadDetailed does, for callers that need it.
type ReadOutcome int

const (
	ReadOK ReadOutcome = iota
	ReadEmpty
	ReadPartial
	ReadSkippedOversized
)

// Read implements spec section 4.2.2. It returns the payload length on
// success or 0 for every other case (empty, partial frame in flight, or
// an oversized frame that was just discarded) — the conflation is
// intentional, see spec section 7.3.
func (r *ring) Read(dst []byte) int {
	n, _ := r.readDetailed(dst)
	return n
}

// ReadDetailed is the auxiliary API spec section 9 anticipates: same
// wire effects as Read, but the caller also learns which of the three
// zero-returning cases happened.
func (r *ring) ReadDetailed(dst []byte) (int, ReadOutcome) {
	return r.readDetailed(dst)
}

func (r *ring) readDetailed(dst []byte) (int, ReadOutcome) {
	if r.invalid.Load() {
		return 0, ReadEmpty
	}
	tail := atomic.LoadUint32(r.tailPtr) // relaxed: consumer owns tail
	head := atomic.LoadUint32(r.headPtr) // acquire: see producer's progress

	avail := head - tail
	if avail < 4 {
		return 0, ReadEmpty
	}

	var lenPrefix [4]byte
	r.readWrap(tail, lenPrefix[:])
	l := binary.LittleEndian.Uint32(lenPrefix[:])

	if l == 0 || avail < l+4 {
		return 0, ReadPartial
	}

	if uint32(len(dst)) < l {
		atomic.StoreUint32(r.tailPtr, tail+l+4) // release: drop the frame
		return 0, ReadSkippedOversized
	}

	r.readWrap(tail+4, dst[:l])
	atomic.StoreUint32(r.tailPtr, tail+l+4) // release: publish the read
	return int(l), ReadOK
}
