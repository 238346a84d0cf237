package spvstore

import (
	"sync/atomic"
	"unsafe"
)

// FilePrologueBytes is the fixed size of the file header that precedes the
// slot array. It is sized to a full page so the slot array that follows
// starts page-aligned in the mapping.
const FilePrologueBytes = 4096

const (
	offsetMagic       = 0
	offsetRingCursor  = 4
	offsetChainHead   = 8
	offsetHeadVersion = 40
)

var (
	magicV1 = [4]byte{'S', 'P', 'V', '1'}
	magicV2 = [4]byte{'S', 'P', 'V', 'B'}
)

// prologueView is a typed accessor over the first FilePrologueBytes of the
// mapped region. It never allocates per-field objects; every accessor
// reads or writes directly through the backing slice, the same "raw byte
// view plus typed accessors" discipline the spec calls for.
type prologueView struct {
	mem []byte
}

func (p prologueView) magic() [4]byte {
	var m [4]byte
	copy(m[:], p.mem[offsetMagic:offsetMagic+4])
	return m
}

func (p prologueView) setMagic(m [4]byte) {
	copy(p.mem[offsetMagic:offsetMagic+4], m[:])
}

func (p prologueView) cursorPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&p.mem[offsetRingCursor]))
}

// ringCursor returns the absolute file byte offset (FilePrologueBytes plus
// the slot's position in the slot array) of the slot that will receive the
// next FIFO-evicted record.
func (p prologueView) ringCursor() uint32 {
	return atomic.LoadUint32(p.cursorPtr())
}

func (p prologueView) setRingCursor(v uint32) {
	atomic.StoreUint32(p.cursorPtr(), v)
}

func (p prologueView) headVersionPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&p.mem[offsetHeadVersion]))
}

// chainHeadHash reads the 32-byte chain-head pointer using a seqlock: an
// even version before and after the read means no concurrent writer raced
// it. This is the spec's documented fallback for platforms without a
// native 32-byte atomic.
func (p prologueView) chainHeadHash() [32]byte {
	versionPtr := p.headVersionPtr()
	for {
		v1 := atomic.LoadUint32(versionPtr)
		if v1%2 != 0 {
			continue
		}

		var out [32]byte
		copy(out[:], p.mem[offsetChainHead:offsetChainHead+32])

		v2 := atomic.LoadUint32(versionPtr)
		if v1 == v2 {
			return out
		}
	}
}

// setChainHeadHash writes the 32-byte chain-head pointer. The version
// counter is odd for the duration of the write and even before/after;
// concurrent readers retry while it is odd.
func (p prologueView) setChainHeadHash(h [32]byte) {
	versionPtr := p.headVersionPtr()
	atomic.AddUint32(versionPtr, 1)
	copy(p.mem[offsetChainHead:offsetChainHead+32], h[:])
	atomic.AddUint32(versionPtr, 1)
}

// rawChainHeadHash copies the chain-head field directly, with no seqlock
// retry. The seqlock convention at offsetHeadVersion is this package's own
// invention and has no meaning in a V1 file written before it existed —
// that field is arbitrary "reserved" bytes there, and reading it as a spin
// condition risks an infinite loop on a foreign file. Migration, which only
// ever deals with a file it is not concurrently writing, uses this instead.
func (p prologueView) rawChainHeadHash() [32]byte {
	var out [32]byte
	copy(out[:], p.mem[offsetChainHead:offsetChainHead+32])
	return out
}

var zeroHash [32]byte

func isZeroHash(h [32]byte) bool {
	return h == zeroHash
}
