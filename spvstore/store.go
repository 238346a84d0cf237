package spvstore

import (
	"sync"

	fileio "github.com/dot5enko/spvstore/io"
	"github.com/dot5enko/spvstore/internal/blog"
)

// Store is a fixed-capacity, memory-mapped ring buffer that indexes
// StoredBlock records by hash. A single process may hold it open at a
// time (enforced by an exclusive OS file lock); Get is lock-free against
// the mapped memory, Put/SetChainHead/Clear serialize on mu.
type Store struct {
	params   Params
	capacity uint32
	version  uint8
	codec    RecordCodec
	slotWidth int

	mapped   *mappedFile
	prologue prologueView
	cache    *probeCache

	mu sync.Mutex
}

// FileSize is the pure helper spec.md names: the on-disk size of a store
// of the given capacity, always computed against the V2 record width —
// this implementation only ever creates V2 stores going forward.
func FileSize(capacity uint32) int64 {
	return int64(FilePrologueBytes) + int64(capacity)*int64(RecordWidthV2)
}

// Open creates the file if absent (seeding it with genesis in V2 format)
// or validates and maps an existing one. An existing V1 file is migrated
// to V2 in place before the Store is returned — this implementation has
// no code path that ever requests V1, so "the caller opts in" (spec.md
// §4.2) is satisfied unconditionally by choosing this package.
//
// If the on-disk capacity differs from the requested capacity, Open
// fails with ErrShrinkNotAllowed (requested < actual) or
// NewCapacityMismatch (requested > actual and growOK is false). Growing
// in place is allowed when growOK is true and requested > actual.
func Open(params Params, path string, capacity uint32, growOK bool) (*Store, error) {
	if capacity == 0 {
		return nil, NewCorrupt("capacity must be greater than zero")
	}

	f, err := openLocked(path)
	if err != nil {
		return nil, err
	}

	hasData, err := filePreExisted(f)
	if err != nil {
		unlockAndClose(f)
		return nil, err
	}

	if !hasData {
		return createFresh(params, f, capacity)
	}

	return openExisting(params, f, capacity, growOK)
}

func filePreExisted(f *fileio.File) (bool, error) {
	if !f.Existed() {
		return false, nil
	}

	size, err := f.Size()
	if err != nil {
		return false, err
	}

	return size >= FilePrologueBytes, nil
}

func createFresh(params Params, f *fileio.File, capacity uint32) (*Store, error) {
	size := FileSize(capacity)
	mapped, err := mapFile(f, size)
	if err != nil {
		return nil, err
	}

	s := &Store{
		params:    params,
		capacity:  capacity,
		version:   2,
		codec:     CodecV2,
		slotWidth: HashSize + CodecV2.RecordWidth(),
		mapped:    mapped,
		prologue:  prologueView{mem: mapped.region[:FilePrologueBytes]},
		cache:     newProbeCache(defaultProbeCacheSize),
	}

	s.prologue.setMagic(magicV2)
	s.prologue.setRingCursor(uint32(FilePrologueBytes))
	s.prologue.setChainHeadHash(zeroHash)

	if err := s.seedGenesis(); err != nil {
		s.mapped.close()
		return nil, err
	}

	blog.Info("store created", "path", f.Raw().Name(), "capacity", capacity)
	return s, nil
}

func openExisting(params Params, f *fileio.File, capacity uint32, growOK bool) (*Store, error) {
	prologueBuf := make([]byte, FilePrologueBytes)
	if err := f.ReadAt(prologueBuf, 0); err != nil {
		unlockAndClose(f)
		return nil, NewCorrupt("short prologue: " + err.Error())
	}

	view := prologueView{mem: prologueBuf}
	magic := view.magic()

	var version uint8
	switch magic {
	case magicV2:
		version = 2
	case magicV1:
		version = 1
	default:
		unlockAndClose(f)
		return nil, ErrBadMagic
	}

	fileSize, err := f.Size()
	if err != nil {
		unlockAndClose(f)
		return nil, err
	}

	recordWidth, err := recordWidthForVersion(version)
	if err != nil {
		unlockAndClose(f)
		return nil, err
	}

	slotBytes := fileSize - FilePrologueBytes
	if slotBytes < 0 || slotBytes%int64(recordWidth) != 0 {
		unlockAndClose(f)
		return nil, NewCorrupt("file size is not a whole number of slots")
	}
	actualCapacity := uint32(slotBytes / int64(recordWidth))

	if version == 1 {
		store, err := migrateV1ToV2(params, f, view, actualCapacity)
		if err != nil {
			return nil, err
		}
		// Migration produces a V2 file at the V1 file's own capacity;
		// honor the caller's capacity/growOK request against that.
		return store.applyCapacityRequest(capacity, growOK)
	}

	mapped, err := mapFile(f, fileSize)
	if err != nil {
		return nil, err
	}

	s := &Store{
		params:    params,
		capacity:  actualCapacity,
		version:   2,
		codec:     CodecV2,
		slotWidth: HashSize + CodecV2.RecordWidth(),
		mapped:    mapped,
		prologue:  prologueView{mem: mapped.region[:FilePrologueBytes]},
		cache:     newProbeCache(defaultProbeCacheSize),
	}

	return s.applyCapacityRequest(capacity, growOK)
}

func (s *Store) applyCapacityRequest(requested uint32, growOK bool) (*Store, error) {
	if requested == s.capacity {
		return s, nil
	}

	if requested < s.capacity {
		s.mapped.close()
		return nil, ErrShrinkNotAllowed
	}

	if !growOK {
		s.mapped.close()
		return nil, NewCapacityMismatch(requested, s.capacity)
	}

	newSize := FileSize(requested)
	if err := s.mapped.grow(newSize); err != nil {
		return nil, err
	}
	s.capacity = requested
	s.prologue = prologueView{mem: s.mapped.region[:FilePrologueBytes]}
	s.cache = newProbeCache(defaultProbeCacheSize)

	blog.Info("store grown", "new_capacity", requested)
	return s, nil
}

func (s *Store) seedGenesis() error {
	genesis := GenesisStoredBlock(s.params)
	if err := s.putLocked(genesis); err != nil {
		return err
	}
	s.prologue.setChainHeadHash(zeroHash)
	return nil
}

func (s *Store) slotOffset(i uint32) int64 {
	return int64(FilePrologueBytes) + int64(i)*int64(s.slotWidth)
}

func (s *Store) slotBytes(i uint32) []byte {
	off := s.slotOffset(i)
	return s.mapped.region[off : off+int64(s.slotWidth)]
}

// findSlot returns the slot index holding hash, or (0, false) if the hash
// is not present. Insertion position (the FIFO ring cursor, see putLocked)
// is unrelated to any hash bucket, so a present record can sit anywhere in
// the ring: this scans every slot rather than probing from hash%capacity
// and stopping at the first empty one, matching the original store's
// full-ring scan. The probe cache short-circuits the common case.
func (s *Store) findSlot(hash [32]byte) (uint32, bool) {
	if off, ok := s.cache.Get(hash); ok {
		idx := uint32((off - int64(FilePrologueBytes)) / int64(s.slotWidth))
		slot := s.slotBytes(idx)
		if hashesEqual(slot[:HashSize], hash[:]) {
			return idx, true
		}
		s.cache.Remove(hash)
	}

	for idx := uint32(0); idx < s.capacity; idx++ {
		slot := s.slotBytes(idx)
		if isEmptySlotHash(slot[:HashSize]) {
			continue
		}
		if hashesEqual(slot[:HashSize], hash[:]) {
			s.cache.Put(hash, s.slotOffset(idx))
			return idx, true
		}
	}
	return 0, false
}

func hashesEqual(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isEmptySlotHash(h []byte) bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

// Put writes b at the ring cursor's slot, evicting whatever was there, and
// advances the cursor. It does not check whether b.Hash() already occupies
// some other slot: two Puts of the same hash leave two copies in the ring
// until FIFO eviction reaches the older one. Callers that need to tell
// insert from update should probe with Contains first.
func (s *Store) Put(b StoredBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(b)
}

// putLocked writes b unconditionally at the ring cursor's slot, FIFO-evicting
// whatever was there, without first checking whether b.Hash() is already
// present elsewhere in the ring. This matches the source's own behavior
// (spec.md §9's open question): checking for an existing entry on every put
// would mean a full ring scan per insert, defeating the performance budget
// in §8 scenario 8. Contains tells a caller whether the hash is already
// present; no Store operation rewrites an existing slot in place.
func (s *Store) putLocked(b StoredBlock) error {
	hash := b.Hash()

	idx := s.cursorSlot()
	evicted := s.slotBytes(idx)
	if !isEmptySlotHash(evicted[:HashSize]) {
		var evictedHash [32]byte
		copy(evictedHash[:], evicted[:HashSize])
		s.cache.Remove(evictedHash)
	}

	if err := s.writeSlot(idx, hash, b); err != nil {
		return err
	}

	next := (idx + 1) % s.capacity
	s.prologue.setRingCursor(uint32(FilePrologueBytes) + next*uint32(s.slotWidth))
	return nil
}

// cursorSlot translates the prologue's absolute-byte-offset ring cursor
// into a 0-based slot index.
func (s *Store) cursorSlot() uint32 {
	return (s.prologue.ringCursor() - uint32(FilePrologueBytes)) / uint32(s.slotWidth)
}

func (s *Store) writeSlot(idx uint32, hash [32]byte, b StoredBlock) error {
	slot := s.slotBytes(idx)
	copy(slot[:HashSize], hash[:])
	if err := s.codec.Encode(b, slot[HashSize:]); err != nil {
		return err
	}
	s.cache.Put(hash, s.slotOffset(idx))
	return nil
}

// Get returns the stored block for hash, or false if absent. Never
// returns an error: an absent hash is not a fault.
func (s *Store) Get(hash [32]byte) (StoredBlock, bool) {
	idx, ok := s.findSlot(hash)
	if !ok {
		return StoredBlock{}, false
	}

	slot := s.slotBytes(idx)
	b, err := s.codec.Decode(slot[HashSize:])
	if err != nil {
		return StoredBlock{}, false
	}
	return b, true
}

// Contains reports whether hash is currently present in the ring. Put
// itself never checks (spec.md §9), so Contains is how a caller tells
// whether a Put would add a second copy of an existing hash.
func (s *Store) Contains(hash [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.findSlot(hash)
	return ok
}

// GetChainHead returns the block named by the chain-head pointer, or a
// synthesized genesis block if the pointer is still the zero sentinel.
func (s *Store) GetChainHead() StoredBlock {
	head := s.prologue.chainHeadHash()
	if isZeroHash(head) {
		return GenesisStoredBlock(s.params)
	}

	b, ok := s.Get(head)
	if !ok {
		return GenesisStoredBlock(s.params)
	}
	return b
}

// SetChainHead updates the chain-head pointer to b's hash. It does not
// Put b; the caller must already have done so.
func (s *Store) SetChainHead(b StoredBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prologue.setChainHeadHash(b.Hash())
	return nil
}

// Clear returns the store to its freshly-created state: the slot region
// is zeroed and genesis is re-seeded, without releasing the file lock.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slotRegion := s.mapped.region[FilePrologueBytes:]
	for i := range slotRegion {
		slotRegion[i] = 0
	}

	s.prologue.setRingCursor(uint32(FilePrologueBytes))
	s.prologue.setChainHeadHash(zeroHash)
	s.cache.Clear()

	if err := s.seedGenesis(); err != nil {
		return err
	}

	blog.Warn("store cleared: %s", s.mapped.file.Raw().Name())
	return nil
}

// Close flushes the mapping to disk, unmaps it, and releases the file
// lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapped.close()
}

// RingCursor exposes the raw cursor byte-offset, primarily for migration
// tests that assert its post-migration value directly.
func (s *Store) RingCursor() uint32 {
	return s.prologue.ringCursor()
}

// Params returns the chain parameters the store was opened with, so
// collaborators (the checkpoint seeder's genesis fallback) don't need
// their own copy threaded through separately.
func (s *Store) Params() Params {
	return s.params
}
