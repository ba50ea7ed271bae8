package malloc

import "unsafe"

// neededChunkSize rounds a caller-facing byte count up to the actual chunk
// size it will occupy: room for the in-use header and footer, floored at
// the smallest chunk a free list can ever hold (spec.md §4.1).
func neededChunkSize(userSize int) (uint32, error) {
	if userSize < 0 {
		panic("malloc: negative size")
	}
	if uint64(userSize) > uint64(maxSize) {
		return 0, ErrRequestTooLarge
	}

	need := uint32(userSize) + minInuseChunkSize
	if need < minFreeChunkSize {
		need = minFreeChunkSize
	}
	if need >= binSizes[binCount-1] {
		return 0, ErrRequestTooLarge
	}
	return need, nil
}

// sliceFor builds the []byte view of the user data in the in-use chunk at
// r, with length size and capacity equal to the chunk's full usable space.
func (ctx *Context) sliceFor(r chunkRef, size int) []byte {
	b := ctx.buffer(r.buf)
	off := uint32(r.off) + inuseHeaderSize
	chunkSize := wordSize(ctx.headerWord(r))
	usable := chunkSize - inuseHeaderSize - footerSize
	return b[off : off+uint32(size) : off+usable]
}

// Resize changes the size of a previously allocated block, per the wrapper
// semantics in spec.md §6 (with the corrected absorb-next predicate from
// §9's open question, SPEC_FULL.md §E):
//
//   - b == nil (or any slice with zero capacity) behaves like
//     Allocate(newSize).
//   - If newSize fits in the current chunk with residue under the minimum
//     free chunk size, b is returned unchanged (just re-sliced to length
//     newSize).
//   - If it fits with a usable residue, the chunk is shrunk in place and
//     the tail released (running the same coalescing Release does).
//   - If the immediately following chunk is free and the combined size
//     covers the request, it's absorbed in place.
//   - Otherwise a new chunk is allocated, min(len(b), newSize) bytes are
//     copied over, and the old chunk is released.
func (ctx *Context) Resize(b []byte, newSize int) ([]byte, error) {
	full := b[:cap(b)]
	if len(full) == 0 {
		return ctx.Allocate(newSize)
	}

	r, ok := ctx.locate(unsafe.Pointer(&full[0]))
	assertf(ok, "Resize: pointer was not allocated from this context")

	word := ctx.headerWord(r)
	assertf(wordStatus(word) == statusInuse, "Resize: chunk is not in use")
	oldChunkSize := wordSize(word)
	assertf(ctx.footerAt(r, oldChunkSize).size == oldChunkSize, "Resize: header/footer size mismatch")

	need, err := neededChunkSize(newSize)
	if err != nil {
		return nil, err
	}

	if need <= oldChunkSize {
		residue := oldChunkSize - need
		if residue < minFreeChunkSize {
			tracef("Resize(%p, %d): fits unchanged", unsafe.Pointer(&full[0]), newSize)
			return ctx.sliceFor(r, newSize), nil
		}

		ctx.setHeaderWord(r, packWord(statusInuse, need))
		ctx.footerAt(r, need).size = need

		remainder := chunkRef{buf: r.buf, off: r.off + int32(need)}
		ctx.setHeaderWord(remainder, packWord(statusInuse, residue))
		ctx.footerAt(remainder, residue).size = residue
		ctx.release(remainder)

		tracef("Resize(%p, %d): shrunk in place", unsafe.Pointer(&full[0]), newSize)
		return ctx.sliceFor(r, newSize), nil
	}

	origEnd := r.off + int32(oldChunkSize)
	nextRef := chunkRef{buf: r.buf, off: origEnd}
	if ctx.refStatus(nextRef) == statusFree {
		nextSize := ctx.refSize(nextRef)
		combined := oldChunkSize + nextSize
		if combined >= need {
			ctx.unlink(nextRef)
			ctx.setHeaderWord(r, packWord(statusInuse, combined))
			ctx.footerAt(r, combined).size = combined
			ctx.freeMemory -= uint64(nextSize)
			if ctx.lastChunk == nextRef {
				ctx.lastChunkSize = 0
			}

			tracef("Resize(%p, %d): absorbed next chunk", unsafe.Pointer(&full[0]), newSize)
			return ctx.sliceFor(r, newSize), nil
		}
	}

	newB, err := ctx.Allocate(newSize)
	if err != nil {
		return nil, err
	}
	copy(newB, b[:min(len(b), newSize)])
	ctx.release(r)

	tracef("Resize(%p, %d): relocated", unsafe.Pointer(&full[0]), newSize)
	return newB, nil
}

// ZeroAllocate allocates count*size bytes and fills them with zero. Unlike
// the original C calloc, where an overflowing count*size is undefined
// behavior the caller must avoid, this returns ErrAllocationOverflow.
func (ctx *Context) ZeroAllocate(count, size int) ([]byte, error) {
	if count < 0 || size < 0 {
		panic("malloc: negative count or size")
	}

	total := count * size
	if size != 0 && total/size != count {
		return nil, ErrAllocationOverflow
	}

	b, err := ctx.Allocate(total)
	if err != nil {
		return nil, err
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// ChunkSize reports the usable capacity of the block b was allocated with —
// which may be larger than whatever size was originally requested, since
// chunk sizes are floored at the minimum free chunk size and a split keeps
// any residue too small to stand as a free chunk.
func (ctx *Context) ChunkSize(b []byte) int {
	b = b[:cap(b)]
	if len(b) == 0 {
		return 0
	}
	r, ok := ctx.locate(unsafe.Pointer(&b[0]))
	assertf(ok, "ChunkSize: pointer was not allocated from this context")
	size := wordSize(ctx.headerWord(r))
	return int(size - inuseHeaderSize - footerSize)
}

// Unsafe* mirrors the []byte API with unsafe.Pointer, for callers who'd
// rather not pay for slice header bookkeeping — directly paralleling the
// teacher package's Malloc/UnsafeMalloc split.

func (ctx *Context) UnsafeAllocate(size int) (unsafe.Pointer, error) {
	b, err := ctx.Allocate(size)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&b[:cap(b)][0]), nil
}

func (ctx *Context) UnsafeRelease(p unsafe.Pointer) error {
	if p == nil {
		return nil
	}
	r, ok := ctx.locate(p)
	assertf(ok, "UnsafeRelease: pointer was not allocated from this context")
	ctx.release(r)
	return nil
}

func (ctx *Context) UnsafeResize(p unsafe.Pointer, size int) (unsafe.Pointer, error) {
	if p == nil {
		b, err := ctx.Allocate(size)
		if err != nil {
			return nil, err
		}
		return unsafe.Pointer(&b[:cap(b)][0]), nil
	}

	r, ok := ctx.locate(p)
	assertf(ok, "UnsafeResize: pointer was not allocated from this context")
	oldSize := int(wordSize(ctx.headerWord(r)) - inuseHeaderSize - footerSize)

	b, err := ctx.Resize(ctx.sliceFor(r, oldSize), size)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&b[:cap(b)][0]), nil
}

func (ctx *Context) UnsafeZeroAllocate(count, size int) (unsafe.Pointer, error) {
	b, err := ctx.ZeroAllocate(count, size)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&b[:cap(b)][0]), nil
}

func (ctx *Context) UnsafeChunkSize(p unsafe.Pointer) int {
	if p == nil {
		return 0
	}
	r, ok := ctx.locate(p)
	assertf(ok, "UnsafeChunkSize: pointer was not allocated from this context")
	size := wordSize(ctx.headerWord(r))
	return int(size - inuseHeaderSize - footerSize)
}
