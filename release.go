package malloc

import "unsafe"

// Release returns a block previously obtained from Allocate, Resize, or
// ZeroAllocate. Releasing nil (or any slice with zero capacity) is a no-op,
// matching spec.md §8's "idempotence of null" law; a zero-length slice that
// still has capacity, such as the one Allocate(0) returns, is released.
func (ctx *Context) Release(b []byte) error {
	b = b[:cap(b)]
	if len(b) == 0 {
		tracef("Release(nil)")
		return nil
	}

	r, ok := ctx.locate(unsafe.Pointer(&b[0]))
	assertf(ok, "Release: pointer was not allocated from this context")

	ctx.release(r)
	tracef("Release(%p)", unsafe.Pointer(&b[0]))
	return nil
}

// release is the core of Release, shared with the Unsafe* pointer API and
// with Resize's in-place shrink path.
func (ctx *Context) release(r chunkRef) {
	word := ctx.headerWord(r)
	assertf(wordStatus(word) == statusInuse, "release: chunk is not in use (double free or corrupt pointer)")

	size := wordSize(word)
	footer := ctx.footerAt(r, size)
	assertf(footer.size == size, "release: header/footer size mismatch (heap corruption)")

	origEnd := r.off + int32(size)

	ctx.freeMemory += uint64(size)

	merged := r

	// Merge with the previous chunk in address order, if it's free. The
	// boundary sentinel at the start of every buffer guarantees this read
	// never crosses into another buffer or off the front.
	prevFooter := ctx.footerBefore(r)
	prevRef := chunkRef{buf: r.buf, off: r.off - int32(prevFooter.size)}
	if ctx.refStatus(prevRef) == statusFree {
		prevSize := ctx.refSize(prevRef)
		assertf(ctx.footerAt(prevRef, prevSize).size == prevSize, "release: previous chunk header/footer size mismatch")
		ctx.unlink(prevRef)
		size += prevSize
		merged = prevRef
	}

	// Merge with the next chunk in address order, if it's free. This must
	// be computed from the original chunk's end address (origEnd), not
	// from "merged" — merging backward with the previous chunk moves where
	// the chunk *starts*, never where it *ends*, so the next-neighbour
	// boundary is unaffected by the prev-merge above.
	nextRef := chunkRef{buf: r.buf, off: origEnd}
	if ctx.refStatus(nextRef) == statusFree {
		nextSize := ctx.refSize(nextRef)
		ctx.unlink(nextRef)
		size += nextSize
		if ctx.lastChunk == nextRef {
			ctx.lastChunkSize = 0
		}
	}

	ctx.addFreeChunk(merged, size)
}
