package malloc

// addFreeChunk writes a free header and footer describing size bytes
// starting at r, then inserts it into the bin matching its size class,
// maintaining the LRU tie-break ordering described in fit.go.
func (ctx *Context) addFreeChunk(r chunkRef, size uint32) {
	assertf(size >= minFreeChunkSize, "addFreeChunk: size %d below minimum free chunk size", size)

	ctx.setHeaderWord(r, packWord(statusFree, size))
	ctx.footerAt(r, size).size = size

	bin := sentinelRef(findBin(size))
	at := ctx.findUpperChunk(bin, size)
	ctx.insertBefore(at, r)
}

// splitChunk turns the free chunk at r (already unlinked from its bin) into
// an in-use chunk of exactly size bytes, returning any large-enough residue
// to the bins as the new locality hint.
func (ctx *Context) splitChunk(r chunkRef, size uint32) chunkRef {
	total := ctx.refSize(r)
	residue := total - size

	if residue < minFreeChunkSize {
		size = total
		residue = 0
	} else {
		remainder := chunkRef{buf: r.buf, off: r.off + int32(size)}
		ctx.lastChunk = remainder
		ctx.addFreeChunk(remainder, residue)
	}

	ctx.setHeaderWord(r, packWord(statusInuse, size))
	ctx.footerAt(r, size).size = size

	ctx.freeMemory -= uint64(size)
	ctx.lastChunkSize = residue

	return r
}

// outOfMemory is invoked whenever a request can't be satisfied from
// existing free memory. If a growth callback is set, it is asked for at
// least need+2*minInuseChunkSize bytes (room for need, plus the two
// boundary sentinels AddBuffer will carve out of whatever it returns); the
// new region is registered and the original request retried exactly once.
func (ctx *Context) outOfMemory(need uint32) (chunkRef, error) {
	if ctx.externalAlloc == nil {
		return chunkRef{}, ErrOutOfMemory
	}

	total := need + 2*minInuseChunkSize
	buf, ok := ctx.externalAlloc(int(total))
	if !ok || uint32(len(buf)) < total {
		return chunkRef{}, ErrOutOfMemory
	}

	ctx.AddBuffer(buf)

	retryNeed, err := neededChunkSize(int(need - minInuseChunkSize))
	if err != nil {
		return chunkRef{}, err
	}
	return ctx.allocChunk(retryNeed)
}

// Allocate reserves size bytes and returns them as a byte slice, or an
// error if the request can't be satisfied. The slice's length is exactly
// size; its capacity may be larger, since chunk sizes are rounded up.
func (ctx *Context) Allocate(size int) ([]byte, error) {
	if size < 0 {
		panic("malloc: negative allocation size")
	}

	need, err := neededChunkSize(size)
	if err != nil {
		tracef("Allocate(%d) -> %v", size, err)
		return nil, err
	}

	r, err := ctx.allocChunk(need)
	if err != nil {
		tracef("Allocate(%d) -> %v", size, err)
		return nil, err
	}

	b := ctx.buffer(r.buf)
	off := uint32(r.off) + inuseHeaderSize
	chunkSize := wordSize(ctx.headerWord(r))
	usable := chunkSize - inuseHeaderSize - footerSize

	out := b[off : off+uint32(size) : off+usable]
	tracef("Allocate(%d) -> %p", size, ctx.userPointer(r))
	return out, nil
}

// allocChunk implements spec.md §4.5's allocation policy over an
// already-rounded chunk size (see neededChunkSize) and returns the
// chunkRef of the (now in-use) chunk it produced.
func (ctx *Context) allocChunk(need uint32) (chunkRef, error) {
	if uint64(need) > ctx.freeMemory {
		return ctx.outOfMemory(need)
	}

	i := findBin(need)
	for ctx.binEmpty(i) {
		i++
		if i >= binCount {
			return ctx.outOfMemory(need)
		}
	}

	chunk := ctx.findChunk(sentinelRef(i), need)
	if chunk.isSentinel() {
		for i++; i >= binCount || ctx.binEmpty(i); i++ {
			if i >= binCount {
				return ctx.outOfMemory(need)
			}
		}
		// bin_sizes[i+1] > need guarantees the head of this bin fits.
		chunk = ctx.refNext(sentinelRef(i))
	}

	// Locality heuristic (spec.md §4.5 step 5): for small requests, prefer
	// reusing the chunk produced by the most recent split over a perfect
	// but scattered fit, to keep the working set compact.
	if ctx.refSize(chunk) > need && ctx.lastChunkSize >= need && need <= maxSmallRequest {
		chunk = ctx.lastChunk
	}

	ctx.unlink(chunk)
	return ctx.splitChunk(chunk, need), nil
}
