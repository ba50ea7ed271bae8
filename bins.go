package malloc

import "github.com/cznic/mathutil"

// binSizes is the literal size-class table from the reference C
// implementation (esneider/malloc): 64 linear steps of 8 bytes from 8 to
// 512, then 576/640/768/1024/2048/4096, then 19 power-of-two classes from
// 8 KiB to 2 GiB. See SPEC_FULL.md §E for why this rewrite keeps exactly
// this 89-entry table rather than the "91" spec.md's prose mentions.
//
// binSizes[0] is never populated: no chunk can fit a free_header in 8
// bytes, so class 0's list stays empty for the lifetime of any context.
var binSizes = [...]uint32{
	8, 16, 24, 32, 40, 48, 56, 64, 72, 80,
	88, 96, 104, 112, 120, 128, 136, 144, 152, 160,
	168, 176, 184, 192, 200, 208, 216, 224, 232, 240,
	248, 256, 264, 272, 280, 288, 296, 304, 312, 320,
	328, 336, 344, 352, 360, 368, 376, 384, 392, 400,
	408, 416, 424, 432, 440, 448, 456, 464, 472, 480,
	488, 496, 504, 512, 576, 640, 768, 1024, 2048, 4096,
	0x2000, 0x4000, 0x8000, 0x10000, 0x20000, 0x40000,
	0x80000, 0x100000, 0x200000, 0x400000, 0x800000, 0x1000000,
	0x2000000, 0x4000000, 0x8000000, 0x10000000, 0x20000000, 0x40000000,
	0x80000000,
}

const binCount = len(binSizes)

func init() {
	// Self-check: the power-of-two tail (index 69 onward) must double at
	// every step. mathutil.BitLen gives us log2 without hand-rolling one,
	// exercising the one mathutil export the bin table itself can use
	// (NewFC32 belongs to the test suite, not this file).
	for i := 70; i < binCount; i++ {
		if mathutil.BitLen(int(binSizes[i])) != mathutil.BitLen(int(binSizes[i-1]))+1 {
			panic("malloc: binSizes power-of-two tail is not monotonically doubling")
		}
	}
}

// binNode is a bin's sentinel: the anchor of a circular doubly-linked list
// of free chunks of that size class. An empty bin is self-linked (next ==
// prev == its own sentinelRef).
type binNode struct {
	next chunkRef
	prev chunkRef
}

func (ctx *Context) initBins() {
	for i := range ctx.bins {
		ctx.bins[i] = binNode{next: sentinelRef(i), prev: sentinelRef(i)}
	}
}

func (ctx *Context) binEmpty(i int) bool {
	return ctx.bins[i].next == sentinelRef(i)
}

// unlink removes r from whatever circular list it currently belongs to.
func (ctx *Context) unlink(r chunkRef) {
	prev := ctx.refPrev(r)
	next := ctx.refNext(r)
	ctx.setRefNext(prev, next)
	ctx.setRefPrev(next, prev)
}

// insertBefore splices r into the list immediately before at, a standard
// circular-doubly-linked-list insertion.
func (ctx *Context) insertBefore(at, r chunkRef) {
	prev := ctx.refPrev(at)
	ctx.setRefNext(prev, r)
	ctx.setRefPrev(r, prev)
	ctx.setRefNext(r, at)
	ctx.setRefPrev(at, r)
}
