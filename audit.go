package malloc

import (
	"fmt"
	"unsafe"
)

// Fault describes the first structural inconsistency Audit finds. A nil
// *Fault means the heap passed every check in spec.md §4.8/§8.
type Fault struct {
	// Kind is a stable machine-checkable label for the failure class
	// (e.g. "chunk in free list not marked free", "header/footer size
	// mismatch", "free-memory total inconsistent with free chunks").
	Kind string
	// Bin is the bin index being walked when the fault was found, or -1
	// if the fault isn't bin-specific (e.g. the final free-memory total).
	Bin int
	// Pointer is the header address of the offending chunk, or nil when the
	// fault isn't tied to one chunk (a bin sentinel or the free-memory total).
	Pointer unsafe.Pointer
}

func (f *Fault) Error() string {
	if f.Bin >= 0 {
		return fmt.Sprintf("malloc: audit: %s (bin %d, at %p)", f.Kind, f.Bin, f.Pointer)
	}
	return fmt.Sprintf("malloc: audit: %s", f.Kind)
}

func (ctx *Context) pointerOf(r chunkRef) unsafe.Pointer {
	if r.isSentinel() {
		return nil
	}
	b := ctx.buffer(r.buf)
	return unsafe.Pointer(&b[r.off])
}

// Audit walks every bin list and validates header/footer/status
// consistency and free-memory accounting (spec.md §4.8). It returns the
// first fault it finds, or nil if the heap is clean. Audit never mutates
// state, and unlike Release/Resize it reports the inconsistencies it checks
// for instead of treating them as a fatal precondition violation (spec.md
// §7.3). Link and size fields are not bounds-checked: one corrupted so far
// that it points outside the registered buffers panics with an index out
// of range.
func (ctx *Context) Audit() *Fault {
	var total uint64

	for i := 0; i < binCount; i++ {
		bin := sentinelRef(i)

		if ctx.refStatus(bin) != statusFree {
			return &Fault{Kind: "bin sentinel status corrupt", Bin: i}
		}
		if ctx.refSize(bin) != freeHeaderSize {
			return &Fault{Kind: "bin sentinel size corrupt", Bin: i}
		}

		last := bin
		for chunk := ctx.refNext(bin); chunk != bin; chunk = ctx.refNext(chunk) {
			if ctx.refStatus(chunk) != statusFree {
				return &Fault{Kind: "chunk in free list not marked free", Bin: i, Pointer: ctx.pointerOf(chunk)}
			}
			if ctx.refPrev(chunk) != last {
				return &Fault{Kind: "free list prev/next inconsistent", Bin: i, Pointer: ctx.pointerOf(chunk)}
			}

			size := ctx.refSize(chunk)
			footer := ctx.footerAt(chunk, size)
			if footer.size != size {
				return &Fault{Kind: "header/footer size mismatch", Bin: i, Pointer: ctx.pointerOf(chunk)}
			}
			if !sizeInClass(i, size) {
				return &Fault{Kind: "chunk size outside its bin's class range", Bin: i, Pointer: ctx.pointerOf(chunk)}
			}

			last = chunk
			total += uint64(size)
		}
	}

	if total != ctx.freeMemory {
		return &Fault{Kind: "free-memory total inconsistent with free chunks", Bin: -1}
	}

	return nil
}

func sizeInClass(bin int, size uint32) bool {
	if size < binSizes[bin] {
		return false
	}
	if bin == binCount-1 {
		return true
	}
	return size < binSizes[bin+1]
}
