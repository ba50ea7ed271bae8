package malloc

// GrowFunc is the growth-callback contract from spec.md §6: when Allocate
// can't satisfy a request from existing free memory, it asks fn for at
// least minBytes; fn returns a freshly-obtained buffer and true, or (nil,
// false) on failure. A nil GrowFunc disables the fallback entirely (every
// out-of-memory condition then just returns ErrOutOfMemory).
type GrowFunc func(minBytes int) (buf []byte, ok bool)

// Context holds everything one independent heap needs: the registered
// buffers, the bin table, and the locality/growth bookkeeping described in
// spec.md §3. Its zero value is not ready for use — construct one with
// NewContext or Initialise.
//
// Per SPEC_FULL.md §A, Context is an ordinary Go value; it is never carved
// out of a caller-supplied buffer the way the C original's memory_context
// is, because doing so would mean writing live allocator state (bin
// sentinel links) into memory the garbage collector can't see pointers in
// anyway — moot here, since no chunk link is ever a pointer, but the
// principle extends to Context itself for the same reason: there is no
// correctness benefit to co-locating it with caller memory, and real cost
// in precondition complexity (see spec.md's now-dropped "size >=
// sizeof(context)" check).
type Context struct {
	freeMemory    uint64
	lastChunk     chunkRef
	lastChunkSize uint32
	externalAlloc GrowFunc

	bins    [binCount]binNode
	buffers [][]byte
}

// current is the process-wide "currently selected context," mediating the
// package-level convenience functions. Per spec.md §5, the core carries no
// concurrency guarantees of its own — concurrent use of this pointer (or of
// any one *Context) must be serialised by the caller.
var current *Context

// CurrentContext returns the process-wide current context, or nil if none
// has been selected yet.
func CurrentContext() *Context { return current }

// SetCurrentContext installs ctx as the process-wide current context,
// letting a caller multiplex several independent heaps by swapping it
// before each operation.
func SetCurrentContext(ctx *Context) { current = ctx }

func requireCurrent() *Context {
	if current == nil {
		panic(ErrNoCurrentContext)
	}
	return current
}

// NewContext creates a context over buf and selects it as the current
// context. It is the Go-idiomatic entry point; Initialise is the same
// operation under spec.md's original name.
func NewContext(buf []byte) (*Context, error) {
	ctx := &Context{}
	ctx.initBins()

	if !ctx.tryAddBuffer(buf) {
		return nil, ErrBufferTooSmall
	}

	SetCurrentContext(ctx)
	tracef("NewContext(%d bytes)", len(buf))
	return ctx, nil
}

// Initialise is NewContext under spec.md §6's original operation name.
func Initialise(buf []byte) (*Context, error) { return NewContext(buf) }

// AddBuffer registers an additional buffer with ctx for allocations. A
// buffer too small to hold the two boundary sentinels plus one minimum
// free chunk is silently ignored, per spec.md's resolved open question
// (SPEC_FULL.md §E) — unlike the very first buffer given to NewContext,
// whose failure is surfaced as ErrBufferTooSmall.
func (ctx *Context) AddBuffer(buf []byte) {
	ctx.tryAddBuffer(buf)
}

func (ctx *Context) tryAddBuffer(buf []byte) bool {
	const boundary = minInuseChunkSize

	if uint32(len(buf)) < 2*boundary+minFreeChunkSize {
		tracef("AddBuffer(%d bytes) ignored: too small", len(buf))
		return false
	}

	bufIdx := int32(len(ctx.buffers))
	ctx.buffers = append(ctx.buffers, buf)

	start := chunkRef{buf: bufIdx, off: 0}
	ctx.setHeaderWord(start, packWord(statusInuse, boundary))
	ctx.footerAt(start, boundary).size = boundary

	endOff := int32(len(buf)) - int32(boundary)
	end := chunkRef{buf: bufIdx, off: endOff}
	ctx.setHeaderWord(end, packWord(statusInuse, boundary))
	ctx.footerAt(end, boundary).size = boundary

	mid := chunkRef{buf: bufIdx, off: int32(boundary)}
	size := uint32(endOff) - boundary
	ctx.addFreeChunk(mid, size)
	ctx.freeMemory += uint64(size)

	tracef("AddBuffer(%d bytes) registered, %d usable", len(buf), size)
	return true
}

// SetExternalAlloc installs (or, passed nil, removes) the growth callback
// Allocate falls back to when a request can't be satisfied from existing
// free memory.
func (ctx *Context) SetExternalAlloc(fn GrowFunc) {
	ctx.externalAlloc = fn
}

// FreeMemory reports the total number of bytes currently sitting in free
// chunks across every buffer attached to ctx.
func (ctx *Context) FreeMemory() uint64 { return ctx.freeMemory }

// Package-level convenience functions mirroring spec.md §9's suggestion to
// "parameterise every operation on an explicit context handle and offer
// the global as a thin convenience" — both forms are provided rather than
// picking one.

func AddBuffer(buf []byte) { requireCurrent().AddBuffer(buf) }

func Allocate(size int) ([]byte, error) { return requireCurrent().Allocate(size) }

func Release(b []byte) error { return requireCurrent().Release(b) }

func Resize(b []byte, newSize int) ([]byte, error) { return requireCurrent().Resize(b, newSize) }

func ZeroAllocate(count, size int) ([]byte, error) { return requireCurrent().ZeroAllocate(count, size) }

func Audit() *Fault { return requireCurrent().Audit() }

func SetExternalAlloc(fn GrowFunc) { requireCurrent().SetExternalAlloc(fn) }
