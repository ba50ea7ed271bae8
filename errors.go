package malloc

import (
	"errors"
	"fmt"
)

// Resource-exhaustion failures (spec.md §7.1): reported as ordinary errors,
// never panics — these are expected outcomes of a heap under pressure, not
// caller bugs.
var (
	// ErrOutOfMemory is returned when a request cannot be satisfied, even
	// after invoking the growth callback (if one is set).
	ErrOutOfMemory = errors.New("malloc: out of memory")

	// ErrRequestTooLarge is returned when a request's rounded-up chunk size
	// would reach or exceed the 2 GiB size-field limit.
	ErrRequestTooLarge = errors.New("malloc: requested size too large")

	// ErrAllocationOverflow is returned by ZeroAllocate when count*size
	// overflows. The original C implementation leaves this undefined;
	// idiomatic Go has no undefined behavior to fall back on, so this is
	// reported rather than silently wrapping into a too-small allocation.
	ErrAllocationOverflow = errors.New("malloc: count*size overflows")

	// ErrBufferTooSmall is returned by Initialise when the first buffer
	// can't even hold the two boundary sentinels plus one minimum free
	// chunk. Subsequent calls to AddBuffer on an undersized buffer are a
	// silent no-op instead (spec.md §9's resolved open question) — a
	// context that already has usable memory shouldn't fail just because
	// a later buffer offered to it was too small to bother with.
	ErrBufferTooSmall = errors.New("malloc: buffer too small to hold a context")

	// ErrNoCurrentContext is the value the package-level convenience
	// functions panic with when no context has been selected yet.
	ErrNoCurrentContext = errors.New("malloc: no current context set")
)

// assertf panics with a formatted message. It exists to centralise
// precondition-violation handling (spec.md §7.2): a caller that hands
// Release or Resize a pointer it didn't get from this package, or whose
// chunk metadata has been corrupted by writing past the end of a prior
// allocation, has a bug — the original C implementation surfaces this via
// assert(); this package surfaces it the same way Go programs surface
// "this should never happen" conditions, with panic.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("malloc: "+format, args...))
	}
}
