package malloc

import "unsafe"

// unsafePtr is the test-only shorthand for recovering the unsafe.Pointer a
// []byte handed back by Allocate/Resize/ZeroAllocate was built from, which
// is what Release/Resize/ChunkSize expect to locate a chunk by.
func unsafePtr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(&b[:cap(b)][0])
}
