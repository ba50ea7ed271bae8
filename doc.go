// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package malloc implements a boundary-tag, segregated-free-list memory
// allocator over one or more caller-supplied buffers.
//
// The allocator is a library, not a replacement for the Go heap: it never
// asks the operating system for memory on its own (see NewSystemBuffer for
// an optional convenience that does, if a caller wants one), never installs
// itself as anything process-wide, and carries no state beyond whatever
// *Context values its caller keeps around plus a single "current context"
// pointer for callers that prefer the package-level convenience functions
// over passing a *Context explicitly.
//
// A caller hands Initialise a buffer; the allocator carves it into an
// in-band free list of size-classed chunks ("bins") and services Allocate /
// Release / Resize / ZeroAllocate requests out of it, splitting and
// coalescing chunks as needed. Audit walks every bin and reports the first
// structural inconsistency it finds, or nil if the heap is clean.
//
// Changelog
//
// Adapted from the boundary-tag allocator described at
// http://gee.cs.oswego.edu/dl/html/malloc.html, following the same chunk
// layout and bin table as the C reference implementation this package was
// ported from.
package malloc
