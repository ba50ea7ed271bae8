package malloc

import "testing"

func TestExternalAllocGrowsOnDemand(t *testing.T) {
	ctx, err := NewContext(make([]byte, 512))
	if err != nil {
		t.Fatal(err)
	}

	var grown [][]byte
	ctx.SetExternalAlloc(func(minBytes int) ([]byte, bool) {
		buf := make([]byte, minBytes+256)
		grown = append(grown, buf)
		return buf, true
	})

	// Exhaust the initial buffer with a run of allocations too big to all
	// fit in 512 bytes, forcing at least one call into the growth callback.
	var blocks [][]byte
	for i := 0; i < 20; i++ {
		b, err := ctx.Allocate(64)
		if err != nil {
			t.Fatal(err)
		}
		blocks = append(blocks, b)
	}

	if len(grown) == 0 {
		t.Fatal("expected the growth callback to be invoked at least once")
	}

	for _, b := range blocks {
		if err := ctx.Release(b); err != nil {
			t.Fatal(err)
		}
	}
	if fault := ctx.Audit(); fault != nil {
		t.Fatalf("Audit found a fault after growth + full release: %v", fault)
	}
}

func TestExternalAllocNilReturnsOutOfMemory(t *testing.T) {
	ctx, err := NewContext(make([]byte, 256))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ctx.Allocate(1 << 20); err != ErrOutOfMemory {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
}

func TestExternalAllocFailureReturnsOutOfMemory(t *testing.T) {
	ctx, err := NewContext(make([]byte, 256))
	if err != nil {
		t.Fatal(err)
	}
	ctx.SetExternalAlloc(func(minBytes int) ([]byte, bool) {
		return nil, false
	})

	if _, err := ctx.Allocate(1 << 20); err != ErrOutOfMemory {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
}
