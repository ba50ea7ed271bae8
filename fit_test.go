package malloc

import "testing"

func TestFindBin(t *testing.T) {
	// findBin panics on a size at or above the top bin's lower bound (see
	// TestFindBinPanicsOnOversize), so the exact-match check only runs up
	// to, but not including, the last entry.
	for i, size := range binSizes[:binCount-1] {
		if got := findBin(size); got != i {
			t.Fatalf("findBin(%d) = %d, want %d", size, got, i)
		}
		if i > 0 {
			if got := findBin(size - 1); got != i-1 {
				t.Fatalf("findBin(%d) = %d, want %d", size-1, got, i-1)
			}
		}
	}
}

func TestFindBinPanicsOnOversize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a size at/above the largest bin class")
		}
	}()
	findBin(binSizes[binCount-1])
}

func TestFindChunkAndFindUpperChunk(t *testing.T) {
	buf := make([]byte, 1<<16)
	ctx, err := NewContext(buf)
	if err != nil {
		t.Fatal(err)
	}

	bin := sentinelRef(findBin(neededSize(t, 32)))

	// An empty bin reports its own sentinel for both helpers.
	if c := ctx.findChunk(bin, 32); c != bin {
		t.Fatalf("findChunk on empty bin = %+v, want sentinel %+v", c, bin)
	}
	if c := ctx.findUpperChunk(bin, 32); c != bin {
		t.Fatalf("findUpperChunk on empty bin = %+v, want sentinel %+v", c, bin)
	}
}
