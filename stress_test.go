package malloc

import (
	"bytes"
	"math"
	"testing"

	"github.com/cznic/mathutil"
)

// These mirror the teacher package's test1/test2/test3: a deterministic,
// seeded random workload run against a quota of total live bytes, checking
// that data survives round-trips and that every byte is eventually
// reclaimed. Adapted here to the chunk-size-bounded, context-based API
// instead of a raw byte-count quota driving an unbounded number of mmaps.

const stressQuota = 4 << 20

func stressTest1(t *testing.T, maxSize int) {
	ctx := newTestContext(t, 8<<20)

	rem := stressQuota
	var a [][]byte
	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	if err != nil {
		t.Fatal(err)
	}

	rng.Seed(42)
	pos := rng.Pos()
	for rem > 0 {
		size := rng.Next()%maxSize + 1
		rem -= size
		b, err := ctx.Allocate(size)
		if err != nil {
			t.Fatal(err)
		}

		a = append(a, b)
		for i := range b {
			b[i] = byte(rng.Next())
		}
	}

	rng.Seek(pos)
	for i, b := range a {
		if g, e := len(b), rng.Next()%maxSize+1; g != e {
			t.Fatal(i, g, e)
		}
		for i, g := range b {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("%v %p: %#02x %#02x", i, &b[i], g, e)
			}
			b[i] = 0
		}
	}

	for i := range a {
		j := rng.Next() % len(a)
		a[i], a[j] = a[j], a[i]
	}

	for _, b := range a {
		if err := ctx.Release(b); err != nil {
			t.Fatal(err)
		}
	}

	if fault := ctx.Audit(); fault != nil {
		t.Fatalf("Audit found a fault after the workload fully drained: %v", fault)
	}
}

func TestStress1Small(t *testing.T) { stressTest1(t, 256) }
func TestStress1Big(t *testing.T)   { stressTest1(t, 8192) }

func stressTest2(t *testing.T, maxSize int) {
	ctx := newTestContext(t, 8<<20)

	rem := stressQuota
	var a [][]byte
	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	if err != nil {
		t.Fatal(err)
	}

	rng.Seed(42)
	pos := rng.Pos()
	for rem > 0 {
		size := rng.Next()%maxSize + 1
		rem -= size
		b, err := ctx.Allocate(size)
		if err != nil {
			t.Fatal(err)
		}

		a = append(a, b)
		for i := range b {
			b[i] = byte(rng.Next())
		}
	}

	rng.Seek(pos)
	for i, b := range a {
		if g, e := len(b), rng.Next()%maxSize+1; g != e {
			t.Fatal(i, g, e)
		}
		for i, g := range b {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("%v %p: %#02x %#02x", i, &b[i], g, e)
			}
			b[i] = 0
		}
		if err := ctx.Release(b); err != nil {
			t.Fatal(err)
		}
	}

	if fault := ctx.Audit(); fault != nil {
		t.Fatalf("Audit found a fault after the workload fully drained: %v", fault)
	}
}

func TestStress2Small(t *testing.T) { stressTest2(t, 256) }
func TestStress2Big(t *testing.T)   { stressTest2(t, 8192) }

// stressTest3 interleaves allocate and free at random, mirroring the
// teacher's test3, and checks every still-live block against a shadow copy
// to catch any cross-allocation corruption.
func stressTest3(t *testing.T, maxSize int) {
	ctx := newTestContext(t, 8<<20)

	rem := stressQuota
	m := map[*[]byte][]byte{}
	rng, err := mathutil.NewFC32(1, maxSize, true)
	if err != nil {
		t.Fatal(err)
	}

	for rem > 0 {
		switch rng.Next() % 3 {
		case 0, 1: // 2/3 allocate
			size := rng.Next()
			rem -= size
			b, err := ctx.Allocate(size)
			if err != nil {
				t.Fatal(err)
			}
			for i := range b {
				b[i] = byte(size + i)
			}

			m[&b] = append([]byte(nil), b...)
		default: // 1/3 free
			for k := range m {
				b := *k
				rem += len(b)
				if err := ctx.Release(b); err != nil {
					t.Fatal(err)
				}
				delete(m, k)
				break
			}
		}
	}

	for k, v := range m {
		b := *k
		if !bytes.Equal(b, v) {
			t.Fatal("corrupted heap")
		}
		if err := ctx.Release(b); err != nil {
			t.Fatal(err)
		}
	}

	if fault := ctx.Audit(); fault != nil {
		t.Fatalf("Audit found a fault after the interleaved workload fully drained: %v", fault)
	}
}

func TestStress3Small(t *testing.T) { stressTest3(t, 256) }
func TestStress3Big(t *testing.T)   { stressTest3(t, 8192) }
