package pool_test

import (
	"reflect"
	"testing"

	"github.com/pscript-run/pscript/source/pool"
)

func TestAllocateMinimality(t *testing.T) {
	tests := []struct {
		request, want int
	}{
		{1, pool.MinBlockSize},
		{8, 8},
		{9, 16},
		{16, 16},
		{17, 32},
		{100, 128},
	}
	for _, tt := range tests {
		p := pool.New(1024)
		ptr := p.Allocate(tt.request)
		if ptr == pool.NullPointer {
			t.Fatalf("allocate(%d): got NullPointer", tt.request)
		}
		if got := p.AllocationSize(ptr); got != tt.want {
			t.Errorf("allocate(%d): size = %d, want %d", tt.request, got, tt.want)
		}
	}
}

func TestAllocateOutOfMemory(t *testing.T) {
	p := pool.New(64)
	if ptr := p.Allocate(128); ptr != pool.NullPointer {
		t.Fatalf("allocate(128) in 64-byte arena: got %v, want NullPointer", ptr)
	}
}

func TestMatchedAllocateFreeRestoresShape(t *testing.T) {
	p := pool.New(64)
	before := p.FreeLeafSizes()

	a := p.Allocate(8)
	b := p.Allocate(8)
	if a == pool.NullPointer || b == pool.NullPointer {
		t.Fatal("unexpected allocation failure")
	}
	p.Free(b)
	p.Free(a)

	after := p.FreeLeafSizes()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("pool shape after matched allocate/free pair = %v, want %v", after, before)
	}
}

func TestIdempotentFree(t *testing.T) {
	p := pool.New(64)
	ptr := p.Allocate(8)
	p.Free(ptr)
	once := p.FreeLeafSizes()
	p.Free(ptr)
	twice := p.FreeLeafSizes()
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("double free changed pool shape: %v vs %v", twice, once)
	}
}

func TestFreeNullPointerIsNoop(t *testing.T) {
	p := pool.New(64)
	before := p.FreeLeafSizes()
	p.Free(pool.NullPointer)
	if after := p.FreeLeafSizes(); !reflect.DeepEqual(before, after) {
		t.Errorf("freeing NullPointer changed pool shape: %v vs %v", after, before)
	}
}

func TestFreeCoalescesSiblings(t *testing.T) {
	p := pool.New(32)
	a := p.Allocate(8)
	b := p.Allocate(8)
	c := p.Allocate(16)
	if a == pool.NullPointer || b == pool.NullPointer || c == pool.NullPointer {
		t.Fatal("unexpected allocation failure")
	}
	p.Free(a)
	p.Free(b)
	p.Free(c)
	// Everything is free again: a single 32-byte allocation should now fit,
	// proving the two 8-byte and one 16-byte leaves coalesced all the way
	// back up to the root.
	whole := p.Allocate(32)
	if whole == pool.NullPointer {
		t.Fatal("expected full-arena allocation to succeed after freeing all leaves")
	}
	if got := p.AllocationSize(whole); got != 32 {
		t.Errorf("coalesced allocation size = %d, want 32", got)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	p := pool.New(64)
	ptr := p.Allocate(8)
	if err := p.WriteAt(ptr, 0, []byte("hi")); err != nil {
		t.Fatal(err)
	}
	got, err := p.ReadAt(ptr, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestOutOfRange(t *testing.T) {
	p := pool.New(64)
	if _, err := p.At(pool.Pointer(1000)); err == nil {
		t.Error("expected OutOfRange error for pointer beyond arena")
	}
	ptr := p.Allocate(8)
	if _, err := p.ReadAt(ptr, 0, 100); err == nil {
		t.Error("expected OutOfRange error reading past the allocation")
	}
}

func TestBeginEndSize(t *testing.T) {
	p := pool.New(64)
	if p.Begin() != 0 {
		t.Errorf("Begin() = %v, want 0", p.Begin())
	}
	if p.End() != pool.Pointer(64) {
		t.Errorf("End() = %v, want 64", p.End())
	}
	if p.Size() != 64 {
		t.Errorf("Size() = %d, want 64", p.Size())
	}
}

func TestPoolPartitionCoversWholeArena(t *testing.T) {
	p := pool.New(64)
	a := p.Allocate(8)
	_ = p.Allocate(16)
	p.Free(a)

	total := 0
	for _, sz := range p.FreeLeafSizes() {
		total += sz
	}
	// Free leaves plus the one remaining live allocation (16 bytes) must
	// exactly cover the 64-byte arena.
	if total+16 != 64 {
		t.Errorf("free leaves (%d) + live allocation (16) = %d, want 64", total, total+16)
	}
}
