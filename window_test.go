package fastpath

import "testing"

func TestWindowBuffer_ArrivalOrder(t *testing.T) {
	var wb WindowBuffer
	for _, lba := range []uint64{10, 20, 30, 40, 50} {
		wb.Observe(lba)
	}
	if wb.Len() != 5 {
		t.Errorf("Len = %d, want 5", wb.Len())
	}

	var scratch [MaxWindow]uint64
	got := wb.Window(scratch[:0])
	want := []uint64{10, 20, 30, 40, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window[%d] = %d, want %d (full: %v)", i, got[i], want[i], got)
		}
	}
	t.Logf("✓ oldest-first order preserved: %v", got)
}

func TestWindowBuffer_Overwrite(t *testing.T) {
	var wb WindowBuffer
	const total = 100
	for i := uint64(0); i < total; i++ {
		wb.Observe(i)
	}
	if wb.Len() != MaxWindow {
		t.Fatalf("Len = %d, want %d", wb.Len(), MaxWindow)
	}

	var scratch [MaxWindow]uint64
	got := wb.Window(scratch[:0])
	if len(got) != MaxWindow {
		t.Fatalf("window length = %d, want %d", len(got), MaxWindow)
	}
	for i, v := range got {
		if want := uint64(total - MaxWindow + i); v != want {
			t.Fatalf("window[%d] = %d, want %d: oldest addresses must fall out", i, v, want)
		}
	}
	t.Logf("✓ ring keeps the most recent %d of %d observations", MaxWindow, total)
}

func TestWindowBuffer_NoAlloc(t *testing.T) {
	var wb WindowBuffer
	for i := uint64(0); i < 2*MaxWindow; i++ {
		wb.Observe(i)
	}
	var scratch [MaxWindow]uint64
	allocs := testing.AllocsPerRun(1000, func() {
		wb.Observe(7)
		scratch[0] = wb.Window(scratch[:0])[0]
	})
	if allocs != 0 {
		t.Errorf("Observe+Window allocates %.1f times per round, want 0", allocs)
	}
	t.Logf("✓ zero allocations with a caller-provided scratch window")
}

func TestWindowBuffer_Reset(t *testing.T) {
	var wb WindowBuffer
	wb.Observe(1)
	wb.Observe(2)
	wb.Reset()

	if wb.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", wb.Len())
	}
	if got := wb.Window(nil); len(got) != 0 {
		t.Errorf("window after Reset = %v, want empty", got)
	}

	wb.Observe(9)
	if got := wb.Window(nil); len(got) != 1 || got[0] != 9 {
		t.Errorf("window after Reset+Observe = %v, want [9]", got)
	}
	t.Logf("✓ reset empties the ring and observation restarts cleanly")
}

func TestWindowBuffer_FeedsKernel(t *testing.T) {
	var wb WindowBuffer
	k := NewAggressiveKernel()

	var scratch [MaxWindow]uint64
	for i, lba := range WorkloadBursty.Generate(0, 200) {
		wb.Observe(lba)
		if _, err := k.ProcessIOCycle(wb.Window(scratch[:0])); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	if k.Cycles() != 200 {
		t.Errorf("cycles = %d, want 200", k.Cycles())
	}
	AssertKernelInvariants(t, k)
	t.Logf("✓ buffer-fed kernel ran %d cycles, prefetch ratio %.1f%%",
		k.Cycles(), k.PrefetchRatio()*100)
}
