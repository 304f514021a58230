package reassemble

import "testing"

func TestPlan_ThreeChunks(t *testing.T) {
	// 150s of audio, 60s chunks, 1.5s leading overlap.
	windows, err := Plan(150_000, 60_000, 1_500)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}

	want := []ChunkWindow{
		{Index: 0, LogicalStartMs: 0, LogicalEndMs: 60_000, ActualStartMs: 0, ActualEndMs: 60_000},
		{Index: 1, LogicalStartMs: 60_000, LogicalEndMs: 120_000, ActualStartMs: 58_500, ActualEndMs: 120_000},
		{Index: 2, LogicalStartMs: 120_000, LogicalEndMs: 150_000, ActualStartMs: 118_500, ActualEndMs: 150_000},
	}
	for i, w := range want {
		if windows[i] != w {
			t.Errorf("window %d = %+v, want %+v", i, windows[i], w)
		}
	}
}

func TestPlan_SingleChunk(t *testing.T) {
	// Shorter than one chunk: exactly one window, no overlap effect.
	windows, err := Plan(30_000, 60_000, 1_500)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	w := windows[0]
	if w.ActualStartMs != 0 {
		t.Errorf("ActualStartMs = %d, want 0", w.ActualStartMs)
	}
	if w.LogicalEndMs != 30_000 {
		t.Errorf("LogicalEndMs = %d, want 30000", w.LogicalEndMs)
	}
}

func TestPlan_ZeroLength(t *testing.T) {
	windows, err := Plan(0, 60_000, 1_500)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(windows) != 0 {
		t.Errorf("expected no windows, got %d", len(windows))
	}
}

func TestPlan_LogicalWindowsPartition(t *testing.T) {
	// Logical windows must exactly partition [0, audioLength) for a
	// spread of lengths, including exact multiples of the chunk size.
	lengths := []int64{1, 999, 60_000, 60_001, 119_999, 120_000, 3_600_000 + 7}

	for _, length := range lengths {
		windows, err := Plan(length, 60_000, 1_500)
		if err != nil {
			t.Fatalf("Plan(%d): %v", length, err)
		}
		if windows[0].LogicalStartMs != 0 {
			t.Errorf("length %d: first LogicalStartMs = %d, want 0", length, windows[0].LogicalStartMs)
		}
		if last := windows[len(windows)-1]; last.LogicalEndMs != length {
			t.Errorf("length %d: last LogicalEndMs = %d, want %d", length, last.LogicalEndMs, length)
		}
		for i := 1; i < len(windows); i++ {
			if windows[i].LogicalStartMs != windows[i-1].LogicalEndMs {
				t.Errorf("length %d: window %d starts at %d, previous ends at %d",
					length, i, windows[i].LogicalStartMs, windows[i-1].LogicalEndMs)
			}
		}
	}
}

func TestPlan_ActualNeverPastLogicalEnd(t *testing.T) {
	windows, err := Plan(500_000, 60_000, 5_000)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, w := range windows {
		if w.ActualStartMs > w.LogicalStartMs {
			t.Errorf("window %d: ActualStartMs %d > LogicalStartMs %d", w.Index, w.ActualStartMs, w.LogicalStartMs)
		}
		if w.ActualEndMs != w.LogicalEndMs {
			t.Errorf("window %d: ActualEndMs %d != LogicalEndMs %d", w.Index, w.ActualEndMs, w.LogicalEndMs)
		}
	}
}

func TestPlan_InvalidConfig(t *testing.T) {
	t.Run("zero_chunk_duration", func(t *testing.T) {
		if _, err := Plan(10_000, 0, 1_500); err == nil {
			t.Error("expected error for zero chunk duration")
		}
	})

	t.Run("negative_chunk_duration", func(t *testing.T) {
		if _, err := Plan(10_000, -60_000, 1_500); err == nil {
			t.Error("expected error for negative chunk duration")
		}
	})

	t.Run("negative_overlap", func(t *testing.T) {
		if _, err := Plan(10_000, 60_000, -1); err == nil {
			t.Error("expected error for negative overlap")
		}
	})

	t.Run("negative_audio_length", func(t *testing.T) {
		if _, err := Plan(-1, 60_000, 1_500); err == nil {
			t.Error("expected error for negative audio length")
		}
	})
}
