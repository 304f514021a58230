package audio

import (
	"bytes"
	"testing"
)

func TestBuffer_DurationMs(t *testing.T) {
	b := &Buffer{Samples: make([]int16, 16000), SampleRate: 16000}
	if got := b.DurationMs(); got != 1000 {
		t.Errorf("DurationMs = %d, want 1000", got)
	}

	empty := &Buffer{SampleRate: 16000}
	if got := empty.DurationMs(); got != 0 {
		t.Errorf("empty DurationMs = %d, want 0", got)
	}
}

func TestBuffer_SliceMs(t *testing.T) {
	b := &Buffer{Samples: make([]int16, 16000), SampleRate: 16000} // 1s

	t.Run("interior", func(t *testing.T) {
		s := b.SliceMs(250, 750)
		if len(s.Samples) != 8000 {
			t.Errorf("len = %d, want 8000", len(s.Samples))
		}
		if s.DurationMs() != 500 {
			t.Errorf("DurationMs = %d, want 500", s.DurationMs())
		}
	})

	t.Run("clamped_past_end", func(t *testing.T) {
		s := b.SliceMs(900, 5000)
		if s.DurationMs() != 100 {
			t.Errorf("DurationMs = %d, want 100", s.DurationMs())
		}
	})

	t.Run("negative_start_clamped", func(t *testing.T) {
		s := b.SliceMs(-100, 100)
		if len(s.Samples) != 1600 {
			t.Errorf("len = %d, want 1600", len(s.Samples))
		}
	})

	t.Run("inverted_range_empty", func(t *testing.T) {
		s := b.SliceMs(2000, 1000)
		if len(s.Samples) != 0 {
			t.Errorf("len = %d, want 0", len(s.Samples))
		}
	})
}

func TestWAV_RoundTrip(t *testing.T) {
	orig := &Buffer{
		Samples:    []int16{0, 100, -100, 32767, -32768, 42},
		SampleRate: 16000,
	}

	decoded, err := DecodeWAV(bytes.NewReader(orig.WAV()))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if decoded.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", decoded.SampleRate)
	}
	if len(decoded.Samples) != len(orig.Samples) {
		t.Fatalf("len = %d, want %d", len(decoded.Samples), len(orig.Samples))
	}
	for i := range orig.Samples {
		if decoded.Samples[i] != orig.Samples[i] {
			t.Errorf("sample %d = %d, want %d", i, decoded.Samples[i], orig.Samples[i])
		}
	}
}

func TestDecodeWAV_StereoDownmix(t *testing.T) {
	// Hand-build a 2-channel WAV: frames (100,200) and (-50,50).
	var data bytes.Buffer
	writeLE16 := func(v int16) { data.WriteByte(byte(uint16(v))); data.WriteByte(byte(uint16(v) >> 8)) }
	writeLE16(100)
	writeLE16(200)
	writeLE16(-50)
	writeLE16(50)

	var wav bytes.Buffer
	wav.WriteString("RIFF")
	le32 := func(v uint32) { wav.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}) }
	le16 := func(v uint16) { wav.Write([]byte{byte(v), byte(v >> 8)}) }
	le32(uint32(36 + data.Len()))
	wav.WriteString("WAVE")
	wav.WriteString("fmt ")
	le32(16)
	le16(1)     // PCM
	le16(2)     // stereo
	le32(8000)  // sample rate
	le32(32000) // byte rate
	le16(4)     // block align
	le16(16)    // bits
	wav.WriteString("data")
	le32(uint32(data.Len()))
	wav.Write(data.Bytes())

	b, err := DecodeWAV(bytes.NewReader(wav.Bytes()))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if len(b.Samples) != 2 {
		t.Fatalf("len = %d, want 2", len(b.Samples))
	}
	if b.Samples[0] != 150 {
		t.Errorf("sample 0 = %d, want 150", b.Samples[0])
	}
	if b.Samples[1] != 0 {
		t.Errorf("sample 1 = %d, want 0", b.Samples[1])
	}
}

func TestDecodeWAV_Rejects(t *testing.T) {
	t.Run("not_riff", func(t *testing.T) {
		if _, err := DecodeWAV(bytes.NewReader([]byte("OggS....junkjunk"))); err == nil {
			t.Error("expected error for non-RIFF input")
		}
	})

	t.Run("truncated", func(t *testing.T) {
		b := &Buffer{Samples: []int16{1, 2, 3}, SampleRate: 8000}
		wav := b.WAV()
		if _, err := DecodeWAV(bytes.NewReader(wav[:20])); err == nil {
			t.Error("expected error for truncated input")
		}
	})
}
