package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Buffer is decoded mono PCM audio with a known sample rate.
// Slices share the backing array and must be treated as read-only.
type Buffer struct {
	Samples    []int16
	SampleRate int
}

// DurationMs returns the buffer duration in whole milliseconds.
func (b *Buffer) DurationMs() int64 {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return int64(len(b.Samples)) * 1000 / int64(b.SampleRate)
}

// SliceMs returns the sub-buffer covering [startMs, endMs), clamped to the
// buffer bounds. The returned buffer shares sample storage with the parent.
func (b *Buffer) SliceMs(startMs, endMs int64) *Buffer {
	start := int(startMs * int64(b.SampleRate) / 1000)
	end := int(endMs * int64(b.SampleRate) / 1000)
	if start < 0 {
		start = 0
	}
	if end > len(b.Samples) {
		end = len(b.Samples)
	}
	if start > end {
		start = end
	}
	return &Buffer{Samples: b.Samples[start:end], SampleRate: b.SampleRate}
}

// WAV encodes the buffer as a 16-bit PCM RIFF/WAVE file.
func (b *Buffer) WAV() []byte {
	dataLen := len(b.Samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))

	byteRate := b.SampleRate * 2 // mono, 2 bytes/sample

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))         // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))          // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1))          // mono
	binary.Write(buf, binary.LittleEndian, uint32(b.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(2))          // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))         // bits/sample
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	binary.Write(buf, binary.LittleEndian, b.Samples)

	return buf.Bytes()
}

// DecodeWAV parses a 16-bit PCM RIFF/WAVE stream into a Buffer.
// Stereo input is downmixed to mono by averaging channels.
func DecodeWAV(r io.Reader) (*Buffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		sampleRate int
		channels   int
		bits       int
		data       []byte
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			fmtChunk := make([]byte, size)
			if _, err := io.ReadFull(r, fmtChunk); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(fmtChunk[0:2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported WAV format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			bits = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
		case "data":
			data = make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
		default:
			// Skip unknown chunks (LIST, fact, ...). Chunks are word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip %s chunk: %w", id, err)
			}
		}
		if sampleRate != 0 && data != nil {
			break
		}
	}

	if sampleRate == 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if data == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	if bits != 16 {
		return nil, fmt.Errorf("unsupported sample width %d bits (want 16)", bits)
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}

	frames := len(data) / (2 * channels)
	samples := make([]int16, frames)
	if channels == 1 {
		for i := 0; i < frames; i++ {
			samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
	} else {
		for i := 0; i < frames; i++ {
			l := int16(binary.LittleEndian.Uint16(data[i*4:]))
			rr := int16(binary.LittleEndian.Uint16(data[i*4+2:]))
			samples[i] = int16((int32(l) + int32(rr)) / 2)
		}
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}
