package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

// rampRenderer writes an increasing sample counter and counts blocks.
type rampRenderer struct {
	next   float32
	blocks int
}

func (r *rampRenderer) Process(out []float32) {
	r.blocks++
	for i := range out {
		out[i] = r.next
		r.next++
	}
}

func decode(buf []byte) []float32 {
	out := make([]float32, len(buf)/bytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*bytesPerSample:]))
	}
	return out
}

func TestBlockReaderContinuesAcrossReads(t *testing.T) {
	r := &rampRenderer{}
	br := newBlockReader(r, 4) // 8 samples per block

	first := make([]byte, 5*bytesPerSample)
	second := make([]byte, 7*bytesPerSample)
	if n, _ := br.Read(first); n != len(first) {
		t.Fatalf("Expected %d bytes, got %d", len(first), n)
	}
	if n, _ := br.Read(second); n != len(second) {
		t.Fatalf("Expected %d bytes, got %d", len(second), n)
	}

	got := append(decode(first), decode(second)...)
	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("Sample %d: expected %d, got %f", i, i, v)
		}
	}
	if r.blocks != 2 {
		t.Errorf("Expected 2 blocks rendered, got %d", r.blocks)
	}
}

func TestBlockReaderPartialSample(t *testing.T) {
	br := newBlockReader(&rampRenderer{}, 1)
	buf := make([]byte, 2*bytesPerSample+3)
	n, err := br.Read(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 2*bytesPerSample {
		t.Errorf("Expected whole samples only (%d bytes), got %d", 2*bytesPerSample, n)
	}
}
