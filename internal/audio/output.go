// Package audio plays the engine through the system audio device.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
)

const (
	channelCount   = 2 // stereo
	bytesPerSample = 4 // float32
)

// Renderer fills interleaved stereo frames. It is called from the audio
// device goroutine only.
type Renderer interface {
	Process(out []float32)
}

// Output owns the oto context and the player pulling from the engine.
type Output struct {
	otoCtx *oto.Context
	player *oto.Player
	reader *blockReader
}

// NewOutput opens the default audio device at sampleRate and starts
// playing r in blocks of blockSize frames.
func NewOutput(r Renderer, sampleRate, blockSize int) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-readyChan

	o := &Output{
		otoCtx: otoCtx,
		reader: newBlockReader(r, blockSize),
	}
	o.player = otoCtx.NewPlayer(o.reader)
	o.player.Play()

	return o, nil
}

// Err reports a playback error, if any.
func (o *Output) Err() error {
	return o.player.Err()
}

// Close stops playback.
func (o *Output) Close() error {
	o.player.Pause()
	return o.otoCtx.Suspend()
}

// blockReader implements io.Reader over a Renderer, rendering one block at a
// time into a buffer allocated up front.
type blockReader struct {
	r     Renderer
	block []float32
	pos   int
}

func newBlockReader(r Renderer, blockSize int) *blockReader {
	if blockSize < 1 {
		blockSize = 1
	}
	block := make([]float32, blockSize*channelCount)
	return &blockReader{r: r, block: block, pos: len(block)}
}

func (b *blockReader) Read(buf []byte) (int, error) {
	n := len(buf) / bytesPerSample
	for i := 0; i < n; i++ {
		if b.pos == len(b.block) {
			b.r.Process(b.block)
			b.pos = 0
		}
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample:], math.Float32bits(b.block[b.pos]))
		b.pos++
	}
	return n * bytesPerSample, nil
}
