package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WAV encodes interleaved stereo samples as a RIFF wave file, either 16-bit
// PCM or 32-bit IEEE float.
func WAV(w io.Writer, samples []float32, sampleRate int, pcm16 bool) error {
	buf := new(bytes.Buffer)
	wavHeader(buf, len(samples), sampleRate, pcm16)
	if err := rawToBuffer(buf, samples, pcm16); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func rawToBuffer(buf *bytes.Buffer, data []float32, pcm16 bool) error {
	if !pcm16 {
		return binary.Write(buf, binary.LittleEndian, data)
	}
	int16data := make([]int16, len(data))
	for i, v := range data {
		s := math.Round(float64(v) * math.MaxInt16)
		int16data[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, s)))
	}
	return binary.Write(buf, binary.LittleEndian, int16data)
}

// wavHeader writes the header for sampleCount interleaved stereo samples.
// Float files carry the extended fmt chunk and a fact chunk.
func wavHeader(buf *bytes.Buffer, sampleCount, sampleRate int, pcm16 bool) {
	const numChannels = 2
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*sampleCount
		fmtChunkSize = 16
		waveFormat = 1 // PCM
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*sampleCount
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
	}

	le := binary.LittleEndian
	buf.WriteString("RIFF")
	binary.Write(buf, le, uint32(chunkSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, le, uint32(fmtChunkSize))
	binary.Write(buf, le, uint16(waveFormat))
	binary.Write(buf, le, uint16(numChannels))
	binary.Write(buf, le, uint32(sampleRate))
	binary.Write(buf, le, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, le, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, le, uint16(8*bytesPerSample))                      // bits per sample
	if !pcm16 {
		binary.Write(buf, le, uint16(0)) // size of extension
		buf.WriteString("fact")
		binary.Write(buf, le, uint32(4))
		binary.Write(buf, le, uint32(sampleCount/numChannels)) // frames
	}
	buf.WriteString("data")
	binary.Write(buf, le, uint32(bytesPerSample*sampleCount))
}

// WriteFile writes samples to path as a wave file.
func WriteFile(path string, samples []float32, sampleRate int, pcm16 bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WAV(f, samples, sampleRate, pcm16); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
