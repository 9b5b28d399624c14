package transcriber

import (
	"bytes"
	"encoding/binary"
	"math"
)

// encodeWAV wraps 16-bit PCM samples in a mono WAV container.
func encodeWAV(samples []int16, sampleRate int) []byte {
	const channels = 1
	const bitsPerSample = 16

	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	return wrapRIFF(data, 1, channels, sampleRate, bitsPerSample)
}

// encodeWAVFloat32 wraps normalized float samples in a mono IEEE-float WAV
// container, preserving the scaled amplitudes for the local model.
func encodeWAVFloat32(samples []float32, sampleRate int) []byte {
	const channels = 1
	const bitsPerSample = 32

	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}

	return wrapRIFF(data, 3, channels, sampleRate, bitsPerSample)
}

func wrapRIFF(data []byte, format uint16, channels, sampleRate, bitsPerSample int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	fileSize := 36 + len(data)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))            // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, format)                // PCM=1, IEEE float=3
	binary.Write(&buf, binary.LittleEndian, uint16(channels))      // number of channels
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))    // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))      // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))    // block align
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}
