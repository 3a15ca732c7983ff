package audio

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strings"
)

const (
	sampleRate    = 22050
	bitsPerSample = 16
	numChannels   = 1
)

// baseTones are the pitches the fallback voice cycles through. A small
// pentatonic set keeps the cadence listenable rather than alarming.
var baseTones = []float64{220.0, 246.94, 277.18, 329.63, 369.99}

// SynthesizeFallback renders a deterministic spoken-cadence waveform for the
// given text and duration. The same text always produces the same bytes, so
// tests and repeated requests are stable.
func SynthesizeFallback(text string, duration float64) []byte {
	words := strings.Fields(text)
	if len(words) == 0 {
		words = []string{"silence"}
	}
	totalSamples := int(duration * sampleRate)
	if totalSamples <= 0 {
		totalSamples = sampleRate
	}

	samplesPerWord := totalSamples / len(words)
	if samplesPerWord < sampleRate/10 {
		samplesPerWord = sampleRate / 10
		totalSamples = samplesPerWord * len(words)
	}
	// Trailing fifth of each word slot is a pause, mimicking speech rhythm.
	voiced := samplesPerWord * 4 / 5

	pcm := make([]int16, 0, totalSamples)
	for _, word := range words {
		tone := baseTones[wordSeed(word)%uint64(len(baseTones))]
		// Longer words drop slightly in pitch.
		tone /= 1.0 + float64(len(word))/40.0
		for i := 0; i < samplesPerWord; i++ {
			if i >= voiced {
				pcm = append(pcm, 0)
				continue
			}
			// Attack/decay envelope keeps word boundaries from clicking.
			envelope := fadeEnvelope(i, voiced)
			value := math.Sin(2 * math.Pi * tone * float64(i) / sampleRate)
			pcm = append(pcm, int16(value*envelope*math.MaxInt16*0.4))
		}
	}
	return encodeWAV(pcm)
}

func wordSeed(word string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(word)))
	return h.Sum64()
}

func fadeEnvelope(i, total int) float64 {
	ramp := total / 10
	if ramp == 0 {
		return 1
	}
	switch {
	case i < ramp:
		return float64(i) / float64(ramp)
	case i > total-ramp:
		return float64(total-i) / float64(ramp)
	default:
		return 1
	}
}

// encodeWAV wraps PCM samples in a RIFF/WAVE container.
func encodeWAV(pcm []int16) []byte {
	dataSize := len(pcm) * 2
	buf := make([]byte, 0, 44+dataSize)

	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataSize))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, numChannels)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate*numChannels*bitsPerSample/8)
	buf = binary.LittleEndian.AppendUint16(buf, numChannels*bitsPerSample/8)
	buf = binary.LittleEndian.AppendUint16(buf, bitsPerSample)

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataSize))
	for _, sample := range pcm {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(sample))
	}
	return buf
}
