package sound

import (
	"encoding/binary"
	"math"
)

// Thud renders a decaying sine as 16-bit little-endian stereo PCM, the format
// ebiten's audio players expect
func Thud(sampleRate int, freq, seconds, gain float64) []byte {
	n := int(float64(sampleRate) * seconds)
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-t * 30)
		v := gain * env * math.Sin(2*math.Pi*freq*t)
		v = math.Max(-1, math.Min(1, v))
		sample := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*4:], sample)
		binary.LittleEndian.PutUint16(out[i*4+2:], sample)
	}
	return out
}
