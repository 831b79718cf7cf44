package model

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Precision selects the byte width used to persist coefficient vectors. The
// width is declared by whoever encodes or decodes an artifact; it is never
// embedded in the artifact itself.
type Precision int

const (
	Float32 Precision = iota // IEEE 754 single, the training default
	Float16                  // IEEE 754 half, for published artifacts
	Float64                  // IEEE 754 double
)

// Size returns the byte width of one value at this precision.
func (p Precision) Size() int {
	switch p {
	case Float16:
		return 2
	case Float64:
		return 8
	default:
		return 4
	}
}

func (p Precision) String() string {
	switch p {
	case Float16:
		return "float16"
	case Float64:
		return "float64"
	default:
		return "float32"
	}
}

// ParsePrecision maps a configuration string to a Precision.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "float16", "f16", "half":
		return Float16, nil
	case "float32", "f32", "single", "":
		return Float32, nil
	case "float64", "f64", "double":
		return Float64, nil
	}
	return Float32, fmt.Errorf("model: unknown precision %q", s)
}

// EncodeFloats renders w as a hex string of little-endian values at
// precision p.
func EncodeFloats(w []float64, p Precision) string {
	buf := make([]byte, len(w)*p.Size())
	switch p {
	case Float16:
		for i, v := range w {
			binary.LittleEndian.PutUint16(buf[i*2:], f32ToF16(float32(v)))
		}
	case Float64:
		for i, v := range w {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
	default:
		for i, v := range w {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		}
	}
	return hex.EncodeToString(buf)
}

// DecodeFloats parses a hex coefficient buffer at precision p.
func DecodeFloats(s string, p Precision) ([]float64, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("model: coefficient buffer is not hex: %w", err)
	}
	size := p.Size()
	if len(buf)%size != 0 {
		return nil, fmt.Errorf("model: coefficient buffer length %d is not a multiple of %d", len(buf), size)
	}
	w := make([]float64, len(buf)/size)
	switch p {
	case Float16:
		for i := range w {
			w[i] = float64(f16ToF32(binary.LittleEndian.Uint16(buf[i*2:])))
		}
	case Float64:
		for i := range w {
			w[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
	default:
		for i := range w {
			w[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		}
	}
	return w, nil
}

// f32ToF16 truncates a float32 to IEEE 754 half precision. Values below the
// half subnormal range flush to zero; values above the half range saturate
// to infinity.
func f32ToF16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32((bits>>23)&0xff) - 127
	frac := bits & 0x7fffff
	switch {
	case exp == 128:
		if frac != 0 {
			return sign | 0x7e00 // NaN
		}
		return sign | 0x7c00 // Inf
	case exp > 15:
		return sign | 0x7c00
	case exp < -24:
		return sign
	case exp < -14:
		// Subnormal half: shift the implicit leading bit into the mantissa.
		return sign | uint16((frac|0x800000)>>uint32(-1-exp))
	}
	return sign | uint16(exp+15)<<10 | uint16(frac>>13)
}

// f16ToF32 expands an IEEE 754 half-precision value to float32, including
// subnormal halves.
func f16ToF32(u uint16) float32 {
	sign := uint32(u&0x8000) << 16
	exp := uint32(u>>10) & 0x1f
	frac := uint32(u & 0x3ff)
	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		return math.Float32frombits(sign | e<<23 | (frac&0x3ff)<<13)
	case 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+127-15)<<23 | frac<<13)
}
