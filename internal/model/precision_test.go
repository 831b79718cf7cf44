package model

import (
	"math"
	"strings"
	"testing"
)

func TestPrecisionSize(t *testing.T) {
	tests := []struct {
		p    Precision
		size int
		name string
	}{
		{Float16, 2, "float16"},
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
	}
	for _, tt := range tests {
		if got := tt.p.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.name, got, tt.size)
		}
		if got := tt.p.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}

func TestParsePrecision(t *testing.T) {
	for s, want := range map[string]Precision{
		"float16": Float16,
		"half":    Float16,
		"float32": Float32,
		"":        Float32,
		"double":  Float64,
	} {
		got, err := ParsePrecision(s)
		if err != nil {
			t.Errorf("ParsePrecision(%q) error: %v", s, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePrecision(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParsePrecision("int8"); err == nil {
		t.Error("ParsePrecision(int8) succeeded, want error")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	w := []float64{0, 1, -1, 0.5, -0.037261961400508881, 2048.25}

	for _, p := range []Precision{Float32, Float64} {
		enc := EncodeFloats(w, p)
		if len(enc) != len(w)*p.Size()*2 {
			t.Fatalf("%v: hex length = %d, want %d", p, len(enc), len(w)*p.Size()*2)
		}
		got, err := DecodeFloats(enc, p)
		if err != nil {
			t.Fatalf("%v: DecodeFloats error: %v", p, err)
		}
		for i := range w {
			want := w[i]
			if p == Float32 {
				want = float64(float32(w[i]))
			}
			if got[i] != want {
				t.Errorf("%v[%d] = %v, want %v", p, i, got[i], want)
			}
		}
	}
}

func TestFloat16KnownValues(t *testing.T) {
	tests := []struct {
		in  float32
		hex string
	}{
		{0, "0000"},
		{1, "003c"},     // 0x3c00 little-endian
		{-2, "00c0"},    // 0xc000
		{0.5, "0038"},   // 0x3800
		{65504, "ff7b"}, // largest finite half
		{5.9604644775390625e-08, "0100"}, // 2^-24, smallest subnormal half
	}
	for _, tt := range tests {
		if got := EncodeFloats([]float64{float64(tt.in)}, Float16); got != tt.hex {
			t.Errorf("EncodeFloats(%v) = %q, want %q", tt.in, got, tt.hex)
		}
		back, err := DecodeFloats(tt.hex, Float16)
		if err != nil {
			t.Fatalf("DecodeFloats(%q) error: %v", tt.hex, err)
		}
		if float32(back[0]) != tt.in {
			t.Errorf("DecodeFloats(%q) = %v, want %v", tt.hex, back[0], tt.in)
		}
	}
}

func TestFloat16Saturation(t *testing.T) {
	got, err := DecodeFloats(EncodeFloats([]float64{1e6}, Float16), Float16)
	if err != nil {
		t.Fatalf("DecodeFloats error: %v", err)
	}
	if !math.IsInf(got[0], 1) {
		t.Errorf("1e6 at half precision = %v, want +Inf", got[0])
	}

	got, err = DecodeFloats(EncodeFloats([]float64{1e-9}, Float16), Float16)
	if err != nil {
		t.Fatalf("DecodeFloats error: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("1e-9 at half precision = %v, want 0", got[0])
	}
}

func TestFloat16SubnormalDecode(t *testing.T) {
	// 0x0001 is the smallest positive subnormal half, 2^-24.
	got, err := DecodeFloats("0100", Float16)
	if err != nil {
		t.Fatalf("DecodeFloats error: %v", err)
	}
	if want := math.Pow(2, -24); got[0] != want {
		t.Errorf("subnormal = %v, want %v", got[0], want)
	}
}

func TestDecodeFloatsRejectsBadBuffers(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not hex", "zz"},
		{"odd nibbles", "abc"},
		{"partial value", "0000ff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeFloats(tt.in, Float32); err == nil {
				t.Errorf("DecodeFloats(%q) succeeded, want error", tt.in)
			}
		})
	}
}

func TestEncodeFloatsLowercaseHex(t *testing.T) {
	enc := EncodeFloats([]float64{1, -1, 3.5}, Float32)
	if enc != strings.ToLower(enc) {
		t.Errorf("EncodeFloats produced uppercase hex: %q", enc)
	}
}
