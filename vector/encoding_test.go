package vector

import (
	"math"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	orig := []float32{0.0, 1.5, -2.25, 3.75, float32(math.Pi)}

	b := Encode(orig)
	if len(b) != len(orig)*4 {
		t.Fatalf("blob length = %d, want %d", len(b), len(orig)*4)
	}

	decoded, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(orig) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(orig))
	}
	for i := range orig {
		if decoded[i] != orig[i] {
			t.Fatalf("decoded[%d] = %v, want %v", i, decoded[i], orig[i])
		}
	}
}

func TestEncodeDecode_Empty(t *testing.T) {
	if b := Encode(nil); len(b) != 0 {
		t.Fatalf("expected empty blob for nil slice, got len=%d", len(b))
	}
	vec, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) failed: %v", err)
	}
	if len(vec) != 0 {
		t.Fatalf("expected empty slice for nil blob, got len=%d", len(vec))
	}
}

func TestDecode_InvalidLength(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for blob length not multiple of 4")
	}
}
