package common

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSliceToBytes(t *testing.T) {
	floats := []float32{1, 0.5}
	raw := SliceToBytes(floats)

	if len(raw) != 8 {
		t.Fatalf("length = %d, want 8", len(raw))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[0:4])); got != 1 {
		t.Fatalf("first element = %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[4:8])); got != 0.5 {
		t.Fatalf("second element = %v", got)
	}
}

func TestSliceToBytesEmpty(t *testing.T) {
	if raw := SliceToBytes([]uint32(nil)); len(raw) != 0 {
		t.Fatalf("nil slice produced %d bytes", len(raw))
	}
}
