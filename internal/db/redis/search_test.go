package redis

import (
	"testing"
)

func TestVectorBytesRoundtrip(t *testing.T) {
	vec := []float32{0.0, 1.0, -2.5, 3.14159, -0.000001}

	got := BytesToVector(VectorToBytes(vec))
	if len(got) != len(vec) {
		t.Fatalf("len = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("vec[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestVectorToBytes_LittleEndian(t *testing.T) {
	// 1.0 as IEEE 754 float32 is 0x3F800000; little-endian byte order on the wire.
	got := VectorToBytes([]float32{1.0})
	want := string([]byte{0x00, 0x00, 0x80, 0x3F})
	if got != want {
		t.Errorf("bytes = %x, want %x", got, want)
	}
}

func TestBytesToVector_RejectsOddLength(t *testing.T) {
	if v := BytesToVector("abc"); v != nil {
		t.Errorf("v = %v, want nil", v)
	}
}

func TestBytesToVector_Empty(t *testing.T) {
	if v := BytesToVector(""); len(v) != 0 {
		t.Errorf("v = %v, want empty", v)
	}
}
