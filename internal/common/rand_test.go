package common

import "testing"

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if len(s) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(s))
	}

	s2, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if s == s2 {
		t.Fatalf("two generated tokens must differ")
	}
}
