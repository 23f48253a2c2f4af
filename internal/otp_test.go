package internal

import "testing"

func TestNewCodeWidthAndAlphabet(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := NewCode(digits)
		if err != nil {
			t.Fatalf("NewCode(%d): %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("NewCode(%d) returned %q (len %d)", digits, code, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("NewCode(%d) returned non-digit %q", digits, code)
			}
		}
	}
}

func TestNewCodeRejectsInvalidWidth(t *testing.T) {
	for _, digits := range []int{-1, 0, 3, 11} {
		if _, err := NewCode(digits); err == nil {
			t.Fatalf("NewCode(%d): expected error", digits)
		}
	}
}

func TestNewCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewCode(6)
		if err != nil {
			t.Fatalf("NewCode: %v", err)
		}
		seen[code] = true
	}
	// 50 draws from a million-value space colliding down to a handful
	// would indicate a broken source.
	if len(seen) < 40 {
		t.Fatalf("expected distinct codes, got %d unique of 50", len(seen))
	}
}
