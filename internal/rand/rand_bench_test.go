package rand

import (
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := RequestID(16)
		if len(id) != 16 {
			t.Fatalf("RequestID(16) = %q, want length 16", id)
		}
		for _, r := range id {
			if !strings.ContainsRune(charset, r) {
				t.Fatalf("RequestID produced %q outside the charset", r)
			}
		}
		if seen[id] {
			t.Fatalf("RequestID repeated %q within 100 draws", id)
		}
		seen[id] = true
	}
}

func BenchmarkRequestID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RequestID(16)
	}
}
