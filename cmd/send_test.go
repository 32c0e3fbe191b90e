package cmd

import (
	"bytes"
	"testing"
)

func TestPayload(t *testing.T) {
	for _, size := range []int{1, 2, 255, 256, 1024} {
		p := payload(size)
		if len(p) != size {
			t.Errorf("Expected %d bytes, got %d", size, len(p))
		}
		// consecutive bytes always differ, so a dropped or repeated byte shows
		for i := 1; i < len(p); i++ {
			if p[i] == p[i-1] {
				t.Errorf("payload(%d) repeats at %d", size, i)
			}
		}
	}
	if bytes.Equal(payload(3), payload(4)[:3]) {
		t.Error("Expected payloads of different sizes to differ")
	}
}

func TestPrintable(t *testing.T) {
	if got := printable([]byte("ok\r\n"), false); got != "ok··" {
		t.Errorf("Expected \"ok··\", got %q", got)
	}
	if got := printable([]byte("abc"), true); got != "abc..." {
		t.Errorf("Expected \"abc...\", got %q", got)
	}
}
