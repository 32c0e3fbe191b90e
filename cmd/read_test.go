package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/allbin/go-serialport"
)

// scriptedReader returns each chunk in turn, then err forever.
type scriptedReader struct {
	chunks [][]byte
	err    error
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, r.err
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestCaptureFlushesHexDumpOnError(t *testing.T) {
	output := filepath.Join(t.TempDir(), "capture.log")
	boom := errors.New("device gone")
	r := &scriptedReader{chunks: [][]byte{[]byte("abc")}, err: boom}

	total, err := capture(context.Background(), r, output, true, 16, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected read error, got %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 bytes, got %d", total)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	// the ASCII column is only written when the dumper is closed
	if !strings.Contains(string(data), "|abc|") {
		t.Errorf("Expected a complete last dump line, got %q", data)
	}
}

func TestCaptureStopsAtCount(t *testing.T) {
	output := filepath.Join(t.TempDir(), "capture.bin")
	r := &scriptedReader{
		chunks: [][]byte{[]byte("hello"), []byte("world")},
		err:    serialport.ErrReadTimeout,
	}

	total, err := capture(context.Background(), r, output, false, 16, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("Expected 7 bytes, got %d", total)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hellowo" {
		t.Errorf("Expected \"hellowo\", got %q", data)
	}
}

func TestCaptureRetriesTimeoutsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := readerFunc(func(p []byte) (int, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return 0, serialport.ErrReadTimeout
	})

	total, err := capture(ctx, r, filepath.Join(t.TempDir(), "out"), false, 16, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if total != 0 || calls != 3 {
		t.Errorf("Expected 0 bytes after 3 reads, got %d bytes after %d reads", total, calls)
	}
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
