package serialport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

// probeSet reports success for the listed indexes of prefix X.
func probeSet(indexes ...int) func(string) bool {
	ok := make(map[string]bool)
	for _, i := range indexes {
		ok[DevicePath(StandardPortName("X", i))] = true
	}
	return func(path string) bool { return ok[path] }
}

func testEnumerator(probe func(string) bool) Enumerator {
	return Enumerator{
		Prefix:      "X",
		First:       1,
		Count:       256,
		Concurrency: 4,
		probe:       probe,
	}
}

func TestEnumeratorListSorted(t *testing.T) {
	e := testEnumerator(probeSet(12, 3, 256, 1, 100))

	names, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"X1", "X3", "X12", "X100", "X256"}, names)
}

func TestEnumeratorListEmpty(t *testing.T) {
	e := testEnumerator(probeSet())

	names, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEnumeratorProbesWholeRange(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	e := testEnumerator(func(path string) bool {
		mu.Lock()
		seen[path] = true
		mu.Unlock()
		return false
	})

	_, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 256)
	assert.True(t, seen[DevicePath("X1")])
	assert.True(t, seen[DevicePath("X256")])
	assert.False(t, seen[DevicePath("X0")])
	assert.False(t, seen[DevicePath("X257")])
}

func TestEnumeratorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := testEnumerator(probeSet(1, 2))
	_, err := e.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Enumeration and ports share nothing: a port held open elsewhere is just
// missing from the list.
func TestEnumeratorSkipsBusyPorts(t *testing.T) {
	devs := newFakeDevices(DevicePath("X1"), DevicePath("X2"), DevicePath("X3"))
	port := newPort(devs.open)
	require.NoError(t, port.Open("X2"))
	defer port.Close()

	e := testEnumerator(func(path string) bool {
		h, err := devs.open(path)
		if err != nil {
			return false
		}
		devs.mu.Lock()
		h.close()
		devs.mu.Unlock()
		return true
	})

	names, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"X1", "X3"}, names)
	assert.Equal(t, 1, devs.held(), "probing must not keep handles")
}

func TestEnumeratorRegistry(t *testing.T) {
	e := Enumerator{
		Prefix: "X",
		Method: MethodRegistry,
		details: func() ([]*enumerator.PortDetails, error) {
			return []*enumerator.PortDetails{
				{Name: DevicePath("X10")},
				{Name: "Y1"},
				{Name: DevicePath("X2"), IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A1", Product: "FT232R"},
				{Name: DevicePath("X2")},
				nil,
			}, nil
		},
	}

	names, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"X2", "X10"}, names)

	infos, err := e.Details(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "0403", infos[0].VendorID)
	assert.Equal(t, "6001", infos[0].ProductID)
	assert.Equal(t, "FT232R", infos[0].Product)
	assert.Equal(t, DevicePath("X2"), infos[0].Path)
}

func TestEnumeratorRegistryError(t *testing.T) {
	boom := errors.New("no registry")
	e := Enumerator{
		Method:  MethodRegistry,
		details: func() ([]*enumerator.PortDetails, error) { return nil, boom },
	}

	_, err := e.List(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDefaultEnumerator(t *testing.T) {
	e := DefaultEnumerator()

	assert.Equal(t, standardPrefix, e.Prefix)
	assert.Equal(t, firstStandardIndex, e.First)
	assert.Equal(t, 256, e.Count)
	assert.Equal(t, MethodProbe, e.Method)
}
