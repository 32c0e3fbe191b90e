//go:build linux

package serialport

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openPty allocates a pseudo-terminal and returns the master fd and the
// slave path. The master stays open until the test ends.
func openPty(t *testing.T) (int, string) {
	t.Helper()
	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })

	require.NoError(t, unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0))
	n, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	require.NoError(t, err)
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func exclusive(t *testing.T, fd int) bool {
	t.Helper()
	v, err := unix.IoctlGetInt(fd, unix.TIOCGEXCL)
	require.NoError(t, err)
	return v != 0
}

func TestHeldTTYIsNotAcquired(t *testing.T) {
	_, slave := openPty(t)

	holder, err := unix.Open(slave, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(holder)
	require.NoError(t, unix.IoctlSetInt(holder, unix.TIOCEXCL, 0))

	assert.False(t, probeDevice(slave), "a tty held exclusively is not available")
	assert.True(t, exclusive(t, holder), "probing must not clear the holder's flag")

	port := New()
	err = port.Open(slave)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, ErrDeviceInUse)
	assert.False(t, port.IsOpen())
	assert.True(t, exclusive(t, holder), "a failed Open must not clear the holder's flag")
}

func TestCloseClearsOwnExclusiveFlag(t *testing.T) {
	_, slave := openPty(t)

	port := New()
	require.NoError(t, port.Open(slave))

	other := New()
	assert.ErrorIs(t, other.Open(slave), ErrDeviceInUse)

	require.NoError(t, port.Close())

	fd, err := unix.Open(slave, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(fd)
	assert.False(t, exclusive(t, fd))

	require.NoError(t, other.Open(slave))
	require.NoError(t, other.Close())
}

func TestCloseWakesUnboundedRead(t *testing.T) {
	_, slave := openPty(t)

	port := New()
	require.NoError(t, port.Open(slave, WithReadTimeouts(0, 0)))

	result := make(chan error, 1)
	go func() {
		_, err := port.Read(make([]byte, 16))
		result <- err
	}()
	time.Sleep(50 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		port.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind an in-flight Read")
	}

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrPortClosed)
	case <-time.After(time.Second):
		t.Fatal("Read did not return after Close")
	}
	assert.False(t, port.IsOpen())
}

func TestInterruptedReadKeepsReceivedBytes(t *testing.T) {
	master, slave := openPty(t)

	port := New()
	require.NoError(t, port.Open(slave, WithReadTimeouts(time.Second, 0)))
	defer port.Close()

	_, err := unix.Write(master, []byte("ab"))
	require.NoError(t, err)

	// The wide inter-byte gap keeps the read waiting after "ab" arrives.
	result := make(chan int, 1)
	go func() {
		n, _ := port.Read(make([]byte, 16))
		result <- n
	}()
	time.Sleep(100 * time.Millisecond)
	port.interrupt()

	select {
	case n := <-result:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("Read did not return after interrupt")
	}
}
