//go:build !windows

package shmbuf

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testChannelName(t *testing.T) string {
	t.Helper()
	return "/shmbuf-chan-" + uuid.NewString()
}

func TestProducerConsumerRoundTrip(t *testing.T) {
	name := testChannelName(t)

	prod := NewProducer(name, 128)
	require.True(t, prod.IsValid(), prod.Err())
	defer prod.Destroy()
	defer prod.Close()

	require.Equal(t, uint32(128), prod.Capacity())

	cons := NewConsumer(name)
	require.True(t, cons.IsValid(), cons.Err())
	defer cons.Close()

	require.Equal(t, uint32(128), cons.Capacity())

	ok, err := prod.Write([]byte("ping"))
	require.NoError(t, err)
	require.True(t, ok)

	buf := make([]byte, 128)
	n := cons.Read(buf)
	require.Equal(t, 4, n)
	require.Equal(t, "ping", string(buf[:n]))
}

func TestProducerCapacityRoundsDownToPowerOfTwo(t *testing.T) {
	name := testChannelName(t)
	prod := NewProducer(name, 100)
	require.True(t, prod.IsValid(), prod.Err())
	defer prod.Destroy()
	defer prod.Close()

	require.Equal(t, uint32(64), prod.Capacity())
}

func TestConsumerOpenBeforeProducerCreatesFails(t *testing.T) {
	name := testChannelName(t)
	cons := NewConsumer(name)
	require.False(t, cons.IsValid())
	require.Equal(t, StatusOpenFailed, cons.Status())
}

func TestProducerCloseThenDestroy(t *testing.T) {
	name := testChannelName(t)
	prod := NewProducer(name, 64)
	require.True(t, prod.IsValid())

	require.NoError(t, prod.Close())
	// Close must not have unlinked the name: a fresh Consumer can still
	// open it.
	cons := NewConsumer(name)
	require.True(t, cons.IsValid(), cons.Err())
	require.NoError(t, cons.Close())
	require.NoError(t, prod.Destroy())
}

func TestProducerWriteAfterCloseFails(t *testing.T) {
	name := testChannelName(t)
	prod := NewProducer(name, 64)
	require.True(t, prod.IsValid())
	defer prod.Destroy()

	require.NoError(t, prod.Close())
	_, err := prod.Write([]byte("too late"))
	require.ErrorIs(t, err, ErrClosed)
}

// TestProducerConsumerConcurrentProcesses exercises the full Producer
// and Consumer facades concurrently over a real named region, the same
// way a two-process deployment would, just with goroutines standing in
// for processes.
func TestProducerConsumerConcurrentProcesses(t *testing.T) {
	const totalMessages = 500
	name := testChannelName(t)

	prod := NewProducer(name, 256)
	require.True(t, prod.IsValid(), prod.Err())
	defer prod.Destroy()
	defer prod.Close()

	cons := NewConsumer(name)
	require.True(t, cons.IsValid(), cons.Err())
	defer cons.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < totalMessages; i++ {
			msg := []byte{byte(i)}
			for {
				ok, err := prod.Write(msg)
				require.NoError(t, err)
				if ok {
					break
				}
			}
		}
	}()

	received := make([]byte, 0, totalMessages)
	go func() {
		defer wg.Done()
		buf := make([]byte, 1)
		for len(received) < totalMessages {
			n := cons.Read(buf)
			if n == 0 {
				continue
			}
			received = append(received, buf[0])
		}
	}()

	wg.Wait()
	require.Len(t, received, totalMessages)
	for i, b := range received {
		require.Equal(t, byte(i), b)
	}
}
