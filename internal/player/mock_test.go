package player

import (
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_PositionAdvancesWhilePlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock(10 * time.Second)
		_, err := m.Open("/music/a.mp3", nil)
		require.NoError(t, err)

		m.Start()
		time.Sleep(3 * time.Second)
		assert.Equal(t, 3*time.Second, m.Position())

		m.Pause()
		time.Sleep(2 * time.Second)
		assert.Equal(t, 3*time.Second, m.Position())
		assert.Equal(t, Paused, m.State())

		m.Close()
	})
}

func TestMock_EndFiresOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var ends atomic.Int32
		m := NewMock(time.Second)
		_, err := m.Open("/music/a.mp3", func(error) { ends.Add(1) })
		require.NoError(t, err)

		m.Start()
		time.Sleep(5 * time.Second)
		synctest.Wait()

		assert.Equal(t, int32(1), ends.Load())
		assert.Equal(t, time.Second, m.Position())
		m.Close()
	})
}

func TestMock_CloseCancelsEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var ends atomic.Int32
		m := NewMock(time.Second)
		_, err := m.Open("/music/a.mp3", func(error) { ends.Add(1) })
		require.NoError(t, err)

		m.Start()
		time.Sleep(500 * time.Millisecond)
		m.Close()
		time.Sleep(2 * time.Second)
		synctest.Wait()

		assert.Equal(t, int32(0), ends.Load())
		assert.Equal(t, 1, m.CloseCalls())
		assert.Equal(t, time.Duration(0), m.Duration())
	})
}

func TestMock_SeekClampsAndRearms(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var ends atomic.Int32
		m := NewMock(10 * time.Second)
		_, err := m.Open("/music/a.mp3", func(error) { ends.Add(1) })
		require.NoError(t, err)

		assert.Equal(t, time.Duration(0), m.SeekTo(-time.Second))
		assert.Equal(t, 10*time.Second, m.SeekTo(time.Minute))

		m.SeekTo(9 * time.Second)
		m.Start()
		time.Sleep(1500 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, int32(1), ends.Load())
		m.Close()
	})
}

func TestMock_RateScalesPosition(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock(time.Minute)
		_, err := m.Open("/music/a.mp3", nil)
		require.NoError(t, err)

		m.SetRate(2)
		m.Start()
		time.Sleep(time.Second)

		assert.Equal(t, 2*time.Second, m.Position())
		assert.InDelta(t, 2.0, m.Rate(), 1e-9)
		m.Close()
	})
}

func TestMock_OpenError(t *testing.T) {
	m := NewMock(time.Second)
	m.SetOpenError(ErrDevice)

	_, err := m.Open("/music/a.mp3", nil)

	assert.True(t, errors.Is(err, ErrDevice))
	assert.Equal(t, Closed, m.State())
	assert.Equal(t, []string{"/music/a.mp3"}, m.OpenCalls())
}

func TestMock_FailAtStopsWithError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		errCorrupt := errors.New("corrupt frame")
		var (
			ends atomic.Int32
			got  atomic.Value
		)
		m := NewMock(10 * time.Second)
		m.FailAt(2*time.Second, errCorrupt)
		_, err := m.Open("/music/a.mp3", func(err error) {
			ends.Add(1)
			got.Store(err)
		})
		require.NoError(t, err)

		m.Start()
		time.Sleep(5 * time.Second)
		synctest.Wait()

		assert.Equal(t, int32(1), ends.Load())
		assert.ErrorIs(t, got.Load().(error), errCorrupt)
		assert.Equal(t, 2*time.Second, m.Position())
		m.Close()
	})
}

func TestMock_SeekPastFailurePlaysToEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var (
			ends   atomic.Int32
			failed atomic.Bool
		)
		m := NewMock(5 * time.Second)
		m.FailAt(time.Second, errors.New("corrupt frame"))
		_, err := m.Open("/music/a.mp3", func(err error) {
			ends.Add(1)
			failed.Store(err != nil)
		})
		require.NoError(t, err)

		m.SeekTo(3 * time.Second)
		m.Start()
		time.Sleep(3 * time.Second)
		synctest.Wait()

		assert.Equal(t, int32(1), ends.Load())
		assert.False(t, failed.Load())
		assert.Equal(t, 5*time.Second, m.Position())
		m.Close()
	})
}
