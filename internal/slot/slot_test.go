package slot

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotPutTake(t *testing.T) {
	var s Slot[int]
	assert.False(t, s.Occupied())

	_, ok := s.Take()
	assert.False(t, ok, "take from empty slot")

	require.NoError(t, s.Put(7))
	assert.True(t, s.Occupied())
	assert.ErrorIs(t, s.Put(8), ErrOccupied)

	h, ok := s.Take()
	require.True(t, ok)
	assert.Equal(t, 7, h)
	assert.False(t, s.Occupied())
}

func TestSlotDrain(t *testing.T) {
	var s Slot[string]
	require.NoError(t, s.Put("caffeinate"))

	h, ok := s.Drain()
	require.True(t, ok)
	assert.Equal(t, "caffeinate", h)
	assert.True(t, s.Drained())
	assert.False(t, s.Occupied())
	assert.ErrorIs(t, s.Put("again"), ErrDrained)

	_, ok = s.Drain()
	assert.False(t, ok, "second drain finds nothing")
}

func TestStoreZeroValue(t *testing.T) {
	var st Store[int]
	assert.False(t, st.Occupied())
	require.NoError(t, st.Do(func(s *Slot[int]) error { return s.Put(1) }))
	assert.True(t, st.Occupied())
}

func TestStoreDoReturnsCallbackError(t *testing.T) {
	st := New[int]()
	want := errors.New("boom")
	err := st.Do(func(*Slot[int]) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestStoreReleasesLockOnPanic(t *testing.T) {
	st := New[int]()
	func() {
		defer func() { _ = recover() }()
		_ = st.Do(func(*Slot[int]) error { panic("inside critical section") })
	}()

	done := make(chan struct{})
	go func() {
		_ = st.Do(func(s *Slot[int]) error { return s.Put(1) })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock not released after panic")
	}
}

func TestStoreMutualExclusion(t *testing.T) {
	st := New[int]()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Do(func(s *Slot[int]) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				if _, ok := s.Take(); !ok {
					_ = s.Put(1)
				}

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.False(t, st.Occupied(), "64 toggles leave the slot empty")
}

func TestAccess(t *testing.T) {
	st := New[int]()
	require.NoError(t, st.Do(func(s *Slot[int]) error { return s.Put(42) }))
	got := Access(st, func(s *Slot[int]) int {
		h, _ := s.Take()
		return h
	})
	assert.Equal(t, 42, got)
	assert.False(t, st.Occupied())
}
