package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerLastWriteWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	ran := make(chan int, 10)

	for i := 1; i <= 5; i++ {
		v := i
		d.Submit(func() { ran <- v })
	}

	select {
	case v := <-ran:
		assert.Equal(t, 5, v)
	case <-time.After(time.Second):
		t.Fatal("debounced task never ran")
	}

	select {
	case v := <-ran:
		t.Fatalf("superseded task %d ran", v)
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Submit(func() { calls.Add(1) })
	require.True(t, d.Pending())
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls atomic.Int32

	d.Submit(func() { calls.Add(1) })
	assert.True(t, d.Flush())
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Flush())
	assert.False(t, d.Pending())
}
