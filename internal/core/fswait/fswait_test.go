package fswait

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	remaining int
}

func (f *fakeSource) HasWork() bool {
	if f.remaining <= 0 {
		return false
	}
	f.remaining--
	return true
}

func Test_Waiter_AwaitIdle_ReturnsTrueOnceWorkDrains(t *testing.T) {
	// Arrange
	w := NewWithBounds(time.Millisecond, time.Second)
	src := &fakeSource{remaining: 3}

	// Act
	ok := w.AwaitIdle(src)

	// Assert
	assert.True(t, ok)
	assert.False(t, src.HasWork())
}

func Test_Waiter_AwaitIdle_GivesUpPastMaxWait(t *testing.T) {
	// Arrange
	w := NewWithBounds(time.Millisecond, 5*time.Millisecond)
	src := &fakeSource{remaining: 1 << 30}

	// Act
	ok := w.AwaitIdle(src)

	// Assert
	assert.False(t, ok)
}
