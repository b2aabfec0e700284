package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOnceStaysFinished(t *testing.T) {
	tm := NewOnce(100 * time.Millisecond)
	assert.False(t, tm.Tick(60*time.Millisecond).Finished())
	assert.Equal(t, 40*time.Millisecond, tm.Remaining())
	assert.True(t, tm.Tick(60*time.Millisecond).Finished())
	assert.True(t, tm.Tick(0).Finished())
	assert.Zero(t, tm.Remaining())
}

func TestOnceZeroDurationFinishesOnFirstTick(t *testing.T) {
	tm := NewOnce(0)
	assert.False(t, tm.Finished())
	assert.True(t, tm.Tick(0).Finished())
}

func TestRepeatingFinishesOnlyOnWrap(t *testing.T) {
	tm := NewRepeating(100 * time.Millisecond)
	var fired int
	for i := 0; i < 10; i++ {
		if tm.Tick(30 * time.Millisecond).Finished() {
			fired++
		}
	}
	// 300ms elapsed in total
	assert.Equal(t, 3, fired)
	assert.Equal(t, 0*time.Millisecond, tm.Elapsed)
}

func TestReset(t *testing.T) {
	tm := NewOnce(time.Second)
	tm.Tick(2 * time.Second)
	tm.Reset()
	assert.False(t, tm.Finished())
	assert.False(t, tm.Started())
}
