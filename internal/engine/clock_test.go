package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerFiresInDeadlineOrder(t *testing.T) {
	sched := NewManualScheduler()
	var fired []string

	sched.After(3*time.Second, func() { fired = append(fired, "later") })
	sched.After(time.Second, func() { fired = append(fired, "sooner") })

	sched.Advance(2 * time.Second)
	assert.Equal(t, []string{"sooner"}, fired)

	sched.Advance(time.Second)
	assert.Equal(t, []string{"sooner", "later"}, fired)
}

func TestManualSchedulerCancel(t *testing.T) {
	sched := NewManualScheduler()
	fired := false

	cancel := sched.After(time.Second, func() { fired = true })
	cancel()

	sched.Advance(5 * time.Second)
	assert.False(t, fired)
}

func TestManualSchedulerCallbackMayReschedule(t *testing.T) {
	sched := NewManualScheduler()
	ticks := 0

	var tick func()
	tick = func() {
		ticks++
		if ticks < 5 {
			sched.After(time.Second, tick)
		}
	}
	sched.After(time.Second, tick)

	sched.Advance(10 * time.Second)
	assert.Equal(t, 5, ticks)
}
