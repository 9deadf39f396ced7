package settlement

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_RunsJobs(t *testing.T) {
	d := NewDispatcher(3, 10)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		assert.True(t, d.Submit(func(ctx context.Context) { ran.Add(1) }))
	}

	d.Close()
	assert.Equal(t, int32(10), ran.Load())
	assert.Equal(t, int64(0), d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	// занимаем единственного воркера
	assert.True(t, d.Submit(func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started

	assert.True(t, d.Submit(func(ctx context.Context) {}))
	assert.False(t, d.Submit(func(ctx context.Context) {}))
	assert.Equal(t, int64(1), d.Dropped())

	close(release)
	d.Close()
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := NewDispatcher(1, 1)
	d.Close()
	d.Close()

	assert.False(t, d.Submit(func(ctx context.Context) {}))
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	d := NewDispatcher(1, 4)
	var ran atomic.Bool

	d.Submit(func(ctx context.Context) { panic("boom") })
	d.Submit(func(ctx context.Context) { ran.Store(true) })

	d.Close()
	assert.True(t, ran.Load())
}

func TestDispatcher_JobHasDeadline(t *testing.T) {
	d := NewDispatcher(1, 1)
	var deadline atomic.Bool

	d.Submit(func(ctx context.Context) {
		_, ok := ctx.Deadline()
		deadline.Store(ok)
	})
	d.Close()

	assert.True(t, deadline.Load())
	assert.Less(t, time.Duration(0), jobTimeout)
}
