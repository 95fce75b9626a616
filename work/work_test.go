package work_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/journeymidnight/radosmirror/work"
	"github.com/stretchr/testify/assert"
)

func TestQueueRunsCallbacksWithResult(t *testing.T) {
	p := work.NewPool(2)

	var mu sync.Mutex
	got := make(map[int]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Queue(func(r int) {
			mu.Lock()
			got[r] = true
			mu.Unlock()
			wg.Done()
		}, i)
	}
	wg.Wait()
	p.Close()

	assert.Len(t, got, 50)
	assert.True(t, got[0])
	assert.True(t, got[49])
}

func TestCloseDrainsQueuedCallbacks(t *testing.T) {
	p := work.NewPool(1)

	var ran int32
	for i := 0; i < 20; i++ {
		p.Queue(func(r int) {
			atomic.AddInt32(&ran, 1)
		}, i)
	}
	p.Close()
	assert.Equal(t, int32(20), atomic.LoadInt32(&ran))
}

func TestCallbackReceivesQueuedResult(t *testing.T) {
	p := work.NewPool(1)
	defer p.Close()

	done := make(chan int, 1)
	p.Queue(func(r int) {
		done <- r
	}, -116)
	assert.Equal(t, -116, <-done)
}
