package work

import (
	"sync"
)

const TASKQ_MAX_LENGTH = 200

type task struct {
	f func(int)
	r int
}

// Pool runs completion callbacks on a fixed set of goroutines, so callers
// observe results off the scheduler's worker thread. Invocation is never
// reentrant with Queue
type Pool struct {
	tasks chan task
	wg    sync.WaitGroup
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks: make(chan task, TASKQ_MAX_LENGTH),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.f(t.r)
	}
}

// Queue arranges for f(r) to run on a pool goroutine.
// Must not be called after Close
func (p *Pool) Queue(f func(int), r int) {
	p.tasks <- task{f: f, r: r}
}

// Close drains queued callbacks and stops the workers
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
