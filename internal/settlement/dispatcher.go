package settlement

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Job - пост-коммитный эффект
type Job func(ctx context.Context)

const jobTimeout = 10 * time.Second

// Dispatcher выполняет эффекты вне пути расчёта: ограниченная очередь и пул воркеров.
// Submit никогда не блокирует; при переполнении задача отбрасывается.
type Dispatcher struct {
	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewDispatcher запускает workers горутин
func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		jobs:   make(chan Job, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Submit ставит задачу в очередь; false если очередь полна или диспетчер закрыт
func (d *Dispatcher) Submit(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped - сколько задач было отброшено
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close дожидается выполнения уже принятых задач
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Side effect panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(d.ctx, jobTimeout)
	defer cancel()
	job(ctx)
}
