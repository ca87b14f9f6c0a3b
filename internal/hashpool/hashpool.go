// Package hashpool implements dupscan's concurrent hash worker pool: a
// bounded-parallel scheduler that hashes file groups and delivers ordered
// per-group results to the comparator/grouper, so that verdict emission is
// deterministic with respect to enqueue order regardless of completion
// order. Built on a bounded goroutine pool (github.com/panjf2000/ants/v2)
// with an admission-and-FIFO-drain scheduling design.
package hashpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mkessler/dupscan/internal/bufferpool"
	"github.com/mkessler/dupscan/internal/hash"
	"github.com/mkessler/dupscan/internal/pathutil"
	"github.com/mkessler/dupscan/internal/types"
)

// MaxThreads is the default worker cap.
const MaxThreads = 8

// pollInterval is the sleep between drain attempts in WaitForAsync. Workers
// send no completion notification; finished groups are found only by
// polling their done flags.
const pollInterval = 50 * time.Millisecond

// maxPoll is the period after which WaitForAsync resets its accumulated
// wait counter; WaitForAsync itself has no overall deadline.
const maxPoll = 1 * time.Second

// Job is one per-root hash unit within a Group.
type Job struct {
	Root int    // index into the root list this job belongs to
	Path string // full path hashed by this job

	done atomic.Bool
	Hash uint64
	Err  error // non-nil on open/read failure; Hash is 0 in that case
}

// Done reports whether this job has finished (successfully or not).
func (j *Job) Done() bool { return j.done.Load() }

// Group is the ordered tuple of hash jobs for a single RelativeFile.
// A group is ready exactly when every job is Done.
type Group struct {
	RelFile string
	Jobs    []*Job
}

func (g *Group) ready() bool {
	for _, j := range g.Jobs {
		if !j.Done() {
			return false
		}
	}
	return true
}

// Pool schedules hash jobs under a hard worker cap and a hard buffer cap,
// emitting each Group to onReady from the control thread, in enqueue order.
// A group is emitted at the next drain (each FindDupsAsync call and each
// WaitForAsync poll) after it and every group before it are done.
type Pool struct {
	maxThreads int
	bufs       *bufferpool.Pool
	workers    *ants.Pool
	onReady    func(*Group)
	sem        types.Semaphore

	mu   sync.Mutex
	fifo []*Group
}

// New creates a Pool with maxThreads workers (at least bufferpool.NumBuffers
// buffers are allocated, so the buffer pool never undershoots the worker
// count) and onReady invoked for each fully-resolved Group.
func New(maxThreads int, onReady func(*Group)) (*Pool, error) {
	if maxThreads <= 0 {
		maxThreads = MaxThreads
	}
	numBuffers := bufferpool.NumBuffers
	if numBuffers < maxThreads {
		numBuffers = maxThreads
	}

	workers, err := ants.NewPool(maxThreads, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}

	return &Pool{
		maxThreads: maxThreads,
		bufs:       bufferpool.New(numBuffers, bufferpool.BufferSize),
		workers:    workers,
		onReady:    onReady,
		sem:        types.NewSemaphore(maxThreads),
	}, nil
}

// Release stops the underlying worker pool. Call after WaitForAsync.
func (p *Pool) Release() { p.workers.Release() }

// FindDupsAsync admits one job per root for relFile, acquiring one
// concurrency permit per job so no more than maxThreads jobs are ever
// in flight, then returns immediately - the group is enqueued and hashing
// proceeds in the background.
func (p *Pool) FindDupsAsync(roots []string, relFile string) {
	p.drain()

	group := &Group{RelFile: relFile, Jobs: make([]*Job, len(roots))}
	for i, root := range roots {
		job := &Job{Root: i, Path: pathutil.Join(root, relFile)}
		group.Jobs[i] = job
		p.sem.Acquire()
		j := job
		_ = p.workers.Submit(func() { p.runJob(j) })
	}

	p.mu.Lock()
	p.fifo = append(p.fifo, group)
	p.mu.Unlock()
}

func (p *Pool) runJob(j *Job) {
	defer p.sem.Release()
	buf := p.bufs.Get()
	defer p.bufs.Put(buf)

	h, err := hash.Hash(j.Path, buf)
	if err != nil {
		j.Err = err
		j.Hash = 0
	} else {
		j.Hash = h
	}
	j.done.Store(true)
}

// drain walks the FIFO front-to-back, emitting (and removing) the leading
// run of fully-done groups in enqueue order, then stopping at the first
// still-running group - subsequent groups, even if complete, are left in
// place until it's their turn.
func (p *Pool) drain() {
	for {
		p.mu.Lock()
		if len(p.fifo) == 0 || !p.fifo[0].ready() {
			p.mu.Unlock()
			return
		}
		group := p.fifo[0]
		p.fifo = p.fifo[1:]
		p.mu.Unlock()

		p.onReady(group)
	}
}

// WaitForAsync blocks until every admitted job has been joined and every
// completed group has been emitted.
func (p *Pool) WaitForAsync() {
	waited := time.Duration(0)
	for {
		p.drain()
		p.mu.Lock()
		empty := len(p.fifo) == 0
		p.mu.Unlock()
		if empty {
			return
		}
		time.Sleep(pollInterval)
		waited += pollInterval
		if waited >= maxPoll {
			waited = 0
		}
	}
}
