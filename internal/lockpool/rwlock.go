// Package lockpool provides the reader/writer lock primitive and the
// per-URI registry that hands out stable lock instances on demand.
package lockpool

import "sync"

// Priority selects which side of a contended RWLock is favored for
// admission. The lock itself always enforces mutual exclusion between
// writers and between a writer and any reader; Priority only changes which
// side waits when both are present.
type Priority int

const (
	// ReadersPreferred admits a reader whenever no writer currently holds
	// the lock, regardless of how many writers are waiting.
	ReadersPreferred Priority = iota
	// WritersPreferred makes a reader wait whenever any writer is waiting,
	// even if no writer is currently active.
	WritersPreferred
	// NWay caps the number of consecutive reader admissions allowed while a
	// writer is waiting: with N=1, once one reader has been admitted since
	// the last writer, a waiting writer goes next. Writers are not capped:
	// whenever the lock is free, any waiting writer may be admitted ahead of
	// waiting readers, so strict reader/writer alternation is not guaranteed
	// when several writers queue.
	NWay
)

// RWLock is a reader/writer lock with a configurable admission policy. The
// zero value is a ReadersPreferred lock; construct one with New to choose
// another policy.
//
// Admission is implemented with a "wait on a channel, close it to broadcast"
// idiom: a goroutine that cannot yet be admitted fetches the current wait
// handle, releases the state mutex, and blocks on the handle being closed
// before re-checking admission. The handle is created lazily and discarded
// once fired, so there is never a stale closed channel lying around for a
// future waiter to read from by mistake.
type RWLock struct {
	policy Priority
	n      int

	mu             sync.Mutex // guards the fields below
	activeReaders  int
	writerActive   bool
	writersWaiting int
	consecReaders  int
	waitHandle     chan struct{}
}

// New constructs an RWLock under the given policy. n is only meaningful for
// NWay; a non-positive n is treated as 1.
func New(policy Priority, n int) *RWLock {
	if policy == NWay && n <= 0 {
		n = 1
	}
	return &RWLock{
		policy: policy,
		n:      n,
	}
}

// readerAdmissible reports whether a new reader may enter given the current
// state, under l's policy. Caller must hold l's internal mutex.
func (l *RWLock) readerAdmissible() bool {
	if l.writerActive {
		return false
	}
	switch l.policy {
	case ReadersPreferred:
		return true
	case WritersPreferred:
		return l.writersWaiting == 0
	default: // NWay
		return !(l.writersWaiting > 0 && l.consecReaders >= l.n)
	}
}

// waitHandleLocked returns the current broadcast handle, creating one if
// none exists. Caller must hold l's internal mutex.
func (l *RWLock) waitHandleLocked() chan struct{} {
	if l.waitHandle == nil {
		l.waitHandle = make(chan struct{})
	}
	return l.waitHandle
}

// broadcastLocked wakes every goroutine parked on the current wait handle
// and clears it so the next waiter allocates a fresh one. Caller must hold
// l's internal mutex.
func (l *RWLock) broadcastLocked() {
	if l.waitHandle != nil {
		close(l.waitHandle)
		l.waitHandle = nil
	}
}

// ReaderLock blocks until a read admission is granted.
func (l *RWLock) ReaderLock() {
	for {
		l.mu.Lock()
		if l.readerAdmissible() {
			l.activeReaders++
			l.consecReaders++
			l.mu.Unlock()
			return
		}
		wait := l.waitHandleLocked()
		l.mu.Unlock()
		<-wait
	}
}

// ReaderUnlock releases a previously acquired read admission.
func (l *RWLock) ReaderUnlock() {
	l.mu.Lock()
	l.activeReaders--
	if l.activeReaders == 0 {
		l.broadcastLocked()
	}
	l.mu.Unlock()
}

// WriterLock blocks until exclusive write admission is granted.
func (l *RWLock) WriterLock() {
	l.mu.Lock()
	l.writersWaiting++
	for l.writerActive || l.activeReaders > 0 {
		wait := l.waitHandleLocked()
		l.mu.Unlock()
		<-wait
		l.mu.Lock()
	}
	l.writersWaiting--
	l.writerActive = true
	l.mu.Unlock()
}

// WriterUnlock releases a previously acquired write admission and resets the
// consecutive-reader counter, per the N-way policy's "resets on writer
// completion" rule.
func (l *RWLock) WriterUnlock() {
	l.mu.Lock()
	l.writerActive = false
	l.consecReaders = 0
	l.broadcastLocked()
	l.mu.Unlock()
}
