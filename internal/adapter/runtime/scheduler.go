package runtime

import (
	"container/heap"
	"sort"
	"time"

	"outpost/internal/app/ports"
)

// Scheduler is a virtual-time timer queue. It is not safe for concurrent
// use; Loop serializes access to it.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	next  ports.TimerID
	queue timerQueue
	live  map[ports.TimerID]*timer
}

type timer struct {
	id     ports.TimerID
	key    ports.TimerKey
	due    time.Duration
	repeat time.Duration
	seq    uint64
	fn     func(time.Duration)
	index  int
}

func NewScheduler() *Scheduler {
	return &Scheduler{live: make(map[ports.TimerID]*timer)}
}

func (s *Scheduler) SetInterval(key ports.TimerKey, first, repeat time.Duration, fn func(time.Duration)) ports.TimerID {
	if repeat < 0 {
		repeat = 0
	}
	return s.add(key, first, repeat, fn)
}

func (s *Scheduler) SetTimeout(key ports.TimerKey, delay time.Duration, fn func(time.Duration)) ports.TimerID {
	return s.add(key, delay, 0, fn)
}

func (s *Scheduler) CancelTimer(id ports.TimerID) {
	t, ok := s.live[id]
	if !ok {
		return
	}
	delete(s.live, id)
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
}

// Now is the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration { return s.now }

func (s *Scheduler) Pending() int { return len(s.live) }

// Keys lists what the live timers drive, soonest first.
func (s *Scheduler) Keys() []ports.TimerKey {
	sorted := make(timerQueue, len(s.queue))
	copy(sorted, s.queue)
	sort.Slice(sorted, sorted.Less)
	out := make([]ports.TimerKey, 0, len(sorted))
	for _, t := range sorted {
		out = append(out, t.key)
	}
	return out
}

// Advance moves virtual time forward by d, firing every timer that falls due
// in order. It returns the number of callbacks run.
func (s *Scheduler) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := s.now + d
	fired := 0
	for len(s.queue) > 0 && s.queue[0].due <= target {
		t := heap.Pop(&s.queue).(*timer)
		s.now = t.due
		if t.repeat > 0 {
			t.due += t.repeat
			s.seq++
			t.seq = s.seq
			heap.Push(&s.queue, t)
		} else {
			delete(s.live, t.id)
		}
		t.fn(0)
		fired++
	}
	s.now = target
	return fired
}

func (s *Scheduler) add(key ports.TimerKey, delay, repeat time.Duration, fn func(time.Duration)) ports.TimerID {
	if delay < 0 {
		delay = 0
	}
	s.next++
	s.seq++
	t := &timer{
		id:     s.next,
		key:    key,
		due:    s.now + delay,
		repeat: repeat,
		seq:    s.seq,
		fn:     fn,
	}
	s.live[t.id] = t
	heap.Push(&s.queue, t)
	return t.id
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

var _ ports.Scheduler = (*Scheduler)(nil)
