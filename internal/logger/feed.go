package logger

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

type Event struct {
	Time  string         `json:"time"`
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// feed keeps the newest events in a fixed ring and pushes each one, encoded
// as a JSON line, to live subscribers. Slow subscribers miss lines.
type feed struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	full  bool
	subs  map[int]chan []byte
	seq   int
	drops atomic.Int64
}

func newFeed(size int) *feed {
	return &feed{buf: make([]Event, max(size, 1)), subs: map[int]chan []byte{}}
}

func (f *feed) push(evt Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf[f.next] = evt
	f.next = (f.next + 1) % len(f.buf)
	if f.next == 0 {
		f.full = true
	}
	if len(f.subs) == 0 {
		return
	}
	line, err := json.Marshal(evt)
	if err != nil {
		return
	}
	line = append(line, '\n')
	for _, ch := range f.subs {
		select {
		case ch <- line:
		default:
			f.drops.Add(1)
		}
	}
}

func (f *feed) tail(limit int) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ordered []Event
	if f.full {
		ordered = append(ordered, f.buf[f.next:]...)
	}
	ordered = append(ordered, f.buf[:f.next]...)
	if limit > 0 && limit < len(ordered) {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

func (f *feed) subscribe(size int) (<-chan []byte, func()) {
	ch := make(chan []byte, max(size, 1))
	f.mu.Lock()
	id := f.seq
	f.seq++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}

var events = newFeed(2000)

// Recent returns up to limit of the newest log events, oldest first. A
// non-positive limit returns everything retained.
func Recent(limit int) []Event {
	return events.tail(limit)
}

// Subscribe streams every log event as a JSON line until cancel is called.
func Subscribe() (<-chan []byte, func()) {
	return events.subscribe(256)
}

// Dropped counts lines a subscriber was too slow to receive.
func Dropped() int64 {
	return events.drops.Load()
}
