package surface

import "time"

// Scheduler implements the frame-request and resize-listener half of Host.
// Backends embed it and call Pump once per display refresh from the thread
// that owns the drawing context.
type Scheduler struct {
	nextID  FrameID
	pending map[FrameID]func(time.Duration)
	order   []FrameID

	nextListener int
	listeners    map[int]func()
}

// RequestFrame schedules fn for the next Pump.
func (s *Scheduler) RequestFrame(fn func(t time.Duration)) FrameID {
	if s.pending == nil {
		s.pending = make(map[FrameID]func(time.Duration))
	}
	s.nextID++
	id := s.nextID
	s.pending[id] = fn
	s.order = append(s.order, id)
	return id
}

// CancelFrame drops a pending request.
func (s *Scheduler) CancelFrame(id FrameID) {
	delete(s.pending, id)
}

// Pending returns the number of frame requests waiting for the next Pump.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Pump runs every request pending at call time, in request order.
// Requests made by the callbacks themselves wait for the next Pump.
func (s *Scheduler) Pump(t time.Duration) int {
	if len(s.order) == 0 {
		return 0
	}
	batch := s.order
	s.order = nil

	ran := 0
	for _, id := range batch {
		fn, ok := s.pending[id]
		if !ok {
			continue
		}
		delete(s.pending, id)
		fn(t)
		ran++
	}
	return ran
}

// OnResize registers a resize listener.
func (s *Scheduler) OnResize(fn func()) (remove func()) {
	if s.listeners == nil {
		s.listeners = make(map[int]func())
	}
	s.nextListener++
	key := s.nextListener
	s.listeners[key] = fn
	return func() { delete(s.listeners, key) }
}

// Listeners returns the number of registered resize listeners.
func (s *Scheduler) Listeners() int {
	return len(s.listeners)
}

// NotifyResize invokes every registered resize listener.
func (s *Scheduler) NotifyResize() {
	for _, fn := range s.listeners {
		fn()
	}
}
