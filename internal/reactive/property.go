package reactive

import "sync"

// Property is an observable value owned by a Loop. Writes and notifications happen on the loop
// goroutine; Get may be called from anywhere.
type Property[T any] struct {
	loop *Loop

	mu    sync.RWMutex
	value T

	nextID      int
	subscribers map[int]func(T)
	order       []int
}

// NewProperty creates a property holding initial.
func NewProperty[T any](loop *Loop, initial T) *Property[T] {
	return &Property[T]{loop: loop, value: initial, subscribers: make(map[int]func(T))}
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set marshals the write onto the loop.
func (p *Property[T]) Set(v T) {
	p.loop.Post(func() { p.SetNow(v) })
}

// SetNow stores v and notifies subscribers in subscription order. Loop goroutine only.
func (p *Property[T]) SetNow(v T) {
	p.mu.Lock()
	p.value = v
	p.mu.Unlock()

	for _, id := range append([]int(nil), p.order...) {
		if fn, ok := p.subscribers[id]; ok {
			fn(v)
		}
	}
}

// Subscribe registers fn for every later write and returns a func that removes it.
// Subscriptions are managed on the loop goroutine; Subscribe waits for registration when called
// from elsewhere.
func (p *Property[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	var id int
	p.loop.Do(func() { id = p.add(fn) })
	return func() { p.loop.Post(func() { p.remove(id) }) }
}

// SubscribeNow is Subscribe for callers already on the loop goroutine.
func (p *Property[T]) SubscribeNow(fn func(T)) (unsubscribe func()) {
	id := p.add(fn)
	return func() { p.remove(id) }
}

func (p *Property[T]) add(fn func(T)) int {
	p.nextID++
	p.subscribers[p.nextID] = fn
	p.order = append(p.order, p.nextID)
	return p.nextID
}

func (p *Property[T]) remove(id int) {
	delete(p.subscribers, id)
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}
