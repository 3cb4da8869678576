package identity

import (
	"context"
	"sync"
)

// MemoryProvider is an in-process Provider. Tests and the interactive shell
// drive it by calling Init, SignIn, SignOut, Fail and Dismiss, which emit the
// matching events.
//
// Events are buffered; emitting blocks once the buffer is full and nobody
// drains Events.
type MemoryProvider struct {
	name   string
	ready  chan struct{}
	events chan Event
	once   sync.Once

	mu          sync.Mutex
	user        *Identity
	pendingUser *Identity
	opened      int

	// emitMu orders sends and guards closed; it is never held with mu.
	emitMu sync.Mutex
	closed bool
}

// NewMemoryProvider creates a provider that reports name and buffers up to
// buffer events.
func NewMemoryProvider(name string, buffer int) *MemoryProvider {
	if buffer < 1 {
		buffer = 16
	}
	return &MemoryProvider{
		name:   name,
		ready:  make(chan struct{}),
		events: make(chan Event, buffer),
	}
}

func (p *MemoryProvider) Name() string           { return p.name }
func (p *MemoryProvider) Ready() <-chan struct{} { return p.ready }
func (p *MemoryProvider) Events() <-chan Event   { return p.events }

// Init completes the readiness handshake and emits EventInit.
// Calling it again only re-emits the event.
func (p *MemoryProvider) Init() {
	p.once.Do(func() { close(p.ready) })

	p.mu.Lock()
	var u *Identity
	if p.user != nil {
		cp := *p.user
		u = &cp
	}
	p.mu.Unlock()

	p.emit(Event{Kind: EventInit, Identity: u})
}

// OnOpen makes the next Open sign id in, simulating a user who completes the
// provider's login form.
func (p *MemoryProvider) OnOpen(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingUser = &id
}

// Open records the request. With a user queued by OnOpen it signs that user in.
func (p *MemoryProvider) Open(ctx context.Context) error {
	if !IsReady(p) {
		return ErrNotReady
	}

	if p.isClosed() {
		return ErrClosed
	}

	p.mu.Lock()
	p.opened++
	next := p.pendingUser
	p.pendingUser = nil
	p.mu.Unlock()

	if next != nil {
		p.SignIn(*next)
	}
	return nil
}

// Opened reports how many times Open succeeded.
func (p *MemoryProvider) Opened() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened
}

// Logout signs the current user out and emits EventLogout.
func (p *MemoryProvider) Logout(ctx context.Context) error {
	p.SignOut()
	return nil
}

func (p *MemoryProvider) CurrentUser() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return Identity{}, false
	}
	return *p.user, true
}

// SignIn makes id the current user and emits EventLogin.
func (p *MemoryProvider) SignIn(id Identity) {
	if id.Provider == "" {
		id.Provider = p.name
	}
	p.mu.Lock()
	cp := id
	p.user = &cp
	p.mu.Unlock()

	p.emit(Event{Kind: EventLogin, Identity: &id})
}

// SetUser replaces the current user without emitting an event, which is how
// a provider looks after the user switched accounts in another window.
func (p *MemoryProvider) SetUser(id *Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id == nil {
		p.user = nil
		return
	}
	cp := *id
	p.user = &cp
}

// SignOut clears the current user and emits EventLogout.
func (p *MemoryProvider) SignOut() {
	p.mu.Lock()
	p.user = nil
	p.mu.Unlock()

	p.emit(Event{Kind: EventLogout})
}

// Fail emits EventError.
func (p *MemoryProvider) Fail(err error) {
	p.emit(Event{Kind: EventError, Err: err})
}

// Dismiss emits EventClose, as when the user closes the login UI.
func (p *MemoryProvider) Dismiss() {
	p.emit(Event{Kind: EventClose})
}

// Close stops the provider and closes the event stream.
func (p *MemoryProvider) Close() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.events)
}

func (p *MemoryProvider) isClosed() bool {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	return p.closed
}

func (p *MemoryProvider) emit(evt Event) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if p.closed {
		return
	}
	p.events <- evt
}
