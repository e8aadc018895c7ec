package host

import "sync"

// PendingError is the process-wide error channel kernel failures are
// reported through. Generated wrappers never return errors directly;
// they set the pending error and the caller inspects it after the call.
type PendingError struct {
	mu    sync.Mutex
	cur   error
	saved []error
}

// NewPendingError creates an empty channel.
func NewPendingError() *PendingError {
	return &PendingError{}
}

// Set records err as the pending error. A nil err is ignored. An
// already-pending error is kept; the first failure wins.
func (p *PendingError) Set(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		p.cur = err
	}
}

// Pending returns the pending error without clearing it.
func (p *PendingError) Pending() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

// Consume returns and clears the pending error.
func (p *PendingError) Consume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.cur
	p.cur = nil
	return err
}

// Push saves the current pending state and clears it, so a nested call
// starts with a clean indicator.
func (p *PendingError) Push() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, p.cur)
	p.cur = nil
}

// PopUnlessNew restores the state saved by the matching Push unless a
// new error was set in between; a fresh error always wins over the
// saved one.
func (p *PendingError) PopUnlessNew() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saved) == 0 {
		return
	}
	prev := p.saved[len(p.saved)-1]
	p.saved = p.saved[:len(p.saved)-1]
	if p.cur == nil {
		p.cur = prev
	}
}
