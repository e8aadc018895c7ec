package host

import (
	"errors"
	"testing"
)

func TestPendingFirstWins(t *testing.T) {
	p := NewPendingError()
	first := errors.New("first")
	p.Set(first)
	p.Set(errors.New("second"))

	if got := p.Pending(); got != first {
		t.Errorf("Pending = %v, want first", got)
	}
	if got := p.Consume(); got != first {
		t.Errorf("Consume = %v, want first", got)
	}
	if p.Pending() != nil {
		t.Error("Consume did not clear")
	}
}

func TestPendingSetNil(t *testing.T) {
	p := NewPendingError()
	p.Set(nil)
	if p.Pending() != nil {
		t.Error("nil Set should be ignored")
	}
}

func TestPendingPushPop(t *testing.T) {
	t.Run("restores saved error", func(t *testing.T) {
		p := NewPendingError()
		outer := errors.New("outer")
		p.Set(outer)
		p.Push()
		if p.Pending() != nil {
			t.Fatal("Push did not clear")
		}
		p.PopUnlessNew()
		if got := p.Pending(); got != outer {
			t.Errorf("Pending = %v, want outer", got)
		}
	})

	t.Run("fresh error wins over saved", func(t *testing.T) {
		p := NewPendingError()
		outer := errors.New("outer")
		inner := errors.New("inner")
		p.Set(outer)
		p.Push()
		p.Set(inner)
		p.PopUnlessNew()
		if got := p.Pending(); got != inner {
			t.Errorf("Pending = %v, want inner", got)
		}
	})

	t.Run("pop without push", func(t *testing.T) {
		p := NewPendingError()
		p.PopUnlessNew()
		if p.Pending() != nil {
			t.Error("unbalanced pop should be a no-op")
		}
	})

	t.Run("nested", func(t *testing.T) {
		p := NewPendingError()
		a := errors.New("a")
		p.Set(a)
		p.Push()
		p.Push()
		p.PopUnlessNew()
		p.PopUnlessNew()
		if got := p.Pending(); got != a {
			t.Errorf("Pending = %v, want a", got)
		}
	})
}
