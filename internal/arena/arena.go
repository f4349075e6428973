// Package arena holds the shared mutual-exclusion resources and the
// condition signals bound to them. It is the only shared mutable state the
// scripted actors are allowed to touch.
package arena

import (
	"fmt"

	"stagecraft/internal/core"
)

// Holder identifies a participant that can own resources and be suspended
// on them. actor.Handle implements it; the director participates through a
// Steward.
type Holder interface {
	Name() string
	SetState(core.State)
	// Interrupted is closed when the holder is interrupted. A nil channel
	// means the holder cannot be interrupted.
	Interrupted() <-chan struct{}
}

// Arena is a fixed set of named resources and signals. Registration happens
// up front, before any actor starts; lookups after that are read-only.
type Arena struct {
	resources map[string]*Resource
	signals   map[string]*Signal
}

func New() *Arena {
	return &Arena{
		resources: make(map[string]*Resource),
		signals:   make(map[string]*Signal),
	}
}

// AddResource registers a named resource. Duplicate names are an error.
func (a *Arena) AddResource(name string) (*Resource, error) {
	if _, exists := a.resources[name]; exists {
		return nil, fmt.Errorf("resource %q already registered", name)
	}
	r := &Resource{name: name}
	a.resources[name] = r
	return r, nil
}

// AddSignal registers a condition signal bound to a registered resource.
func (a *Arena) AddSignal(name, resource string) (*Signal, error) {
	if _, exists := a.signals[name]; exists {
		return nil, fmt.Errorf("signal %q already registered", name)
	}
	r, ok := a.resources[resource]
	if !ok {
		return nil, fmt.Errorf("signal %q: unknown resource %q", name, resource)
	}
	s := &Signal{name: name, res: r}
	a.signals[name] = s
	return s, nil
}

// Resource returns a registered resource or nil.
func (a *Arena) Resource(name string) *Resource {
	return a.resources[name]
}

// Signal returns a registered signal or nil.
func (a *Arena) Signal(name string) *Signal {
	return a.signals[name]
}

// Steward is a Holder for the director itself: it owns resources to force
// contention but has no lifecycle state of its own and cannot be
// interrupted.
type Steward struct {
	name string
}

func NewSteward(name string) *Steward {
	return &Steward{name: name}
}

func (s *Steward) Name() string                 { return s.name }
func (s *Steward) SetState(core.State)          {}
func (s *Steward) Interrupted() <-chan struct{} { return nil }
