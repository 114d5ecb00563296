// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"monfily_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus re-exports the platform bus constructor.
var NewInMemoryBus = events.NewInMemoryBus

// =============================================================================
// Intake Domain Events
// =============================================================================

// LeadReceived is published after a lead submission passed validation and
// both notification emails were dispatched.
type LeadReceived struct {
	BaseEvent
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Company  string   `json:"company"`
	Country  string   `json:"country"`
	Language string   `json:"language"`
	Services []string `json:"services"`
	Budget   string   `json:"budget"`
}

func (e LeadReceived) EventName() string { return "intake.lead.received" }
