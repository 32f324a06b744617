// Package telemetry records diagnostics events raised during modifier
// resolution: dropped records, authority conflicts, and failed resolutions.
// These are operational facts for audits, not log lines.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names the diagnostics event category.
type Kind string

const (
	KindModifierDropped   Kind = "modifier_dropped"
	KindAuthorityConflict Kind = "authority_conflict"
	KindResolutionFailed  Kind = "resolution_failed"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is one recorded diagnostics fact.
type Event struct {
	ID          string
	Timestamp   time.Time
	Kind        Kind
	Severity    Severity
	CharacterID string
	Target      string
	ModifierID  string
	Producer    string
	Message     string
	Attributes  map[string]any
}

// Store persists diagnostics events for audits and incident analysis.
type Store interface {
	AppendEvent(ctx context.Context, evt Event) error
}

// Emitter records diagnostics events.
type Emitter struct {
	store Store
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a diagnostics event. It is a no-op when the emitter or its
// store is nil, so resolution paths never need to guard the call.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if evt.Severity == "" {
		evt.Severity = SeverityInfo
	}
	return e.store.AppendEvent(ctx, evt)
}
