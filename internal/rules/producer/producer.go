// Package producer defines the capability every content subsystem implements
// to feed the stacking engine: regenerate a fresh list of modifier candidates
// from the character snapshot on every call. New content kinds plug in as new
// producers; the engine itself never changes.
package producer

import (
	"context"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// Authority ranks a producer's claim when independent subsystems disagree
// about the same governing value. Higher wins outright.
type Authority int

const (
	// AuthorityDisplay is a display-only override, lowest rank.
	AuthorityDisplay Authority = iota
	// AuthorityAdHoc covers direct GM or user edits.
	AuthorityAdHoc
	// AuthorityEngine covers modifier-engine aggregation results.
	AuthorityEngine
	// AuthorityDerived covers derived-recalculation enforcement.
	AuthorityDerived
	// AuthorityDefinition covers system and equipment templates, highest rank.
	AuthorityDefinition
)

// Set is the output of one producer for one resolution call.
type Set struct {
	// Producer is the emitting subsystem's name, used in diagnostics.
	Producer string
	// Authority ranks this producer in cross-source conflicts.
	Authority Authority
	// Modifiers are the candidate records. They may include disabled entries
	// (retained for audit) and, for unvalidated producers, malformed ones.
	Modifiers []modifier.Modifier
}

// Producer regenerates modifier candidates from authoritative state. The
// engine never caches a producer's output across calls.
type Producer interface {
	Name() string
	Produce(ctx context.Context, ch *character.Character) (Set, error)
}
