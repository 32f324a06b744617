package producer

import (
	"context"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// Encumbrance emits speed penalties derived from the character's load state.
// The categorical check penalty for encumbrance is applied by the
// orchestrator, not here; this producer covers the movement-facing effects.
type Encumbrance struct{}

// NewEncumbrance creates the encumbrance producer.
func NewEncumbrance() *Encumbrance {
	return &Encumbrance{}
}

// Name identifies this producer in diagnostics.
func (p *Encumbrance) Name() string { return "encumbrance" }

// Produce emits a speed penalty when the character carries a heavy or
// overloaded load.
func (p *Encumbrance) Produce(_ context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityDerived}

	var value float64
	var label string
	switch ch.CurrentLoad() {
	case character.LoadHeavy:
		value, label = -2, "Heavy Load"
	case character.LoadOverloaded:
		value, label = -4, "Overloaded"
	default:
		return set, nil
	}

	m, err := modifier.New(modifier.Input{
		Source:     modifier.SourceEncumbrance,
		SourceID:   "load",
		SourceName: label,
		Target:     "speed.base",
		Type:       modifier.TypePenalty,
		Value:      value,
	})
	if err != nil {
		return Set{}, err
	}
	set.Modifiers = []modifier.Modifier{m}
	return set, nil
}

var _ Producer = (*Encumbrance)(nil)
