package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/content"
	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// Conditions emits modifiers for active conditions and temporary effects.
// Condition definitions carry their own effect rows, including meta flags
// such as dexterity-loss.
type Conditions struct {
	library content.Library
}

// NewConditions creates the condition producer.
func NewConditions(library content.Library) *Conditions {
	return &Conditions{library: library}
}

// Name identifies this producer in diagnostics.
func (p *Conditions) Name() string { return "conditions" }

// Produce regenerates modifiers from the character's active conditions.
func (p *Conditions) Produce(ctx context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityDefinition}
	for _, cond := range ch.Conditions {
		def, err := p.library.Definition(ctx, cond.DefinitionID)
		if err != nil {
			if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
				continue
			}
			return Set{}, fmt.Errorf("load condition definition %s: %w", cond.DefinitionID, err)
		}
		if def.Kind != content.KindCondition {
			continue
		}
		set.Modifiers = append(set.Modifiers, fromDefinition(ch, modifier.SourceCondition, def)...)
	}
	return set, nil
}

var _ Producer = (*Conditions)(nil)
