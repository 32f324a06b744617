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

// Species emits the character's species trait modifiers.
type Species struct {
	library content.Library
}

// NewSpecies creates the species producer.
func NewSpecies(library content.Library) *Species {
	return &Species{library: library}
}

// Name identifies this producer in diagnostics.
func (p *Species) Name() string { return "species" }

// Produce regenerates modifiers from the species definition, if any.
func (p *Species) Produce(ctx context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityDefinition}
	if ch.SpeciesID == "" {
		return set, nil
	}
	def, err := p.library.Definition(ctx, ch.SpeciesID)
	if err != nil {
		if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
			return set, nil
		}
		return Set{}, fmt.Errorf("load species definition %s: %w", ch.SpeciesID, err)
	}
	if def.Kind != content.KindSpecies {
		return set, nil
	}
	set.Modifiers = fromDefinition(ch, modifier.SourceSpecies, def)
	return set, nil
}

var _ Producer = (*Species)(nil)
