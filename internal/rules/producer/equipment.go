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

// Equipment emits modifiers for every equipped item's definition effects.
type Equipment struct {
	library content.Library
}

// NewEquipment creates the equipment producer.
func NewEquipment(library content.Library) *Equipment {
	return &Equipment{library: library}
}

// Name identifies this producer in diagnostics.
func (p *Equipment) Name() string { return "equipment" }

// Produce regenerates modifiers from the character's equipped items. Items
// whose definition is missing are skipped; any other library failure aborts
// the call so resolution never runs on a partial set.
func (p *Equipment) Produce(ctx context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityDefinition}
	for _, item := range ch.Equipment {
		def, err := p.library.Definition(ctx, item.DefinitionID)
		if err != nil {
			if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
				continue
			}
			return Set{}, fmt.Errorf("load equipment definition %s: %w", item.DefinitionID, err)
		}
		if def.Kind != content.KindEquipment {
			continue
		}
		set.Modifiers = append(set.Modifiers, fromDefinition(ch, modifier.SourceEquipment, def)...)
	}
	return set, nil
}

var _ Producer = (*Equipment)(nil)
