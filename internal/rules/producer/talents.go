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

// Talents emits modifiers for every taken talent or feat.
type Talents struct {
	library content.Library
}

// NewTalents creates the talent producer.
func NewTalents(library content.Library) *Talents {
	return &Talents{library: library}
}

// Name identifies this producer in diagnostics.
func (p *Talents) Name() string { return "talents" }

// Produce regenerates modifiers from the character's talent list.
func (p *Talents) Produce(ctx context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityDefinition}
	for _, talent := range ch.Talents {
		def, err := p.library.Definition(ctx, talent.DefinitionID)
		if err != nil {
			if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
				continue
			}
			return Set{}, fmt.Errorf("load talent definition %s: %w", talent.DefinitionID, err)
		}
		if def.Kind != content.KindTalent {
			continue
		}
		set.Modifiers = append(set.Modifiers, fromDefinition(ch, modifier.SourceTalent, def)...)
	}
	return set, nil
}

var _ Producer = (*Talents)(nil)
