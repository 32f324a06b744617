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

// InstalledSystems emits modifiers for droid and vehicle system slots.
type InstalledSystems struct {
	library content.Library
}

// NewInstalledSystems creates the installed-systems producer.
func NewInstalledSystems(library content.Library) *InstalledSystems {
	return &InstalledSystems{library: library}
}

// Name identifies this producer in diagnostics.
func (p *InstalledSystems) Name() string { return "installed-systems" }

// Produce regenerates modifiers from the character's installed systems. The
// modifier source tracks whether the slot holds a droid or vehicle system.
func (p *InstalledSystems) Produce(ctx context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityDefinition}
	for _, sys := range ch.Systems {
		def, err := p.library.Definition(ctx, sys.DefinitionID)
		if err != nil {
			if errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
				continue
			}
			return Set{}, fmt.Errorf("load system definition %s: %w", sys.DefinitionID, err)
		}
		var source modifier.Source
		switch def.Kind {
		case content.KindDroidSystem:
			source = modifier.SourceDroidSystem
		case content.KindVehicleSystem:
			source = modifier.SourceVehicleSystem
		default:
			continue
		}
		set.Modifiers = append(set.Modifiers, fromDefinition(ch, source, def)...)
	}
	return set, nil
}

var _ Producer = (*InstalledSystems)(nil)
