// Package content models the definition library: equipment, talents, species,
// conditions, and installed-system templates. Definitions are opaque
// effect-producing records; producers translate their effect rows into
// modifier candidates.
package content

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// Kind classifies a definition.
type Kind string

const (
	KindEquipment     Kind = "equipment"
	KindTalent        Kind = "talent"
	KindSpecies       Kind = "species"
	KindCondition     Kind = "condition"
	KindDroidSystem   Kind = "droid-system"
	KindVehicleSystem Kind = "vehicle-system"
)

// Kinds lists every legal definition kind.
var Kinds = []Kind{
	KindEquipment,
	KindTalent,
	KindSpecies,
	KindCondition,
	KindDroidSystem,
	KindVehicleSystem,
}

// ValidKind reports whether kind is a member of the closed set.
func ValidKind(kind Kind) bool {
	for _, known := range Kinds {
		if kind == known {
			return true
		}
	}
	return false
}

// Effect is one modifier-producing row on a definition. Condition names a
// character flag that must be set for the effect to apply; producers evaluate
// it, the engine never does.
type Effect struct {
	Target    string
	Type      modifier.Type
	Value     float64
	Condition string
	Priority  *int
}

// Definition is one library record.
type Definition struct {
	ID      string
	Kind    Kind
	Name    string
	Weight  float64
	Effects []Effect
}

// Validate checks a definition before it enters the library.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
		return apperrors.New(apperrors.CodeContentUnknownKind, "definition id and name are required")
	}
	if !ValidKind(d.Kind) {
		return apperrors.WithMetadata(
			apperrors.CodeContentUnknownKind,
			fmt.Sprintf("unknown content kind: %s", d.Kind),
			map[string]string{"Kind": string(d.Kind)},
		)
	}
	for _, effect := range d.Effects {
		if !modifier.ValidTarget(effect.Target) {
			return apperrors.WithMetadata(
				apperrors.CodeContentInvalidEffect,
				fmt.Sprintf("definition %s has effect with unknown target %s", d.ID, effect.Target),
				map[string]string{"Target": effect.Target},
			)
		}
	}
	return nil
}

// Library is the read surface producers depend on.
type Library interface {
	// Definition loads one record by ID. Missing records return a NOT_FOUND
	// domain error.
	Definition(ctx context.Context, id string) (Definition, error)
	// ByKind lists every record of one kind, ordered by name.
	ByKind(ctx context.Context, kind Kind) ([]Definition, error)
}
