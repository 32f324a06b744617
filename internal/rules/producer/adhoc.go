package producer

import (
	"context"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// AdHoc passes through direct GM and user edits recorded on the character
// document. Records are not validated here: reconciliation drops and reports
// malformed ones so a single bad edit never breaks resolution.
type AdHoc struct{}

// NewAdHoc creates the ad-hoc producer.
func NewAdHoc() *AdHoc {
	return &AdHoc{}
}

// Name identifies this producer in diagnostics.
func (p *AdHoc) Name() string { return "ad-hoc" }

// Produce returns the character's raw ad-hoc records.
func (p *AdHoc) Produce(_ context.Context, ch *character.Character) (Set, error) {
	set := Set{Producer: p.Name(), Authority: AuthorityAdHoc}
	if len(ch.AdHoc) > 0 {
		set.Modifiers = append([]modifier.Modifier(nil), ch.AdHoc...)
	}
	return set, nil
}

var _ Producer = (*AdHoc)(nil)
