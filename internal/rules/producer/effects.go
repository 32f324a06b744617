package producer

import (
	"fmt"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/content"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// fromDefinition translates a definition's effect rows into modifier
// candidates. Effects gated on an unmet character flag are emitted disabled
// so the audit trail still shows them; effect rows that cannot construct a
// valid modifier are skipped (the library validates definitions at write
// time, so this only guards drifted content).
func fromDefinition(ch *character.Character, source modifier.Source, def content.Definition) []modifier.Modifier {
	mods := make([]modifier.Modifier, 0, len(def.Effects))
	for i, effect := range def.Effects {
		enabled := effect.Condition == "" || ch.Flag(effect.Condition)
		in := modifier.Input{
			// One definition may aim several effects at one target; the
			// row index keeps their IDs distinct.
			ID:         fmt.Sprintf("%s:%s:%s:%d", source, def.ID, effect.Target, i),
			Source:     source,
			SourceID:   def.ID,
			SourceName: def.Name,
			Target:     effect.Target,
			Type:       effect.Type,
			Value:      effect.Value,
			Enabled:    &enabled,
			Priority:   effect.Priority,
		}
		if effect.Condition != "" {
			in.Conditions = []string{effect.Condition}
		}
		m, err := modifier.New(in)
		if err != nil {
			continue
		}
		mods = append(mods, m)
	}
	return mods
}
