// Package resolve computes per-target stacking totals and auditable
// breakdowns from a set of modifier records.
package resolve

import (
	"fmt"
	"sort"

	"github.com/sagaforge/engine/internal/rules/modifier"
)

// Applied is one record considered for a target, flagged with whether it
// contributed to the total. Suppressed records stay in the output so a UI can
// explain why a modifier did not apply.
type Applied struct {
	Modifier     modifier.Modifier
	Contributing bool
	// SuppressedBy names the winning source when a stacking rule excluded
	// this record.
	SuppressedBy string
}

// TypeBreakdown is the per-type subtotal of contributing records.
type TypeBreakdown struct {
	Type        modifier.Type
	Value       float64
	Count       int
	Description string
}

// Breakdown is the resolved read model for one target. It is computed fresh
// on every call and never cached.
type Breakdown struct {
	Target  string
	Total   float64
	Applied []Applied
	ByType  []TypeBreakdown
	// Meta lists meta-category flags raised for this target (for example
	// dexterity-loss). Meta types never join the numeric total.
	Meta []modifier.Type
}

// HasMeta reports whether the given meta flag was raised.
func (b Breakdown) HasMeta(t modifier.Type) bool {
	for _, flag := range b.Meta {
		if flag == t {
			return true
		}
	}
	return false
}

// Resolve aggregates every enabled modifier aimed at target, applying the
// per-type stacking law. Output ordering is deterministic: identical input
// yields identical output.
func Resolve(mods []modifier.Modifier, target string) Breakdown {
	out := Breakdown{Target: target}

	groups := map[modifier.Type][]modifier.Modifier{}
	for _, m := range mods {
		if !m.Enabled || m.Target != target {
			continue
		}
		groups[m.Type] = append(groups[m.Type], m)
	}
	if len(groups) == 0 {
		return out
	}

	types := make([]modifier.Type, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		group := groups[t]
		sortForDisplay(group)

		switch modifier.StackingRule(t) {
		case modifier.RuleMeta:
			out.Meta = append(out.Meta, t)
			for _, m := range group {
				out.Applied = append(out.Applied, Applied{Modifier: m, Contributing: true})
			}

		case modifier.RuleHighestOnly:
			winnerIdx := best(group)
			winner := group[winnerIdx]
			subtotal := winner.Value
			for i, m := range group {
				entry := Applied{Modifier: m, Contributing: i == winnerIdx}
				if !entry.Contributing {
					entry.SuppressedBy = winner.SourceName
				}
				out.Applied = append(out.Applied, entry)
			}
			out.Total += subtotal
			out.ByType = append(out.ByType, typeEntry(t, subtotal, 1, []modifier.Modifier{winner}))

		case modifier.RuleStackUnlessSameSource:
			winners := perSourceWinners(group)
			subtotal := 0.0
			var contributing []modifier.Modifier
			for i, m := range group {
				winnerIdx, dedup := winners[m.SourceID]
				contributes := !dedup || winnerIdx == i
				entry := Applied{Modifier: m, Contributing: contributes}
				if contributes {
					subtotal += m.Value
					contributing = append(contributing, m)
				} else {
					entry.SuppressedBy = group[winnerIdx].SourceName
				}
				out.Applied = append(out.Applied, entry)
			}
			out.Total += subtotal
			out.ByType = append(out.ByType, typeEntry(t, subtotal, len(contributing), contributing))

		default: // modifier.RuleStack
			subtotal := 0.0
			for _, m := range group {
				subtotal += m.Value
				out.Applied = append(out.Applied, Applied{Modifier: m, Contributing: true})
			}
			out.Total += subtotal
			out.ByType = append(out.ByType, typeEntry(t, subtotal, len(group), group))
		}
	}

	return out
}

// sortForDisplay orders records by priority, then source name, then ID.
func sortForDisplay(mods []modifier.Modifier) {
	sort.SliceStable(mods, func(i, j int) bool {
		if mods[i].Priority != mods[j].Priority {
			return mods[i].Priority < mods[j].Priority
		}
		if mods[i].SourceName != mods[j].SourceName {
			return mods[i].SourceName < mods[j].SourceName
		}
		return mods[i].ID < mods[j].ID
	})
}

// best returns the index of the greatest signed value; ties break by lowest
// priority, then alphabetical source name, then ID. For an all-penalty group
// this selects the least severe penalty, matching the tabletop convention
// that only one effect of the category applies.
func best(mods []modifier.Modifier) int {
	winner := 0
	for i := 1; i < len(mods); i++ {
		if beats(mods[i], mods[winner]) {
			winner = i
		}
	}
	return winner
}

func beats(a, b modifier.Modifier) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.SourceName != b.SourceName {
		return a.SourceName < b.SourceName
	}
	return a.ID < b.ID
}

// perSourceWinners maps each duplicated source ID to the index of its
// winning record within mods. Records with a blank source ID are treated as
// distinct origins and never deduplicated against each other.
func perSourceWinners(mods []modifier.Modifier) map[string]int {
	bySource := map[string][]int{}
	for i, m := range mods {
		if m.SourceID == "" {
			continue
		}
		bySource[m.SourceID] = append(bySource[m.SourceID], i)
	}
	winners := map[string]int{}
	for sourceID, indexes := range bySource {
		if len(indexes) < 2 {
			continue
		}
		winner := indexes[0]
		for _, idx := range indexes[1:] {
			if beats(mods[idx], mods[winner]) {
				winner = idx
			}
		}
		winners[sourceID] = winner
	}
	return winners
}

func typeEntry(t modifier.Type, subtotal float64, count int, contributing []modifier.Modifier) TypeBreakdown {
	entry := TypeBreakdown{Type: t, Value: subtotal, Count: count}
	if count == 1 && len(contributing) >= 1 {
		entry.Description = contributing[0].SourceName
	} else {
		entry.Description = fmt.Sprintf("%d %s bonuses", count, t)
	}
	return entry
}
