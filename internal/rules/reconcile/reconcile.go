// Package reconcile merges per-producer modifier sets into the single
// candidate list the resolver consumes. It drops malformed records, collapses
// duplicate record IDs, and adjudicates value disagreements by producer
// authority. It never applies stacking; that is the resolver's job.
package reconcile

import (
	"fmt"

	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
	"github.com/sagaforge/engine/internal/rules/producer"
)

// Dropped records a candidate excluded during reconciliation. Nothing is
// dropped silently: callers forward these to the diagnostics emitter.
type Dropped struct {
	Modifier modifier.Modifier
	Producer string
	Reason   error
}

// Conflict records two producers disagreeing about the same record ID with
// different values. The higher-authority copy is kept in the merged list; the
// other is discarded here.
type Conflict struct {
	ID                 string
	Target             string
	Kept               modifier.Modifier
	KeptProducer       string
	KeptAuthority      producer.Authority
	Discarded          modifier.Modifier
	DiscardedProducer  string
	DiscardedAuthority producer.Authority
	Err                error
}

// Result is the reconciled view across every producer.
type Result struct {
	// Modifiers is the merged candidate list in first-seen order.
	Modifiers []modifier.Modifier
	Dropped   []Dropped
	Conflicts []Conflict
}

type entry struct {
	authority producer.Authority
	producer  string
	index     int
}

// Reconcile merges the given sets. Records failing validation are dropped and
// reported. Duplicate IDs collapse to one record: when the copies carry
// different values the higher authority wins and a Conflict is recorded; at
// equal authority the first-seen copy wins. Set order is the caller's
// registration order, so output is deterministic for identical input.
func Reconcile(sets ...producer.Set) Result {
	var res Result
	seen := make(map[string]entry)

	for _, set := range sets {
		for _, m := range set.Modifiers {
			if !modifier.IsValid(m) {
				res.Dropped = append(res.Dropped, Dropped{
					Modifier: m,
					Producer: set.Producer,
					Reason: apperrors.WithMetadata(
						apperrors.CodeModifierInvalidTarget,
						fmt.Sprintf("invalid modifier %s from %s", m.ID, set.Producer),
						map[string]string{"ID": m.ID, "Producer": set.Producer},
					),
				})
				continue
			}

			prev, dup := seen[m.ID]
			if !dup {
				seen[m.ID] = entry{authority: set.Authority, producer: set.Producer, index: len(res.Modifiers)}
				res.Modifiers = append(res.Modifiers, m)
				continue
			}

			held := res.Modifiers[prev.index]
			if m.Value != held.Value {
				conflict := Conflict{
					ID:     m.ID,
					Target: m.Target,
					Err: apperrors.WithMetadata(
						apperrors.CodeReconcileAuthorityConflict,
						fmt.Sprintf("producers %s and %s disagree on %s", prev.producer, set.Producer, m.ID),
						map[string]string{"ID": m.ID, "Target": m.Target},
					),
				}
				if set.Authority > prev.authority {
					conflict.Kept, conflict.KeptProducer, conflict.KeptAuthority = m, set.Producer, set.Authority
					conflict.Discarded, conflict.DiscardedProducer, conflict.DiscardedAuthority = held, prev.producer, prev.authority
				} else {
					conflict.Kept, conflict.KeptProducer, conflict.KeptAuthority = held, prev.producer, prev.authority
					conflict.Discarded, conflict.DiscardedProducer, conflict.DiscardedAuthority = m, set.Producer, set.Authority
				}
				res.Conflicts = append(res.Conflicts, conflict)
			}
			if set.Authority > prev.authority {
				res.Modifiers[prev.index] = m
				seen[m.ID] = entry{authority: set.Authority, producer: set.Producer, index: prev.index}
			}
		}
	}
	return res
}
