// Package sqlite provides the SQLite-backed content library, character
// storage, and telemetry event journal.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/content"
	"github.com/sagaforge/engine/internal/content/storage/sqlite/migrations"
	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/platform/storage/sqlitemigrate"
	"github.com/sagaforge/engine/internal/rules/modifier"
	"github.com/sagaforge/engine/internal/telemetry"
	_ "modernc.org/sqlite"
)

// Store persists definitions, characters, and telemetry events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at the provided path and applies embedded
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle. It is nil-safe so callers can defer it in
// all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutDefinition upserts one definition and its effect rows.
func (s *Store) PutDefinition(ctx context.Context, def content.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put definition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO definitions (id, kind, name, weight)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   kind = excluded.kind,
		   name = excluded.name,
		   weight = excluded.weight`,
		def.ID,
		string(def.Kind),
		def.Name,
		def.Weight,
	)
	if err != nil {
		return fmt.Errorf("put definition: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM definition_effects WHERE definition_id = ?`, def.ID); err != nil {
		return fmt.Errorf("clear definition effects: %w", err)
	}
	for i, effect := range def.Effects {
		var priority sql.NullInt64
		if effect.Priority != nil {
			priority = sql.NullInt64{Int64: int64(*effect.Priority), Valid: true}
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO definition_effects (definition_id, idx, target, type, value, condition, priority)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			def.ID,
			i,
			effect.Target,
			string(effect.Type),
			effect.Value,
			effect.Condition,
			priority,
		)
		if err != nil {
			return fmt.Errorf("put definition effect: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put definition: %w", err)
	}
	return nil
}

// Definition loads one definition by ID.
func (s *Store) Definition(ctx context.Context, id string) (content.Definition, error) {
	if err := ctx.Err(); err != nil {
		return content.Definition{}, err
	}
	if s == nil || s.sqlDB == nil {
		return content.Definition{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return content.Definition{}, fmt.Errorf("definition id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, kind, name, weight FROM definitions WHERE id = ?`,
		id,
	)
	var def content.Definition
	var kind string
	if err := row.Scan(&def.ID, &kind, &def.Name, &def.Weight); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.Definition{}, apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"definition not found: "+id,
				map[string]string{"ID": id},
			)
		}
		return content.Definition{}, fmt.Errorf("get definition: %w", err)
	}
	def.Kind = content.Kind(kind)

	effects, err := s.effectsFor(ctx, def.ID)
	if err != nil {
		return content.Definition{}, err
	}
	def.Effects = effects
	return def, nil
}

// ByKind lists every definition of one kind, ordered by name.
func (s *Store) ByKind(ctx context.Context, kind content.Kind) ([]content.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if !content.ValidKind(kind) {
		return nil, apperrors.WithMetadata(
			apperrors.CodeContentUnknownKind,
			fmt.Sprintf("unknown content kind: %s", kind),
			map[string]string{"Kind": string(kind)},
		)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, kind, name, weight FROM definitions WHERE kind = ? ORDER BY name ASC`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer rows.Close()

	var defs []content.Definition
	for rows.Next() {
		var def content.Definition
		var rowKind string
		if err := rows.Scan(&def.ID, &rowKind, &def.Name, &def.Weight); err != nil {
			return nil, fmt.Errorf("list definitions: %w", err)
		}
		def.Kind = content.Kind(rowKind)
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}

	for i := range defs {
		effects, err := s.effectsFor(ctx, defs[i].ID)
		if err != nil {
			return nil, err
		}
		defs[i].Effects = effects
	}
	return defs, nil
}

func (s *Store) effectsFor(ctx context.Context, definitionID string) ([]content.Effect, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT target, type, value, condition, priority
		 FROM definition_effects
		 WHERE definition_id = ?
		 ORDER BY idx ASC`,
		definitionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list definition effects: %w", err)
	}
	defer rows.Close()

	var effects []content.Effect
	for rows.Next() {
		var effect content.Effect
		var effectType string
		var priority sql.NullInt64
		if err := rows.Scan(&effect.Target, &effectType, &effect.Value, &effect.Condition, &priority); err != nil {
			return nil, fmt.Errorf("list definition effects: %w", err)
		}
		effect.Type = modifier.Type(effectType)
		if priority.Valid {
			p := int(priority.Int64)
			effect.Priority = &p
		}
		effects = append(effects, effect)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list definition effects: %w", err)
	}
	return effects, nil
}

// Seed upserts default definitions, skipping any ID already present so local
// edits survive restarts.
func (s *Store) Seed(ctx context.Context, defs []content.Definition) error {
	for _, def := range defs {
		_, err := s.Definition(ctx, def.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.New(apperrors.CodeNotFound, "")) {
			return err
		}
		if err := s.PutDefinition(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// PutCharacter upserts one character snapshot as a JSON document.
func (s *Store) PutCharacter(ctx context.Context, ch *character.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if ch == nil || strings.TrimSpace(ch.ID) == "" {
		return fmt.Errorf("character id is required")
	}

	doc, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal character: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO characters (id, name, doc, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   doc = excluded.doc,
		   updated_at = excluded.updated_at`,
		ch.ID,
		ch.Name,
		doc,
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// Character loads one character snapshot by ID.
func (s *Store) Character(ctx context.Context, id string) (*character.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("character id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT doc FROM characters WHERE id = ?`, id)
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"character not found: "+id,
				map[string]string{"ID": id},
			)
		}
		return nil, fmt.Errorf("get character: %w", err)
	}

	var ch character.Character
	if err := json.Unmarshal(doc, &ch); err != nil {
		return nil, fmt.Errorf("unmarshal character %s: %w", id, err)
	}
	return &ch, nil
}

// AppendEvent records one telemetry event.
func (s *Store) AppendEvent(ctx context.Context, evt telemetry.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	var attributes []byte
	if len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal event attributes: %w", err)
		}
		attributes = payload
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events
		   (id, timestamp, kind, severity, character_id, target, modifier_id, producer, message, attributes_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID,
		toMillis(evt.Timestamp),
		string(evt.Kind),
		string(evt.Severity),
		evt.CharacterID,
		evt.Target,
		evt.ModifierID,
		evt.Producer,
		evt.Message,
		attributes,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// EventsForCharacter returns up to limit recent events for one character,
// newest first.
func (s *Store) EventsForCharacter(ctx context.Context, characterID string, limit int) ([]telemetry.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, timestamp, kind, severity, character_id, target, modifier_id, producer, message, attributes_json
		 FROM telemetry_events
		 WHERE character_id = ?
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		characterID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer rows.Close()

	var events []telemetry.Event
	for rows.Next() {
		var evt telemetry.Event
		var ts int64
		var kind, severity string
		var attributes []byte
		if err := rows.Scan(&evt.ID, &ts, &kind, &severity, &evt.CharacterID, &evt.Target,
			&evt.ModifierID, &evt.Producer, &evt.Message, &attributes); err != nil {
			return nil, fmt.Errorf("list telemetry events: %w", err)
		}
		evt.Timestamp = fromMillis(ts)
		evt.Kind = telemetry.Kind(kind)
		evt.Severity = telemetry.Severity(severity)
		if len(attributes) > 0 {
			if err := json.Unmarshal(attributes, &evt.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal event attributes: %w", err)
			}
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	return events, nil
}

var (
	_ content.Library = (*Store)(nil)
	_ telemetry.Store = (*Store)(nil)
)
