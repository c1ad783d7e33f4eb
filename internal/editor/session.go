// Package editor holds an in-memory theme while it is being edited and
// gates export and persistence on a successful validation.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codr1/themeforge/internal/db"
	"github.com/codr1/themeforge/internal/export"
	"github.com/codr1/themeforge/internal/migration"
	"github.com/codr1/themeforge/internal/models"
	"github.com/codr1/themeforge/internal/security"
	"github.com/codr1/themeforge/internal/validation"
)

type State string

const (
	StateDraft      State = "draft"
	StateValidating State = "validating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
)

var (
	ErrNotValid      = errors.New("theme has not passed validation")
	ErrNeedsRevision = errors.New("invalid theme must be revised before editing")
	ErrUnknownPreset = errors.New("unknown background preset")
	ErrUndecodable   = errors.New("theme document cannot be decoded")
)

// SnapshotStore is the storage the session persists to.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, arg db.InsertSnapshotParams) (db.ThemeSnapshot, error)
}

// Session is not safe for concurrent use.
type Session struct {
	theme    models.ThemeConfig
	state    State
	result   models.ValidationResult
	migrated []string
}

// New starts a draft from the default theme.
func New() *Session {
	return &Session{
		theme:  models.DefaultTheme(),
		state:  StateDraft,
		result: models.NewValidationResult(),
	}
}

// Load migrates and validates a stored document. A document that fails
// validation but still decodes is loaded in the invalid state.
func Load(raw []byte) (*Session, error) {
	migrated, err := migration.Default().Apply(raw)
	if err != nil {
		return nil, fmt.Errorf("migrate theme: %w", err)
	}

	outcome := validation.Validate(migrated.Document)
	if outcome.Valid() {
		return &Session{
			theme:    *outcome.Theme,
			state:    StateValid,
			result:   outcome.Result,
			migrated: migrated.Applied,
		}, nil
	}

	var theme models.ThemeConfig
	if err := json.Unmarshal(migrated.Document, &theme); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return &Session{
		theme:    theme,
		state:    StateInvalid,
		result:   outcome.Result,
		migrated: migrated.Applied,
	}, nil
}

func (s *Session) State() State {
	return s.state
}

// Theme returns a copy of the current document.
func (s *Session) Theme() models.ThemeConfig {
	return s.theme.Clone()
}

// Result returns the outcome of the last validation.
func (s *Session) Result() models.ValidationResult {
	return s.result
}

// Migrations lists the schema steps applied when the session was loaded.
func (s *Session) Migrations() []string {
	return append([]string(nil), s.migrated...)
}

// edit applies fn and drops the session back to draft.
func (s *Session) edit(fn func(theme *models.ThemeConfig) error) error {
	if s.state == StateInvalid {
		return ErrNeedsRevision
	}
	next := s.theme.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.theme = next
	s.state = StateDraft
	return nil
}

func (s *Session) SetName(name string) error {
	return s.edit(func(theme *models.ThemeConfig) error {
		theme.Name = strings.TrimSpace(security.Sanitize(name))
		return nil
	})
}

// SetDescription stores description with markup stripped.
func (s *Session) SetDescription(description string) error {
	return s.edit(func(theme *models.ThemeConfig) error {
		theme.Metadata.Description = security.SanitizeText(description)
		return nil
	})
}

// SetColor sets or replaces a color token. The color space is inferred from
// value; values in no known grammar are stored as hex and fail validation.
func (s *Session) SetColor(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("color key is required")
	}
	return s.edit(func(theme *models.ThemeConfig) error {
		clean := strings.TrimSpace(security.Sanitize(value))
		space, ok := models.InferColorSpace(clean)
		if !ok {
			space = models.ColorSpaceHex
		}
		token, _ := theme.Colors.Get(key)
		token.Value = clean
		token.Space = space
		token.Contrast = nil
		theme.Colors.Set(key, token)
		return nil
	})
}

func (s *Session) RemoveColor(key string) error {
	return s.edit(func(theme *models.ThemeConfig) error {
		if !theme.Colors.Has(key) {
			return fmt.Errorf("color %q not found", key)
		}
		theme.Colors.Delete(key)
		return nil
	})
}

// ApplyBackgroundPreset stores the named preset under key.
func (s *Session) ApplyBackgroundPreset(key, preset string) error {
	build, ok := backgroundPresets[preset]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return s.edit(func(theme *models.ThemeConfig) error {
		theme.Backgrounds.Set(key, build())
		return nil
	})
}

// Validate runs the full validation pipeline. On success the session adopts
// the theme with recomputed metadata.
func (s *Session) Validate() models.ValidationResult {
	// An invalid session keeps its last result until it is revised.
	if s.state == StateInvalid {
		return s.result
	}
	s.state = StateValidating
	s.theme.Timestamp = models.NewTimestamp(time.Now())

	outcome := validation.ValidateTheme(s.theme)
	s.result = outcome.Result
	if outcome.Valid() {
		s.theme = *outcome.Theme
		s.state = StateValid
	} else {
		s.state = StateInvalid
	}
	return s.result
}

// Revise returns an invalid session to draft so it can be edited again.
func (s *Session) Revise() {
	if s.state == StateInvalid || s.state == StateValid {
		s.state = StateDraft
	}
}

func (s *Session) Export(format export.Format) (export.Artifact, error) {
	if s.state != StateValid {
		return export.Artifact{}, ErrNotValid
	}
	return export.Render(s.theme, format)
}

// Persist saves the validated theme as a new snapshot owned by userID.
func (s *Session) Persist(ctx context.Context, store SnapshotStore, userID string) (db.ThemeSnapshot, error) {
	if s.state != StateValid {
		return db.ThemeSnapshot{}, ErrNotValid
	}
	params, err := NewSnapshotParams(s.theme, userID)
	if err != nil {
		return db.ThemeSnapshot{}, err
	}
	return store.InsertSnapshot(ctx, params)
}

// NewSnapshotParams builds an insert for a theme that has passed validation.
func NewSnapshotParams(theme models.ThemeConfig, userID string) (db.InsertSnapshotParams, error) {
	document, err := export.Export(theme, export.FormatJSON)
	if err != nil {
		return db.InsertSnapshotParams{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return db.InsertSnapshotParams{
		ID:              uuid.NewString(),
		ThemeID:         theme.ID,
		UserID:          userID,
		Name:            theme.Name,
		Version:         theme.Version,
		Document:        document,
		WcagLevel:       string(theme.Metadata.Accessibility.WCAGLevel),
		PerformanceTier: string(theme.Metadata.Performance.Tier),
		EstimatedSize:   int64(theme.Metadata.Performance.EstimatedSize),
		CreatedAt:       time.Now().UTC(),
	}, nil
}
