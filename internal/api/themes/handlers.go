// internal/api/themes/handlers.go
package themes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/codr1/themeforge/internal/api/apiutil"
	"github.com/codr1/themeforge/internal/artifacts"
	"github.com/codr1/themeforge/internal/db"
	"github.com/codr1/themeforge/internal/editor"
	"github.com/codr1/themeforge/internal/export"
	"github.com/codr1/themeforge/internal/ratelimit"
)

const (
	themeQueryTimeout = 5 * time.Second
	themeIDParam      = "id"
)

var (
	queries     themeQueries
	deps        Dependencies
	queriesOnce sync.Once
)

type themeQueries interface {
	InsertSnapshot(ctx context.Context, arg db.InsertSnapshotParams) (db.ThemeSnapshot, error)
	GetSnapshot(ctx context.Context, arg db.GetSnapshotParams) (db.ThemeSnapshot, error)
	ListSnapshots(ctx context.Context, arg db.ListSnapshotsParams) ([]db.ThemeSnapshot, error)
	LatestSnapshot(ctx context.Context, arg db.LatestSnapshotParams) (db.ThemeSnapshot, error)
	DeleteSnapshot(ctx context.Context, arg db.DeleteSnapshotParams) (int64, error)
	UpdateSnapshotName(ctx context.Context, arg db.UpdateSnapshotNameParams) (db.ThemeSnapshot, error)
}

// Dependencies are the collaborators the export and publish routes need.
// Nil members disable the feature that uses them.
type Dependencies struct {
	Sink       artifacts.Sink
	Limiter    *ratelimit.Limiter
	Cache      *lru.Cache[string, export.Artifact]
	TrustProxy bool
}

type snapshotResponse struct {
	ID              string          `json:"id"`
	ThemeID         string          `json:"themeId"`
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	WcagLevel       string          `json:"wcagLevel"`
	PerformanceTier string          `json:"performanceTier"`
	EstimatedSize   int64           `json:"estimatedSize"`
	CreatedAt       time.Time       `json:"createdAt"`
	Theme           json.RawMessage `json:"theme,omitempty"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries, d Dependencies) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		deps = d
	})
}

// POST /api/v1/themes
func HandleThemeCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	outcome, ok := validateRequestDocument(w, r)
	if !ok {
		return
	}

	params, err := editor.NewSnapshotParams(*outcome.Theme, userID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode theme snapshot")
		http.Error(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	created, err := q.InsertSnapshot(ctx, params)
	if err != nil {
		logger.Error().Err(err).Str("theme_id", params.ThemeID).Msg("Failed to insert theme snapshot")
		http.Error(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Str("snapshot_id", created.ID).
		Str("theme_id", created.ThemeID).
		Str("wcag_level", created.WcagLevel).
		Msg("Theme snapshot saved")

	if err := apiutil.WriteJSON(w, http.StatusCreated, newSnapshotResponse(created, true)); err != nil {
		logger.Error().Err(err).Str("snapshot_id", created.ID).Msg("Failed to write theme create response")
	}
}

// GET /api/v1/themes
func HandleThemesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	limit, err := apiutil.LimitFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	snapshots, err := q.ListSnapshots(ctx, db.ListSnapshotsParams{
		UserID:  userID,
		ThemeID: apiutil.ToNullString(r.URL.Query().Get("theme_id")),
		Limit:   limit,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list theme snapshots")
		http.Error(w, "Failed to load themes", http.StatusInternalServerError)
		return
	}

	response := make([]snapshotResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		response = append(response, newSnapshotResponse(snapshot, false))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"themes": response}); err != nil {
		logger.Error().Err(err).Msg("Failed to write themes list response")
	}
}

// GET /api/v1/themes/latest?theme_id=
func HandleThemeLatest(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	themeID := strings.TrimSpace(r.URL.Query().Get("theme_id"))
	if themeID == "" {
		http.Error(w, "theme_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	snapshot, err := q.LatestSnapshot(ctx, db.LatestSnapshotParams{UserID: userID, ThemeID: themeID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Theme not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to fetch latest theme snapshot")
		http.Error(w, "Failed to load theme", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newSnapshotResponse(snapshot, true)); err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("Failed to write latest theme response")
	}
}

// GET /api/v1/themes/{id}
func HandleThemeDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	snapshotID, err := snapshotIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	snapshot, ok := loadSnapshot(ctx, w, q, snapshotID, userID)
	if !ok {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newSnapshotResponse(snapshot, true)); err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to write theme detail response")
	}
}

// PATCH /api/v1/themes/{id}
func HandleThemeRename(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	snapshotID, err := snapshotIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	var req renameRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	existing, ok := loadSnapshot(ctx, w, q, snapshotID, userID)
	if !ok {
		return
	}

	session, err := editor.Load([]byte(existing.Document))
	if err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Stored theme document is unreadable")
		http.Error(w, "Invalid theme data", http.StatusInternalServerError)
		return
	}
	session.Revise()
	if err := session.SetName(req.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := session.Validate()
	if !result.Valid {
		writeValidationResult(w, r, http.StatusUnprocessableEntity, validationResponse{ValidationResult: result})
		return
	}

	document, err := session.Export(export.FormatJSON)
	if err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to encode renamed theme")
		http.Error(w, "Failed to update theme", http.StatusInternalServerError)
		return
	}

	updated, err := q.UpdateSnapshotName(ctx, db.UpdateSnapshotNameParams{
		Name:     session.Theme().Name,
		Document: string(document.Content),
		ID:       snapshotID,
		UserID:   userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Theme not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to rename theme snapshot")
		http.Error(w, "Failed to update theme", http.StatusInternalServerError)
		return
	}
	evictArtifacts(snapshotID)

	if err := apiutil.WriteJSON(w, http.StatusOK, newSnapshotResponse(updated, true)); err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to write theme rename response")
	}
}

// DELETE /api/v1/themes/{id}
func HandleThemeDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	snapshotID, err := snapshotIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	deleted, err := q.DeleteSnapshot(ctx, db.DeleteSnapshotParams{ID: snapshotID, UserID: userID})
	if err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to delete theme snapshot")
		http.Error(w, "Failed to delete theme", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		http.Error(w, "Theme not found", http.StatusNotFound)
		return
	}
	evictArtifacts(snapshotID)

	w.WriteHeader(http.StatusNoContent)
}

func loadSnapshot(ctx context.Context, w http.ResponseWriter, q themeQueries, snapshotID, userID string) (db.ThemeSnapshot, bool) {
	snapshot, err := q.GetSnapshot(ctx, db.GetSnapshotParams{ID: snapshotID, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Theme not found", http.StatusNotFound)
			return db.ThemeSnapshot{}, false
		}
		log.Ctx(ctx).Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to fetch theme snapshot")
		http.Error(w, "Failed to load theme", http.StatusInternalServerError)
		return db.ThemeSnapshot{}, false
	}
	return snapshot, true
}

func snapshotIDFromRequest(r *http.Request) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(r.PathValue(themeIDParam)))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func newSnapshotResponse(snapshot db.ThemeSnapshot, withDocument bool) snapshotResponse {
	response := snapshotResponse{
		ID:              snapshot.ID,
		ThemeID:         snapshot.ThemeID,
		Name:            snapshot.Name,
		Version:         snapshot.Version,
		WcagLevel:       snapshot.WcagLevel,
		PerformanceTier: snapshot.PerformanceTier,
		EstimatedSize:   snapshot.EstimatedSize,
		CreatedAt:       snapshot.CreatedAt,
	}
	if withDocument && json.Valid([]byte(snapshot.Document)) {
		response.Theme = json.RawMessage(snapshot.Document)
	}
	return response
}

func loadQueries() themeQueries {
	return queries
}
