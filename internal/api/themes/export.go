package themes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/themeforge/internal/api/apiutil"
	"github.com/codr1/themeforge/internal/export"
	"github.com/codr1/themeforge/internal/models"
	"github.com/codr1/themeforge/internal/ratelimit"
)

const publishTimeout = 30 * time.Second

// POST /api/v1/themes/export?format=
func HandleThemeExport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	format, err := formatFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ip, ok := allowExport(w, r, userID)
	if !ok {
		return
	}

	outcome, ok := validateRequestDocument(w, r)
	if !ok {
		return
	}

	artifact, err := export.Render(*outcome.Theme, format)
	if err != nil {
		logger.Error().Err(err).Str("format", string(format)).Msg("Failed to export theme")
		http.Error(w, "Failed to export theme", http.StatusInternalServerError)
		return
	}

	recordExport(userID, ip)
	writeArtifact(w, r, artifact)
}

// GET /api/v1/themes/{id}/export?format=
func HandleSnapshotExport(w http.ResponseWriter, r *http.Request) {
	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	artifact, ip, ok := snapshotArtifact(w, r, userID)
	if !ok {
		return
	}

	recordExport(userID, ip)
	writeArtifact(w, r, artifact)
}

// POST /api/v1/themes/{id}/publish?format=
func HandleSnapshotPublish(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if deps.Sink == nil {
		http.Error(w, "Publishing is not configured", http.StatusServiceUnavailable)
		return
	}

	userID := apiutil.RequireUser(w, r)
	if userID == "" {
		return
	}

	artifact, ip, ok := snapshotArtifact(w, r, userID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), publishTimeout)
	defer cancel()

	if err := deps.Sink.Deliver(ctx, artifact); err != nil {
		logger.Error().Err(err).Str("filename", artifact.Filename).Msg("Failed to publish theme artifact")
		http.Error(w, "Failed to publish theme", http.StatusBadGateway)
		return
	}
	recordExport(userID, ip)

	logger.Info().Str("filename", artifact.Filename).Int("bytes", len(artifact.Content)).Msg("Theme artifact published")
	if err := apiutil.WriteJSON(w, http.StatusAccepted, map[string]string{"filename": artifact.Filename}); err != nil {
		logger.Error().Err(err).Msg("Failed to write publish response")
	}
}

// snapshotArtifact renders a stored snapshot, serving repeats from the cache.
func snapshotArtifact(w http.ResponseWriter, r *http.Request, userID string) (export.Artifact, string, bool) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return export.Artifact{}, "", false
	}

	snapshotID, err := snapshotIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return export.Artifact{}, "", false
	}

	format, err := formatFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return export.Artifact{}, "", false
	}

	ip, ok := allowExport(w, r, userID)
	if !ok {
		return export.Artifact{}, "", false
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	// Ownership is checked on every request, cached or not.
	snapshot, ok := loadSnapshot(ctx, w, q, snapshotID, userID)
	if !ok {
		return export.Artifact{}, "", false
	}

	key := artifactKey(snapshotID, format)
	if deps.Cache != nil {
		if artifact, hit := deps.Cache.Get(key); hit {
			logger.Debug().Str("snapshot_id", snapshotID).Str("format", string(format)).Msg("Theme artifact cache hit")
			return artifact, ip, true
		}
	}

	var theme models.ThemeConfig
	if err := json.Unmarshal([]byte(snapshot.Document), &theme); err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Stored theme document is unreadable")
		http.Error(w, "Invalid theme data", http.StatusInternalServerError)
		return export.Artifact{}, "", false
	}

	artifact, err := export.Render(theme, format)
	if err != nil {
		logger.Error().Err(err).Str("snapshot_id", snapshotID).Msg("Failed to export theme snapshot")
		http.Error(w, "Failed to export theme", http.StatusInternalServerError)
		return export.Artifact{}, "", false
	}
	if deps.Cache != nil {
		deps.Cache.Add(key, artifact)
	}
	return artifact, ip, true
}

func formatFromQuery(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return export.FormatJSON, nil
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return "", fmt.Errorf("format must be one of %v", export.Formats)
		}
		return "", err
	}
	return format, nil
}

// allowExport enforces the export rate limit and returns the client IP.
func allowExport(w http.ResponseWriter, r *http.Request, userID string) (string, bool) {
	ip := ratelimit.GetClientIP(r, deps.TrustProxy)
	if deps.Limiter == nil {
		return ip, true
	}
	result := deps.Limiter.CheckExport(userID, ip)
	if !result.Allowed {
		ratelimit.LogRateLimitExceeded(r.Context(), userID, ip, result.Reason)
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
		http.Error(w, "Too many exports, try again later", http.StatusTooManyRequests)
		return ip, false
	}
	return ip, true
}

func recordExport(userID, ip string) {
	if deps.Limiter != nil {
		deps.Limiter.RecordExport(userID, ip)
	}
}

func artifactKey(snapshotID string, format export.Format) string {
	return snapshotID + ":" + string(format)
}

func evictArtifacts(snapshotID string) {
	if deps.Cache == nil {
		return
	}
	for _, format := range export.Formats {
		deps.Cache.Remove(artifactKey(snapshotID, format))
	}
}

func writeArtifact(w http.ResponseWriter, r *http.Request, artifact export.Artifact) {
	w.Header().Set("Content-Type", artifact.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Content); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("filename", artifact.Filename).Msg("Failed to write theme artifact")
	}
}
