package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/themeforge/internal/api/apiutil"
	"github.com/codr1/themeforge/internal/api/authz"
	"github.com/codr1/themeforge/internal/migration"
	"github.com/codr1/themeforge/internal/models"
	"github.com/codr1/themeforge/internal/ratelimit"
	"github.com/codr1/themeforge/internal/security"
	"github.com/codr1/themeforge/internal/validation"
)

const (
	maxBatchDocuments = 50
	batchConcurrency  = 8
)

var migrator = migration.Default()

type validationResponse struct {
	models.ValidationResult
	Theme      *models.ThemeConfig `json:"theme,omitempty"`
	Migrations []string            `json:"migrations,omitempty"`
}

type batchResponse struct {
	Valid   int                  `json:"valid"`
	Invalid int                  `json:"invalid"`
	Results []validationResponse `json:"results"`
}

// POST /api/v1/themes/validate
func HandleThemeValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := readDocument(w, r)
	if !ok {
		return
	}

	response, violations := validateDocument(body)
	logViolations(r, violations)

	status := http.StatusOK
	if !response.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeValidationResult(w, r, status, response)
}

// POST /api/v1/themes/validate/batch
func HandleThemeValidateBatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	body, ok := readDocument(w, r)
	if !ok {
		return
	}

	var documents []json.RawMessage
	if err := json.Unmarshal(body, &documents); err != nil {
		http.Error(w, "Request body must be a JSON array of theme documents", http.StatusBadRequest)
		return
	}
	if len(documents) == 0 {
		http.Error(w, "At least one theme document is required", http.StatusBadRequest)
		return
	}
	if len(documents) > maxBatchDocuments {
		http.Error(w, fmt.Sprintf("At most %d theme documents per batch", maxBatchDocuments), http.StatusRequestEntityTooLarge)
		return
	}

	results := make([]validationResponse, len(documents))
	violations := make([][]security.Violation, len(documents))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)
	for i, document := range documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], violations[i] = validateDocument(document)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Int("documents", len(documents)).Msg("Batch validation canceled")
		return
	}

	response := batchResponse{Results: results}
	for i, result := range results {
		logViolations(r, violations[i])
		if result.Valid {
			response.Valid++
		} else {
			response.Invalid++
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write batch validation response")
	}
}

// validateDocument upgrades legacy documents before running the validator.
func validateDocument(body []byte) (validationResponse, []security.Violation) {
	migrated, err := migrator.Apply(body)
	if err != nil {
		// Validate what was sent; the validator reports the structural problems.
		migrated = migration.Result{Document: body}
	}

	outcome := validation.Validate(migrated.Document)
	return validationResponse{
		ValidationResult: outcome.Result,
		Theme:            outcome.Theme,
		Migrations:       migrated.Applied,
	}, outcome.Violations
}

// validateRequestDocument writes a 422 with the result and returns false when
// the body is not a valid theme.
func validateRequestDocument(w http.ResponseWriter, r *http.Request) (validation.Outcome, bool) {
	body, ok := readDocument(w, r)
	if !ok {
		return validation.Outcome{}, false
	}

	response, violations := validateDocument(body)
	logViolations(r, violations)
	if !response.Valid {
		writeValidationResult(w, r, http.StatusUnprocessableEntity, response)
		return validation.Outcome{}, false
	}
	return validation.Outcome{Result: response.ValidationResult, Theme: response.Theme}, true
}

func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := apiutil.ReadDocument(w, r)
	if err != nil {
		if errors.Is(err, apiutil.ErrBodyTooLarge) {
			http.Error(w, "Theme document too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Theme document is required", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeValidationResult(w http.ResponseWriter, r *http.Request, status int, response validationResponse) {
	if err := apiutil.WriteJSON(w, status, response); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write validation response")
	}
}

// logViolations records injection attempts server-side in addition to
// returning them to the caller.
func logViolations(r *http.Request, violations []security.Violation) {
	if len(violations) == 0 {
		return
	}
	logger := log.Ctx(r.Context())
	ip := ratelimit.GetClientIP(r, deps.TrustProxy)
	userID := authz.UserID(r.Context())
	for _, violation := range violations {
		logger.Warn().
			Str("event", "theme_security_violation").
			Str("path", violation.Path).
			Str("pattern", violation.Pattern).
			Str("user_id", userID).
			Str("ip", ip).
			Msg("Theme document rejected by security scan")
	}
}
