package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/themeforge/internal/api/authz"
)

// MaxDocumentBytes caps request bodies that carry theme documents. The
// validator enforces its own, smaller size rule on the compacted document.
const MaxDocumentBytes = 1 << 20

var ErrBodyTooLarge = errors.New("request body too large")

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// ReadDocument returns the raw request body, bounded by MaxDocumentBytes.
// Theme documents are validated from raw bytes so key order survives.
func ReadDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("missing request body")
	}
	return body, nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RequireUser writes 401 and returns "" when the request carries no user.
func RequireUser(w http.ResponseWriter, r *http.Request) string {
	if err := authz.RequireUser(r.Context()); err != nil {
		log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Theme access denied: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return ""
	}
	return authz.UserID(r.Context())
}
