package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/models"
	"github.com/gartstein/companydir/internal/company/validation"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// companyInput is the request body for create and update. Every field is
// optional at decode time; create and update apply their own rules.
type companyInput struct {
	Name     *string  `json:"name"`
	Industry *string  `json:"industry"`
	Location *string  `json:"location"`
	Size     looseInt `json:"size"`
	Founded  looseInt `json:"founded"`
}

// looseInt accepts a JSON number or a numeric string, the way HTML form
// values arrive. null and "" decode as absent.
type looseInt struct {
	Value *int
}

func (l *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		l.Value = nil
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			l.Value = nil
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("%q is not a number", raw)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("%q is not a whole number", raw)
	}
	v := int(f)
	l.Value = &v
	return nil
}

func decodeInput(w http.ResponseWriter, r *http.Request) (*companyInput, error) {
	var in companyInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: invalid request body: %v", e.ErrInvalidInput, err)
	}
	return &in, nil
}

// toModel converts a create request into a Company model.
func (in *companyInput) toModel() *models.Company {
	return &models.Company{
		Name:     deref(in.Name),
		Industry: deref(in.Industry),
		Location: deref(in.Location),
		Size:     in.Size.Value,
		Founded:  in.Founded.Value,
	}
}

// toUpdate converts an update request into a sparse CompanyUpdate.
func (in *companyInput) toUpdate(id string) *models.CompanyUpdate {
	return &models.CompanyUpdate{
		ID:       id,
		Name:     in.Name,
		Industry: in.Industry,
		Location: in.Location,
		Size:     in.Size.Value,
		Founded:  in.Founded.Value,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseFilter reads search, minSize and maxSize. Empty values are ignored.
func parseFilter(query url.Values) (models.CompanyFilter, error) {
	filter := models.CompanyFilter{Search: query.Get("search")}
	fields := map[string]string{}

	for _, bound := range []struct {
		name string
		dst  **int
	}{
		{"minSize", &filter.MinSize},
		{"maxSize", &filter.MaxSize},
	} {
		raw := strings.TrimSpace(query.Get(bound.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields[bound.name] = validation.Message(bound.name, "numeric", err.Error())
			continue
		}
		*bound.dst = &v
	}

	if len(fields) > 0 {
		return models.CompanyFilter{}, &e.ValidationError{Fields: fields}
	}
	return filter, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *models.Company `json:"data"`
}

func (h *CompanyHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeServiceError maps domain or repository errors to HTTP responses.
// Only validation failures reveal their cause.
func (h *CompanyHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, messageResponse{Message: "Company not found"})
	case errors.Is(err, e.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}
