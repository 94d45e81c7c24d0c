package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLooseInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *int
		wantErr bool
	}{
		{name: "number", input: `42`, want: intPtr(42)},
		{name: "numeric string", input: `"42"`, want: intPtr(42)},
		{name: "padded string", input: `" 7 "`, want: intPtr(7)},
		{name: "whole float", input: `10.0`, want: intPtr(10)},
		{name: "negative", input: `-3`, want: intPtr(-3)},
		{name: "null", input: `null`, want: nil},
		{name: "empty string", input: `""`, want: nil},
		{name: "fraction", input: `1.5`, wantErr: true},
		{name: "word", input: `"ten"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
		{name: "too large", input: `1e12`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var l looseInt
			err := json.Unmarshal([]byte(tc.input), &l)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, l.Value)
		})
	}
}

func TestCompanyInput_Conversions(t *testing.T) {
	var in companyInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Acme","location":"NY","size":"12"}`), &in))

	company := in.toModel()
	if company.Name != "Acme" {
		t.Errorf("expected name %q, got %q", "Acme", company.Name)
	}
	if company.Industry != "" {
		t.Errorf("expected empty industry before normalisation, got %q", company.Industry)
	}
	if company.Size == nil || *company.Size != 12 {
		t.Errorf("expected size 12, got %v", company.Size)
	}
	if company.Founded != nil {
		t.Errorf("expected founded to be absent, got %v", *company.Founded)
	}

	update := in.toUpdate("abc")
	assert.Equal(t, "abc", update.ID)
	assert.Equal(t, "Acme", *update.Name)
	assert.Nil(t, update.Industry)
	assert.Equal(t, 12, *update.Size)
	assert.False(t, update.Empty())
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    models.CompanyFilter
		wantErr string
	}{
		{name: "empty", query: "", want: models.CompanyFilter{}},
		{name: "search only", query: "search=acm", want: models.CompanyFilter{Search: "acm"}},
		{
			name:  "both bounds",
			query: "minSize=10&maxSize=100",
			want:  models.CompanyFilter{MinSize: intPtr(10), MaxSize: intPtr(100)},
		},
		{name: "blank bound ignored", query: "minSize=+&maxSize=", want: models.CompanyFilter{}},
		{name: "bad minSize", query: "minSize=abc", wantErr: "minSize must be a number"},
		{name: "bad maxSize", query: "maxSize=1.5", wantErr: "maxSize must be a number"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			require.NoError(t, err)

			got, err := parseFilter(values)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, e.ErrInvalidInput))
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	h := &CompanyHandler{logger: zaptest.NewLogger(t)}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found",
			err:        e.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Company not found"}`,
		},
		{
			name:       "invalid input",
			err:        &e.ValidationError{Fields: map[string]string{"location": "Location is required"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Company validation failed: location: Location is required"}`,
		},
		{
			name:       "malformed id",
			err:        e.ErrMalformedID,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeServiceError(rec, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestDecodeInput_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/companies", strings.NewReader(body))
	rec := httptest.NewRecorder()

	_, err := decodeInput(rec, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrInvalidInput))
}

func intPtr(v int) *int { return &v }
