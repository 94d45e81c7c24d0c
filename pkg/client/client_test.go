package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("localhost:5000")
	assert.Error(t, err)

	c, err := New("http://localhost:5000/", WithHTTPClient(http.DefaultClient), WithHeaders(http.Header{"X-Trace": {"1"}}))
	require.NoError(t, err)
	assert.Same(t, http.DefaultClient, c.httpClient)
	assert.Equal(t, "1", c.headers.Get("X-Trace"))
	assert.Equal(t, "http://localhost:5000/api/companies/abc", c.buildURL(companyPath("abc"), nil))
}

func TestClient_List(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/companies", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[{"id":"1","name":"Acme","industry":"General","location":"NY","size":10}]`)
	})

	minSize := 5
	companies, err := c.List(context.Background(), ListOptions{Search: "acm", MinSize: &minSize})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, 10, *companies[0].Size)
	assert.Nil(t, companies[0].Founded)
	assert.Equal(t, "minSize=5&search=acm", gotQuery)
}

func TestClient_ListEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = io.WriteString(w, `[]`)
	})

	companies, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, companies)
	assert.Empty(t, companies)
}

func TestClient_Create(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme", body["name"])
		assert.NotContains(t, body, "founded")

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"message":"Company created successfully","data":{"id":"abc","name":"Acme","industry":"General","location":"NY"}}`)
	})

	name, location := "Acme", "NY"
	created, err := c.Create(context.Background(), CompanyInput{Name: &name, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)
	assert.Equal(t, "General", created.Industry)
}

func TestClient_CreateValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Company validation failed: name: Company name is required"}`)
	})

	_, err := c.Create(context.Background(), CompanyInput{})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Company validation failed: name: Company name is required", apiErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestClient_GetNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/companies/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Company not found"}`)
	})

	_, err := c.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Company not found")
}

func TestClient_EscapesIDInPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/companies/a%2Fb%3Fc", r.URL.EscapedPath())
		assert.Empty(t, r.URL.RawQuery)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Company not found"}`)
	})

	_, err := c.Get(context.Background(), "a/b?c")
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestClient_UpdateAndDelete(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/companies/abc", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"location":"Boston"}`, string(body))
			_, _ = io.WriteString(w, `{"id":"abc","name":"Acme","industry":"General","location":"Boston"}`)
		case http.MethodDelete:
			_, _ = io.WriteString(w, `{"message":"Company deleted successfully"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	location := "Boston"
	updated, err := c.Update(context.Background(), "abc", CompanyInput{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "Boston", updated.Location)

	require.NoError(t, c.Delete(context.Background(), "abc"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Internal server error"}`)
	})

	_, err := c.List(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
