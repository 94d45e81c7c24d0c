package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gartstein/companydir/internal/company/events"
	"github.com/gartstein/companydir/internal/company/models"
	"github.com/gartstein/companydir/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recorder keeps request bodies keyed by "METHOD path".
type recorder struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (r *recorder) set(k, v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[k] = v
}

func (r *recorder) get(k string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[k]
}

// fakeGateway serves canned responses and records request bodies.
func fakeGateway(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{bodies: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.set(r.Method+" "+r.URL.Path, string(body))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/companies":
			rec.set("query", r.URL.RawQuery)
			_, _ = io.WriteString(w, `[{"id":"a1","name":"Acme","industry":"General","location":"NY","size":10}]`)
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"success":true,"message":"Company created successfully","data":{"id":"a1","name":"Acme","industry":"General","location":"NY"}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/companies/a1":
			_, _ = io.WriteString(w, `{"id":"a1","name":"Acme","industry":"General","location":"Boston"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/companies/a1":
			_, _ = io.WriteString(w, `{"message":"Company deleted successfully"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Company not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger = zap.NewNop()
	apiURL, logFile, outputJSON = "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveAPI(t *testing.T) {
	apiURL = ""
	t.Setenv("COMPANYCTL_API", "")
	assert.Equal(t, defaultAPI, resolveAPI())

	t.Setenv("COMPANYCTL_API", "http://gateway:5000")
	assert.Equal(t, "http://gateway:5000", resolveAPI())

	apiURL = "http://flag:1"
	defer func() { apiURL = "" }()
	assert.Equal(t, "http://flag:1", resolveAPI())
}

func TestListCmd(t *testing.T) {
	srv, bodies := fakeGateway(t)

	out, err := execute(t, "list", "--api", srv.URL, "--search", "acm", "--min-size", "5", "--json")
	require.NoError(t, err)

	var companies []client.Company
	require.NoError(t, json.Unmarshal([]byte(out), &companies))
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, "minSize=5&search=acm", bodies.get("query"))
}

func TestCreateCmd(t *testing.T) {
	srv, bodies := fakeGateway(t)

	out, err := execute(t, "create", "--api", srv.URL, "--name", "Acme", "--location", "NY")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "a1")
	assert.JSONEq(t, `{"name":"Acme","location":"NY"}`, bodies.get("POST /api/companies"))
}

func TestUpdateCmdSendsOnlyChangedFlags(t *testing.T) {
	srv, bodies := fakeGateway(t)

	out, err := execute(t, "update", "a1", "--api", srv.URL, "--location", "Boston", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"location": "Boston"`)
	assert.JSONEq(t, `{"location":"Boston"}`, bodies.get("PUT /api/companies/a1"))
}

func TestDeleteCmd(t *testing.T) {
	srv, _ := fakeGateway(t)

	out, err := execute(t, "delete", "a1", "--api", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Deleted a1\n", out)
}

func TestGetCmdNotFound(t *testing.T) {
	srv, _ := fakeGateway(t)

	_, err := execute(t, "get", "missing", "--api", srv.URL)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestRenderTable(t *testing.T) {
	size := 10
	out := renderTable([]client.Company{{ID: "a1", Name: "Acme", Industry: "General", Location: "NY", Size: &size}})
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Acme")
	assert.True(t, strings.Contains(out, "-"), "missing founded renders as a dash")
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	handler := printEvent(&out)

	require.NoError(t, handler(context.Background(), events.Event{
		Type:    events.CompanyCreated,
		Company: &models.Company{ID: "a1", Name: "Acme"},
	}))
	assert.Equal(t, "company_created  a1  Acme\n", out.String())
}

func TestWatchCmdRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := execute(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers")
}

func TestHelpExamplesUseDefinedFlags(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		for _, line := range strings.Split(c.Long, "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "companyctl ") {
				continue
			}
			for _, tok := range strings.Fields(line) {
				switch {
				case strings.HasPrefix(tok, "--"):
					name, _, _ := strings.Cut(strings.TrimPrefix(tok, "--"), "=")
					found := c.Flags().Lookup(name) != nil || c.InheritedFlags().Lookup(name) != nil
					assert.True(t, found, "%s: example uses unknown flag %s", c.Name(), tok)
				case strings.HasPrefix(tok, "-"):
					short := strings.TrimPrefix(tok, "-")
					found := c.Flags().ShorthandLookup(short) != nil || c.InheritedFlags().ShorthandLookup(short) != nil
					assert.True(t, found, "%s: example uses unknown flag %s", c.Name(), tok)
				}
			}
		}
	}
}
