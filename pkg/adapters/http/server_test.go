package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/internal/runtime"
	stilehttp "github.com/aretw0/stile/pkg/adapters/http"
	"github.com/aretw0/stile/pkg/adapters/memory"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
	"github.com/aretw0/stile/pkg/session"
)

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog(
		domain.Step{ID: "userType", Kind: domain.KindChoice, Options: []string{"customer", "contractor"}, Required: true},
		domain.Step{ID: "email", Kind: domain.KindEmail, Required: true, Check: domain.CheckEmail},
		domain.Step{ID: "terms", Kind: domain.KindCheckbox, Required: true},
	)
	require.NoError(t, err)
	return catalog
}

type stubSuggester struct{}

func (stubSuggester) Suggest(ctx context.Context, query string) ([]domain.AddressSuggestion, error) {
	return []domain.AddressSuggestion{{Formatted: "221B Baker St, London"}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	engine := runtime.NewEngine(testCatalog(t),
		runtime.WithChecker(ports.CheckerFunc(func(ctx context.Context, name, value string) (bool, error) {
			return value != "taken@example.com", nil
		})),
		runtime.WithSubmitter(ports.SubmitterFunc(func(ctx context.Context, payload map[string]any) (*domain.Record, error) {
			return &domain.Record{ID: "rec-001", Fields: payload}, nil
		})),
	)

	sessions := session.NewManager(memory.NewStore())
	handler := stilehttp.NewHandler(engine, sessions, stilehttp.WithSuggester(stubSuggester{}))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

type sessionReply struct {
	SessionID   string           `json:"session_id"`
	View        *domain.StepView `json:"view"`
	Outcome     *domain.Outcome  `json:"outcome"`
	Values      map[string]any   `json:"values"`
	Status      domain.Status    `json:"status"`
	Submitted   bool             `json:"submitted"`
	SubmitError string           `json:"submit_error"`
	Record      *domain.Record   `json:"record"`
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, sessionReply) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var reply sessionReply
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&reply)
	}
	return resp, reply
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, reply := doJSON(t, "POST", srv.URL+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, reply.SessionID)
	return reply.SessionID
}

func answer(t *testing.T, srv *httptest.Server, id string, input any) (*http.Response, sessionReply) {
	t.Helper()
	return doJSON(t, "POST", fmt.Sprintf("%s/sessions/%s/answer", srv.URL, id), map[string]any{"input": input})
}

func TestServer_CreateSession(t *testing.T) {
	srv := newTestServer(t)

	resp, reply := doJSON(t, "POST", srv.URL+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, reply.View)
	assert.Equal(t, "userType", reply.View.Step.ID)
	assert.Equal(t, domain.StatusActive, reply.Status)
	assert.True(t, reply.View.First)
}

func TestServer_CreateSessionResumes(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	resp, reply := answer(t, srv, id, "customer")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "email", reply.View.Step.ID)

	// Creating with the same ID picks up where the session left off.
	resp, reply = doJSON(t, "POST", srv.URL+"/sessions", map[string]any{"session_id": id})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, id, reply.SessionID)
	assert.Equal(t, "email", reply.View.Step.ID)
	assert.Equal(t, "customer", reply.Values["userType"])
}

func TestServer_AnswerValidation(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	// Empty required choice stays put with a failure outcome.
	resp, reply := answer(t, srv, id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, reply.Outcome)
	assert.False(t, reply.Outcome.Valid)
	assert.Equal(t, domain.CodeRequired, reply.Outcome.Code)
	assert.Equal(t, "userType", reply.View.Step.ID)

	// Valid input advances.
	_, reply = answer(t, srv, id, "contractor")
	require.NotNil(t, reply.Outcome)
	assert.True(t, reply.Outcome.Valid)
	assert.Equal(t, "email", reply.View.Step.ID)
}

func TestServer_AnswerRemoteRejection(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	answer(t, srv, id, "customer")
	_, reply := answer(t, srv, id, "taken@example.com")

	require.NotNil(t, reply.Outcome)
	assert.Equal(t, domain.CodeRejected, reply.Outcome.Code)
	assert.Equal(t, "email", reply.View.Step.ID)
	// The rejected value stays editable.
	assert.Equal(t, "taken@example.com", reply.Values["email"])
}

func TestServer_BackAndJump(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	answer(t, srv, id, "customer")
	answer(t, srv, id, "ada@example.com")

	resp, reply := doJSON(t, "POST", fmt.Sprintf("%s/sessions/%s/back", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "email", reply.View.Step.ID)

	resp, reply = doJSON(t, "POST", fmt.Sprintf("%s/sessions/%s/jump", srv.URL, id), map[string]any{"step_id": "userType"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "userType", reply.View.Step.ID)

	resp, _ = doJSON(t, "POST", fmt.Sprintf("%s/sessions/%s/jump", srv.URL, id), map[string]any{"step_id": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SetValue(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	resp, reply := doJSON(t, "PUT", fmt.Sprintf("%s/sessions/%s/values/email", srv.URL, id),
		map[string]any{"value": "ada@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada@example.com", reply.Values["email"])
	// Writing a value does not navigate.
	assert.Equal(t, "userType", reply.View.Step.ID)
}

func TestServer_SubmitFlow(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	answer(t, srv, id, "customer")
	answer(t, srv, id, "ada@example.com")
	resp, reply := answer(t, srv, id, true)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, reply.Submitted)
	assert.Equal(t, domain.StatusSubmitted, reply.Status)
	require.NotNil(t, reply.Record)
	assert.Equal(t, "rec-001", reply.Record.ID)
	assert.Nil(t, reply.View)

	// A finished session rejects further navigation.
	resp, _ = answer(t, srv, id, "anything")
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestServer_SessionNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "GET", srv.URL+"/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = answer(t, srv, "missing", "customer")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListAndDelete(t *testing.T) {
	srv := newTestServer(t)
	a := createSession(t, srv)
	b := createSession(t, srv)

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	var listed struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.ElementsMatch(t, []string{a, b}, listed.Sessions)

	resp, _ = doJSON(t, "DELETE", srv.URL+"/sessions/"+a, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, "GET", srv.URL+"/sessions/"+a, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Suggest(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/addresses/suggest?q=baker")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Suggestions []domain.AddressSuggestion `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "221B Baker St, London", out.Suggestions[0].Formatted)

	resp, err = http.Get(srv.URL + "/addresses/suggest")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest("OPTIONS", srv.URL+"/sessions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
