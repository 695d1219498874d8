package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stile/pkg/adapters/backend"
	"github.com/aretw0/stile/pkg/ports"
)

func TestClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checks/email", r.URL.Path)
		valid := r.URL.Query().Get("value") != "taken@example.com"
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": valid})
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL)
	ctx := context.Background()

	ok, err := client.Check(ctx, "email", "free@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Check(ctx, "email", "taken@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("server error is a transport failure, not a rejection", func(t *testing.T) {
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer broken.Close()

		_, err := backend.NewClient(broken.URL).Check(ctx, "email", "a@b.co")
		assert.Error(t, err)
	})
}

func TestClient_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/addresses/suggest", r.URL.Path)
		assert.Equal(t, "123 main", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"suggestions":[
			{"street":"123 Main St","city":"Oakland","state":"CA","postal_code":"94607","formatted":"123 Main St, Oakland, CA 94607"}
		]}`))
	}))
	defer srv.Close()

	suggestions, err := backend.NewClient(srv.URL).Suggest(context.Background(), "123 main")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Oakland", suggestions[0].City)
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "license.jpg", header.Filename)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/u/abc123"})
	}))
	defer srv.Close()

	url, err := backend.NewClient(srv.URL).Upload(context.Background(), "license.jpg", []byte("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/u/abc123", url)
}

func TestClient_Submit(t *testing.T) {
	t.Run("success returns the created record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/signups", r.URL.Path)

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "ada@example.com", payload["email"])

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "user-42"})
		}))
		defer srv.Close()

		record, err := backend.NewClient(srv.URL).Submit(context.Background(), map[string]any{
			"email": "ada@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "user-42", record.ID)
	})

	t.Run("failure surfaces the server message verbatim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "An account with this email already exists"})
		}))
		defer srv.Close()

		_, err := backend.NewClient(srv.URL).Submit(context.Background(), map[string]any{})
		require.Error(t, err)
		assert.Equal(t, "An account with this email already exists", err.Error())
	})
}

var (
	_ ports.Checker   = (*backend.Client)(nil)
	_ ports.Suggester = (*backend.Client)(nil)
	_ ports.Uploader  = (*backend.Client)(nil)
	_ ports.Submitter = (*backend.Client)(nil)
)
