package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	t.Setenv(BaseURLEnv, "")

	cases := map[string]string{
		"morvin-quernel.com":         ProductionBaseURL,
		"www.morvin-quernel.com":     ProductionBaseURL,
		"WWW.Morvin-Quernel.com":     ProductionBaseURL,
		"morvin-quernel.com:443":     ProductionBaseURL,
		"localhost":                  DevelopmentBaseURL,
		"localhost:3000":             DevelopmentBaseURL,
		"preview.morvin-quernel.com": DevelopmentBaseURL,
		"":                           DevelopmentBaseURL,
	}
	for host, want := range cases {
		require.Equal(t, want, ResolveBaseURL(host), host)
	}
}

func TestResolveBaseURL_EnvOverride(t *testing.T) {
	t.Setenv(BaseURLEnv, "https://staging.example.com/api/")
	require.Equal(t, "https://staging.example.com/api", ResolveBaseURL("morvin-quernel.com"))
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "API is running", "timestamp": "2026-01-01T00:00:00Z"})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL + "/api/").Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "API is running", resp.Message)
}

func TestClient_SubmitContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/contact", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Empty(t, r.Header.Get("Authorization"))

		var req ContactRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, ContactRequest{Name: "Alice", Email: "alice@example.com", Message: "Hello"}, req)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ContactResponse{Success: true, Message: "ok", SenderID: 1, MessageID: 1})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/api").SubmitContact(context.Background(), ContactRequest{Name: "Alice", Email: "alice@example.com", Message: "Hello"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.EqualValues(t, 1, resp.SenderID)
	require.EqualValues(t, 1, resp.MessageID)
}

func TestClient_SubmitContact_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Email invalide"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitContact(context.Background(), ContactRequest{Name: "a", Email: "b", Message: "c"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Email invalide", apiErr.Message)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Status(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Empty(t, apiErr.Message)
}

func TestClient_Me_SendsTokenAndClearsOn401(t *testing.T) {
	authorized := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Not authenticated"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(Me{ID: "1", Email: "owner@example.com", Roles: []string{"ROLE_USER"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	cred := NewCredentials("tok")

	me, err := c.Me(context.Background(), cred)
	require.NoError(t, err)
	require.Equal(t, "owner@example.com", me.Email)
	require.Equal(t, "tok", cred.Token())

	authorized = false
	_, err = c.Me(context.Background(), cred)
	require.True(t, IsUnauthorized(err))
	require.Empty(t, cred.Token())
}

func TestClient_Me_NilCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Me(context.Background(), nil)
	require.True(t, IsUnauthorized(err))
}
