package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/filechat/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return New(Config{
		URL:       url,
		APIKey:    "sk-test",
		Model:     "gpt-3.5-turbo",
		MaxTokens: 500,
	}, nil)
}

func TestClient_Complete_Success(t *testing.T) {
	var got models.CompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"You have 2 files."}}]}`))
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL).Complete(context.Background(), "system prompt", "how many files?")
	require.NoError(t, err)

	assert.Equal(t, "You have 2 files.", reply)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.Equal(t, []models.CompletionMessage{
		{Role: "system", Content: "system prompt"},
		{Role: "user", Content: "how many files?"},
	}, got.Messages)
}

func TestClient_Complete_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantStatus: 500},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantStatus: 401},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantStatus: 200},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), "s", "u")

			var extErr *ExternalServiceError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.wantStatus, extErr.StatusCode)
			assert.NotEmpty(t, extErr.Error())
		})
	}
}

func TestClient_Complete_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Complete(context.Background(), "s", "u")

	var extErr *ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Zero(t, extErr.StatusCode)
	assert.Error(t, errors.Unwrap(err))
}

func TestClient_Complete_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).Complete(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
}
