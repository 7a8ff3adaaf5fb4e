package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/config"
)

func TestCompleteReturnsModelText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be decisive", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "DECISION: CONTINUE"}}},
		})
	}))
	defer srv.Close()

	cfg := config.AdvisorConfig{BaseURL: srv.URL, Model: "test-model"}
	cfg.SetDefaults()
	a := New(cfg)

	out, err := a.Complete(context.Background(), "be decisive", "situation packet")
	require.NoError(t, err)
	assert.Equal(t, "DECISION: CONTINUE", out)
}

func TestCompleteWithoutBaseURLFailsFast(t *testing.T) {
	a := New(config.AdvisorConfig{})

	_, err := a.Complete(context.Background(), "sys", "user")
	assert.Error(t, err)
}

func TestCompleteRetriesOn503(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Content: "ok"}}},
		})
	}))
	defer srv.Close()

	cfg := config.AdvisorConfig{BaseURL: srv.URL}
	cfg.SetDefaults()
	a := New(cfg)

	out, err := a.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, attempts)
}
