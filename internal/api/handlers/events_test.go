package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/api/dto"
	"fleet-dispatch-engine/internal/domain"
)

func TestEventHandlerListRespectsLimit(t *testing.T) {
	eng := testEngine(t)
	eng.State()

	h := &EventHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/events?limit=1", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body dto.ListEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.LessOrEqual(t, len(body.Events), 1)
}

func TestEventHandlerListRejectsNegativeLimit(t *testing.T) {
	eng := testEngine(t)
	h := &EventHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/events?limit=-1", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerListRejectsNonNumericLimit(t *testing.T) {
	eng := testEngine(t)
	h := &EventHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/events?limit=abc", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerListFiltersByType(t *testing.T) {
	eng := testEngine(t)
	_, _, err := eng.Initialize(1, 1)
	require.NoError(t, err)

	h := &EventHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/events?event_type="+string(domain.EventFuelLow), nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body dto.ListEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, e := range body.Events {
		assert.Equal(t, string(domain.EventFuelLow), e.Type)
	}
}
