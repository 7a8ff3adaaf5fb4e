package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/api/dto"
)

func TestLoadHandlerListReturnsAllLoads(t *testing.T) {
	eng := testEngine(t)
	_, _, err := eng.Initialize(0, 4)
	require.NoError(t, err)

	h := &LoadHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/loads", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body dto.ListLoadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Loads, 4)
}

func TestLoadHandlerListFiltersByStatus(t *testing.T) {
	eng := testEngine(t)
	_, _, err := eng.Initialize(0, 3)
	require.NoError(t, err)

	h := &LoadHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/loads?status=available", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	var body dto.ListLoadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, l := range body.Loads {
		assert.Equal(t, "available", l.Status)
	}
}

func TestLoadHandlerRejectsNonGet(t *testing.T) {
	eng := testEngine(t)
	h := &LoadHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodDelete, "/loads", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLoadHandlerCancelMarksLoadCancelled(t *testing.T) {
	eng := testEngine(t)
	_, _, err := eng.Initialize(0, 1)
	require.NoError(t, err)
	var loadID string
	for id := range eng.State().Loads {
		loadID = id
	}

	h := &LoadHandler{Engine: eng}
	body, _ := json.Marshal(dto.CancelLoadRequest{LoadID: loadID})
	req := httptest.NewRequest(http.MethodPost, "/cancel-load", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Cancel(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CancelLoadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
}

func TestLoadHandlerCancelReturnsNotFoundForUnknownLoad(t *testing.T) {
	eng := testEngine(t)
	h := &LoadHandler{Engine: eng}
	body, _ := json.Marshal(dto.CancelLoadRequest{LoadID: "load-missing"})
	req := httptest.NewRequest(http.MethodPost, "/cancel-load", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Cancel(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
