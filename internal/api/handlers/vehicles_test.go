package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/adapter"
	"fleet-dispatch-engine/internal/adapters/advisor"
	"fleet-dispatch-engine/internal/api/dto"
	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/engine"
	"fleet-dispatch-engine/internal/geo"
	"fleet-dispatch-engine/internal/matcher"
	"fleet-dispatch-engine/internal/motion"
	"fleet-dispatch-engine/internal/observer"
	"fleet-dispatch-engine/internal/ports"
	"fleet-dispatch-engine/internal/predictor"
	"fleet-dispatch-engine/internal/store"
)

type stubRoutes struct{}

func (stubRoutes) Route(ctx context.Context, start, end domain.Location) (ports.RouteResult, error) {
	return ports.RouteResult{
		Polyline:   geo.SynthesizePolyline(start, end, 5, 20),
		DistanceKm: geo.DistanceKm(start, end),
	}, nil
}

type emptySource struct{}

func (emptySource) Generate(ctx context.Context, snapshot domain.Snapshot) ([]ports.Signal, error) {
	return nil, nil
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	s := store.New(100, nil)
	cfg := config.Default()

	mo := motion.New(s, stubRoutes{}, cfg.Motion, nil)
	pred := predictor.New(cfg.Predictor, cfg.Motion)
	obsAgent := observer.New(emptySource{}, cfg.Observer, nil)
	ma := matcher.New(s, stubRoutes{}, &advisor.MockAdvisor{}, cfg.Matcher, nil)
	ad := adapter.New(s, &advisor.MockAdvisor{}, cfg.Adapter, cfg.Matcher, nil)

	return engine.New(s, mo, pred, obsAgent, ma, ad, cfg, rand.NewSource(1), nil)
}

func TestVehicleHandlerListReturnsFleet(t *testing.T) {
	eng := testEngine(t)
	_, _, err := eng.Initialize(3, 0)
	require.NoError(t, err)

	h := &VehicleHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body dto.ListVehicleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Vehicles, 3)
}

func TestVehicleHandlerListFiltersByStatus(t *testing.T) {
	eng := testEngine(t)
	_, _, err := eng.Initialize(2, 0)
	require.NoError(t, err)

	h := &VehicleHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodGet, "/vehicles?status=idle", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	var body dto.ListVehicleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, v := range body.Vehicles {
		assert.Equal(t, "idle", v.Status)
	}
}

func TestVehicleHandlerRejectsNonGet(t *testing.T) {
	eng := testEngine(t)
	h := &VehicleHandler{Engine: eng}
	req := httptest.NewRequest(http.MethodPost, "/vehicles", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}
