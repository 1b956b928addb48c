package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-core/internal/db"
	"garden-core/internal/ingest"
	"garden-core/internal/logging"
	"garden-core/internal/models"
)

type stubIngestStore struct {
	device models.Device
}

func (s *stubIngestStore) ResolveOrCreateDevice(_ context.Context, _, _ string, _ int) (uuid.UUID, error) {
	return s.device.ID, nil
}

func (s *stubIngestStore) GetDevice(_ context.Context, _ uuid.UUID) (models.Device, error) {
	return s.device, nil
}

func (s *stubIngestStore) SoilTypeForDevice(_ context.Context, _ uuid.UUID) (models.SoilType, error) {
	return models.SoilType{}, db.ErrNotFound
}

func (s *stubIngestStore) LatestReading(_ context.Context, _ uuid.UUID, _ string) (models.Reading, error) {
	return models.Reading{}, db.ErrNotFound
}

func (s *stubIngestStore) InsertReadingsBatch(_ context.Context, _ uuid.UUID, items []models.ReadingItem, _ time.Time) (int, error) {
	return len(items), nil
}

type noopAlerts struct{}

func (noopAlerts) Evaluate(_ context.Context, _ uuid.UUID, _ string, _ models.MetricKind, _, _ float64, _ time.Time) int {
	return 0
}

type noopWatering struct{}

func (noopWatering) Evaluate(_ context.Context, _ uuid.UUID, _ float64, _ time.Time, _ float64, _ time.Time) {
}

// detailBody is the error envelope ingestion clients parse.
type detailBody struct {
	Detail []struct {
		Loc  []interface{} `json:"loc"`
		Msg  string        `json:"msg"`
		Type string        `json:"type"`
	} `json:"detail"`
}

func newReadingsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)

	store := &stubIngestStore{device: models.Device{ID: uuid.New(), ResolutionBits: 10}}
	h := &Handler{
		ingest: ingest.New(store, noopAlerts{}, noopWatering{}, logger, 24*time.Hour),
		logger: logger,
	}

	r := gin.New()
	r.POST("/api/readings", h.CreateReadings)
	return r
}

func postReadings(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, detailBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/readings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var detail detailBody
	if w.Code == http.StatusUnprocessableEntity {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	}
	return w, detail
}

func TestCreateReadingsEmptyBatchReturnsDetail(t *testing.T) {
	r := newReadingsRouter(t)

	body := `{"deviceAddress":"AA:BB:CC:DD:EE:FF","readings":[],"recordedAt":` +
		strconv.FormatInt(time.Now().Unix(), 10) + `}`
	w, detail := postReadings(t, r, body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, detail.Detail, 1)
	assert.Equal(t, []interface{}{"body", "readings"}, detail.Detail[0].Loc)
	assert.Equal(t, "value_error", detail.Detail[0].Type)
}

func TestCreateReadingsMissingRecordedAtReturnsDetail(t *testing.T) {
	r := newReadingsRouter(t)

	w, detail := postReadings(t, r,
		`{"deviceAddress":"AA:BB:CC:DD:EE:FF","readings":[{"kind":"temperature","value":21.5}]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, detail.Detail, 1)
	assert.Equal(t, []interface{}{"body", "recordedAt"}, detail.Detail[0].Loc)
	assert.Equal(t, "value_error.missing", detail.Detail[0].Type)
}

func TestCreateReadingsMalformedBodyReturnsDetail(t *testing.T) {
	r := newReadingsRouter(t)

	w, detail := postReadings(t, r, `{"deviceAddress":`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, detail.Detail, 1)
	assert.Equal(t, []interface{}{"body"}, detail.Detail[0].Loc)
	assert.Equal(t, "value_error.jsondecode", detail.Detail[0].Type)
}

func TestCreateReadingsAcceptsValidBatch(t *testing.T) {
	r := newReadingsRouter(t)

	body := `{"deviceAddress":"AA:BB:CC:DD:EE:FF","readings":[{"kind":"temperature","value":21.5}],"recordedAt":` +
		strconv.FormatInt(time.Now().Unix(), 10) + `}`
	w, _ := postReadings(t, r, body)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.ReadingsCreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Inserted)
}
