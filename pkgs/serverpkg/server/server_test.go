package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventService struct {
	mock.Mock
}

func (m *mockEventService) Ingest(ctx context.Context, req services.IngestRequest) (*model.OnChainEvent, error) {
	args := m.Called(ctx, req)
	event, _ := args.Get(0).(*model.OnChainEvent)
	return event, args.Error(1)
}

func (m *mockEventService) Search(ctx context.Context, req services.SearchRequest) ([]model.SearchHit, error) {
	args := m.Called(ctx, req)
	hits, _ := args.Get(0).([]model.SearchHit)
	return hits, args.Error(1)
}

func (m *mockEventService) SearchByVector(ctx context.Context, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error) {
	args := m.Called(ctx, vec, opts)
	hits, _ := args.Get(0).([]model.SearchHit)
	return hits, args.Error(1)
}

func (m *mockEventService) Insights(ctx context.Context, limit int) (*model.Insights, error) {
	args := m.Called(ctx, limit)
	insights, _ := args.Get(0).(*model.Insights)
	return insights, args.Error(1)
}

func (m *mockEventService) Stats(ctx context.Context) (*model.Stats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*model.Stats)
	return stats, args.Error(1)
}

////////////////////////////////////////////////////////////////////////////////

func newTestServer(t *testing.T) (*httptest.Server, *mockEventService) {
	svc := &mockEventService{}
	ts := httptest.NewServer(New("0", svc).Handler())
	t.Cleanup(ts.Close)
	return ts, svc
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Health(t *testing.T) {
	ts, svc := newTestServer(t)
	svc.On("Stats", mock.Anything).Return(&model.Stats{TotalEvents: 2, ByChain: map[string]int{"bnb": 2}}, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body serverdto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.TotalEvents)
}

func TestServer_Ingest(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ts, svc := newTestServer(t)
		value := 12.5
		svc.On("Ingest", mock.Anything, mock.MatchedBy(func(req services.IngestRequest) bool {
			return req.TxHash == "0x1" && req.Payload == "nft mint" && req.Value != nil && *req.Value == value
		})).Return(&model.OnChainEvent{ID: 1, TxHash: "0x1", Payload: "nft mint", Chain: "bnb", Tags: "nft,mint"}, nil)

		resp := post(t, ts.URL+"/data/ingest", serverdto.IngestRequest{TxHash: "0x1", Payload: "nft mint", Value: &value})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var event serverdto.Event
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&event))
		assert.Equal(t, int64(1), event.ID)
		assert.Equal(t, []string{"nft", "mint"}, event.Tags)
		svc.AssertExpectations(t)
	})

	t.Run("invalid argument is a bad request", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("Ingest", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: tx_hash is required", errs.ErrInvalidArgument))

		resp := post(t, ts.URL+"/data/ingest", serverdto.IngestRequest{Payload: "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts, svc := newTestServer(t)

		resp, err := http.Post(ts.URL+"/data/ingest", "application/json", bytes.NewReader([]byte(`{"tx_hash":`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})
}

func TestServer_Search(t *testing.T) {
	t.Run("text query", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("Search", mock.Anything, services.SearchRequest{Query: "nft volume", TopK: 3, Chain: "bnb", Probes: 10}).
			Return([]model.SearchHit{{Event: model.OnChainEvent{TxHash: "0x1"}, Score: 0.9}}, nil)

		resp := post(t, ts.URL+"/data/search", serverdto.SearchRequest{Query: "nft volume", TopK: 3, Chain: "bnb", Probes: 10})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body serverdto.SearchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Results, 1)
		assert.Equal(t, 0.9, body.Results[0].Score)
		svc.AssertExpectations(t)
	})

	t.Run("vector query", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("SearchByVector", mock.Anything, []float32{1, 0}, model.SearchOptions{TopK: 2}).
			Return([]model.SearchHit{}, nil)

		resp := post(t, ts.URL+"/data/search", serverdto.SearchRequest{Vector: []float32{1, 0}, TopK: 2})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("dimension mismatch is a bad request", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("SearchByVector", mock.Anything, mock.Anything, mock.Anything).Return(nil, errs.NewDimensionMismatch(1, 2))

		resp := post(t, ts.URL+"/data/search", serverdto.SearchRequest{Vector: []float32{1}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("zero vector is a bad request", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("SearchByVector", mock.Anything, []float32{0, 0}, mock.Anything).
			Return(nil, fmt.Errorf("%w: vector must not be all zeros", errs.ErrInvalidArgument))

		resp := post(t, ts.URL+"/data/search", serverdto.SearchRequest{Vector: []float32{0, 0}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body serverdto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.Error, "all zeros")
	})

	t.Run("unencodable result is a server error", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("SearchByVector", mock.Anything, mock.Anything, mock.Anything).
			Return([]model.SearchHit{{Event: model.OnChainEvent{TxHash: "0x1"}, Score: math.NaN()}}, nil)

		resp := post(t, ts.URL+"/data/search", serverdto.SearchRequest{Vector: []float32{1, 0}})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var body serverdto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Error)
	})

	t.Run("provider failure is a bad gateway", func(t *testing.T) {
		ts, svc := newTestServer(t)
		svc.On("Search", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("failed to embed query: %w", errs.ErrTransport))

		resp := post(t, ts.URL+"/data/search", serverdto.SearchRequest{Query: "q"})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestServer_Insights(t *testing.T) {
	ts, svc := newTestServer(t)
	svc.On("Insights", mock.Anything, 10).Return(&model.Insights{
		TotalEvents: 3,
		TopTags:     []model.TagCount{{Tag: "a", Count: 2}},
		TopTerms:    []model.TermCount{},
		TotalValue:  3,
	}, nil)
	svc.On("Insights", mock.Anything, 0).Return(&model.Insights{TopTags: []model.TagCount{}, TopTerms: []model.TermCount{}}, nil)

	resp, err := http.Get(ts.URL + "/data/insights?limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body model.Insights
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3.0, body.TotalValue)
	assert.Equal(t, []model.TagCount{{Tag: "a", Count: 2}}, body.TopTags)

	resp2, err := http.Get(ts.URL + "/data/insights")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(ts.URL + "/data/insights?limit=abc")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts, svc := newTestServer(t)
	svc.On("Ingest", mock.Anything, mock.Anything).Return(&model.OnChainEvent{ID: 1, TxHash: "0x1", Chain: "eth"}, nil)

	post(t, ts.URL+"/data/ingest", serverdto.IngestRequest{TxHash: "0x1", Payload: "p", Chain: "eth"})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `xchain_events_ingested_total{chain="eth"} 1`)
	assert.Contains(t, string(data), `xchain_http_requests_total{code="200",route="/data/ingest"} 1`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errs.ErrInvalidArgument))
	assert.Equal(t, http.StatusNotFound, statusFor(errs.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(errs.ErrDuplicateKey))
	assert.Equal(t, http.StatusBadGateway, statusFor(errs.ErrTransport))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errs.ErrConfiguration))
}
