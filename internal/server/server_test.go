package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-feed/internal/currency"
	"github.com/rxtech-lab/argo-feed/internal/indicator"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/marketdata/generator"
	"github.com/rxtech-lab/argo-feed/internal/marketdata/profile"
	"github.com/rxtech-lab/argo-feed/internal/metrics"
	"github.com/rxtech-lab/argo-feed/internal/orchestrator"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	orch *orchestrator.Orchestrator
	http *httptest.Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	log := logger.NewNopLogger()
	registry := prometheus.NewRegistry()

	rates, err := currency.NewTable(currency.DefaultRates())
	suite.Require().NoError(err)

	pipeline, err := indicator.NewDefaultPipeline(10, 14)
	suite.Require().NoError(err)

	suite.orch, err = orchestrator.New(orchestrator.Config{
		Source:   generator.NewRandomWalkGenerator(42),
		Profiles: profile.NewBook(profile.BuiltinProfiles(), profile.DefaultProfile, false, log),
		Rates:    rates,
		Pipeline: pipeline,
		Logger:   log,
		Metrics:  metrics.New(registry),
	})
	suite.Require().NoError(err)

	srv := New(suite.orch, Options{MetricsPath: "/metrics", Gatherer: registry, Logger: log})
	suite.http = httptest.NewServer(srv.Handler())
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.orch.Close()
	suite.http.Close()
}

func (suite *ServerTestSuite) do(method, path string, body string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, suite.http.URL+path, bytes.NewBufferString(body))
	suite.Require().NoError(err)

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	return resp, data
}

func (suite *ServerTestSuite) decodeError(data []byte) ErrorResponse {
	var body ErrorResponse
	suite.Require().NoError(json.Unmarshal(data, &body))

	return body
}

func (suite *ServerTestSuite) TestSeriesBeforeFilters() {
	resp, data := suite.do(http.MethodGet, "/api/v1/series", "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("application/json", resp.Header.Get("Content-Type"))

	var snap types.Snapshot
	suite.Require().NoError(json.Unmarshal(data, &snap))
	suite.Empty(snap.Points)
	suite.False(snap.Loading)

	resp, data = suite.do(http.MethodGet, "/api/v1/filters", "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.Equal(errors.ErrCodeDataNotFound, suite.decodeError(data).Code)
}

func (suite *ServerTestSuite) TestPutFiltersAndReadSeries() {
	resp, data := suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"EUR","timeframe":"1D","asset":"ETH"}`)
	suite.Require().Equal(http.StatusAccepted, resp.StatusCode, string(data))

	var accepted types.Snapshot
	suite.Require().NoError(json.Unmarshal(data, &accepted))
	suite.Equal(uint64(1), accepted.Generation)
	suite.NotEmpty(accepted.RequestID)

	suite.orch.Wait()

	resp, data = suite.do(http.MethodGet, "/api/v1/series", "")
	suite.Equal(http.StatusOK, resp.StatusCode)

	var points []map[string]any

	var raw struct {
		Loading bool            `json:"loading"`
		Points  json.RawMessage `json:"points"`
	}
	suite.Require().NoError(json.Unmarshal(data, &raw))
	suite.Require().NoError(json.Unmarshal(raw.Points, &points))

	suite.False(raw.Loading)
	suite.Len(points, 24)
	suite.Nil(points[0]["ma"])
	suite.Nil(points[0]["rsi"])
	suite.NotNil(points[9]["ma"])
	suite.NotNil(points[14]["rsi"])
	suite.Equal(3000.0, points[0]["originalPrice"])
	suite.Equal(2550.0, points[0]["price"])

	resp, data = suite.do(http.MethodGet, "/api/v1/filters", "")
	suite.Equal(http.StatusOK, resp.StatusCode)

	var filters types.FilterState
	suite.Require().NoError(json.Unmarshal(data, &filters))
	suite.Equal(types.AssetETH, filters.Asset)
}

func (suite *ServerTestSuite) TestPutFiltersRejectsBadInput() {
	resp, data := suite.do(http.MethodPut, "/api/v1/filters", `{"currency":`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(errors.ErrCodeInvalidParameter, suite.decodeError(data).Code)

	resp, _ = suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"USD","timeframe":"1D","asset":"BTC","extra":1}`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, data = suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"GBP","timeframe":"1D","asset":"BTC"}`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(errors.ErrCodeInvalidConfiguration, suite.decodeError(data).Code)

	resp, data = suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"USD","timeframe":"1M","asset":"BTC"}`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(errors.ErrCodeUnknownTimeframe, suite.decodeError(data).Code)

	resp, data = suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"USD","timeframe":"1D","asset":"SOL"}`)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(errors.ErrCodeUnknownAsset, suite.decodeError(data).Code)

	_, ok := suite.orch.CurrentFilters()
	suite.False(ok)
}

func (suite *ServerTestSuite) TestRefresh() {
	resp, data := suite.do(http.MethodPost, "/api/v1/refresh", "")
	suite.Equal(http.StatusConflict, resp.StatusCode)
	suite.Equal(errors.ErrCodeMissingParameter, suite.decodeError(data).Code)

	resp, _ = suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"USD","timeframe":"1D","asset":"BTC"}`)
	suite.Require().Equal(http.StatusAccepted, resp.StatusCode)

	resp, _ = suite.do(http.MethodPost, "/api/v1/refresh", "")
	suite.Equal(http.StatusAccepted, resp.StatusCode)

	suite.orch.Wait()
	suite.Equal(uint64(2), suite.orch.Generation())
}

func (suite *ServerTestSuite) TestMethodNotAllowed() {
	resp, _ := suite.do(http.MethodDelete, "/api/v1/series", "")
	suite.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}

func (suite *ServerTestSuite) TestSchema() {
	resp, data := suite.do(http.MethodGet, "/api/v1/schema", "")
	suite.Equal(http.StatusOK, resp.StatusCode)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal(data, &schema))
	suite.Contains(string(data), "originalPrice")
	suite.Contains(string(data), "null")
}

func (suite *ServerTestSuite) TestMetrics() {
	resp, _ := suite.do(http.MethodPut, "/api/v1/filters", `{"currency":"USD","timeframe":"1D","asset":"BTC"}`)
	suite.Require().Equal(http.StatusAccepted, resp.StatusCode)
	suite.orch.Wait()

	resp, data := suite.do(http.MethodGet, "/metrics", "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), "argofeed_raw_regenerations_total 1")
	suite.Contains(string(data), `argofeed_derivations_total{trigger="raw"} 1`)
}

func (suite *ServerTestSuite) TestStream() {
	url := "ws" + strings.TrimPrefix(suite.http.URL, "http") + "/api/v1/stream"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Require().NoError(suite.orch.OnFilterChange(context.Background(), types.DefaultFilterState()))

	var last types.Snapshot

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	for !(len(last.Points) == 24 && !last.Loading) {
		var snap types.Snapshot
		suite.Require().NoError(conn.ReadJSON(&snap))
		suite.GreaterOrEqual(snap.Generation, last.Generation)
		last = snap
	}

	suite.Equal(uint64(1), last.Generation)

	suite.Require().NoError(suite.orch.OnFilterChange(context.Background(), types.FilterState{
		Currency:  types.CurrencyEUR,
		Timeframe: types.TimeframeOneDay,
		Asset:     types.AssetBTC,
	}))

	var eur types.Snapshot
	suite.Require().NoError(conn.ReadJSON(&eur))
	suite.Equal(types.CurrencyEUR, eur.Filters.Currency)
	suite.Equal(uint64(1), eur.Generation)
	suite.Len(eur.Points, 24)
}
