package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
	"github.com/Ferrari1996gk/exchange-lob/pkg/sim"
)

var _ sim.Feed = (*Server)(nil)

func newTestServer() *Server {
	return NewServer(zap.NewNop().Sugar())
}

func TestGetL1BeforeAnyData(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest("GET", "/api/v1/l1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetL1ReturnsLatestSnapshot(t *testing.T) {
	s := newTestServer()

	s.BroadcastL1(orderbook.L1{
		Symbol:       "SIM",
		Step:         10,
		Time:         "04-Jan-2021 09:00:00.250",
		BestBidPrice: 9999,
		BestAskPrice: 10001,
		BestBidVol:   5,
		BestAskVol:   7,
		TotalBidVol:  12,
		TotalAskVol:  20,
	})
	s.BroadcastL1(orderbook.L1{
		Symbol:       "SIM",
		Step:         11,
		Time:         "04-Jan-2021 09:00:00.275",
		BestBidPrice: 10000,
		BestAskPrice: 10001,
		BestBidVol:   3,
		BestAskVol:   7,
		TotalBidVol:  10,
		TotalAskVol:  20,
	})

	req := httptest.NewRequest("GET", "/api/v1/l1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got L1Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(11), got.Step)
	assert.Equal(t, int64(10000), got.BestBidPrice)
	assert.Equal(t, "SIM", got.Symbol)
}

func TestGetTradesReturnsPushedTrades(t *testing.T) {
	s := newTestServer()

	s.BroadcastTrade(orderbook.Trade{VWAP: 100.25, Vol: 4, Step: 5, Time: "04-Jan-2021 09:00:00.125"})
	s.BroadcastTrade(orderbook.Trade{VWAP: 100.50, Vol: 2, Step: 8, Time: "04-Jan-2021 09:00:00.200"})

	req := httptest.NewRequest("GET", "/api/v1/trades", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []TradeUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 100.25, got[0].VWAP)
	assert.Equal(t, int64(8), got[1].Step)
}

func TestTradeBufferIsBounded(t *testing.T) {
	s := newTestServer()

	for i := 0; i < tradeBufferCap+50; i++ {
		s.BroadcastTrade(orderbook.Trade{VWAP: 100, Vol: 1, Step: int64(i)})
	}

	req := httptest.NewRequest("GET", "/api/v1/trades", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var got []TradeUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, tradeBufferCap)
	assert.Equal(t, int64(50), got[0].Step)
}

func TestSubscriptionControlMessages(t *testing.T) {
	s := newTestServer()
	c := &Client{
		hub:           s.hub,
		send:          make(chan []byte, 4),
		id:            "test",
		subscriptions: make(map[string]bool),
	}
	s.hub.clients[c] = true

	c.handleControl([]byte(`{"op":"subscribe","channels":["l1","trades"]}`))
	assert.True(t, c.IsSubscribed("l1"))
	assert.True(t, c.IsSubscribed("trades"))

	c.handleControl([]byte(`{"op":"unsubscribe","channels":["l1"]}`))
	assert.False(t, c.IsSubscribed("l1"))

	// Malformed control frames change nothing.
	c.handleControl([]byte(`not json`))
	assert.True(t, c.IsSubscribed("trades"))

	s.hub.BroadcastToChannel("l1", map[string]string{"type": "l1"})
	s.hub.BroadcastToChannel("trades", map[string]string{"type": "trade"})
	require.Len(t, c.send, 1)
	assert.Contains(t, string(<-c.send), "trade")
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
