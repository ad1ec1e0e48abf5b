package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// tradeBufferCap bounds the trade history kept for the REST endpoint.
const tradeBufferCap = 256

// Server exposes live market data from a running simulation over REST
// and WebSocket. All state is pushed through the Feed methods; the
// server never reads the matching engine directly.
type Server struct {
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger

	mu     sync.RWMutex
	lastL1 *L1Snapshot
	trades []TradeUpdate
}

// NewServer creates an API server with no market data yet.
func NewServer(log *zap.SugaredLogger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/l1", s.handleGetL1).Methods("GET")
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the WebSocket hub and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	handler := c.Handler(s.router)

	s.log.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, handler)
}

// BroadcastL1 records the latest top-of-book snapshot and pushes it to
// "l1" subscribers. Called from the simulation goroutine.
func (s *Server) BroadcastL1(l1 orderbook.L1) {
	snap := L1Snapshot{
		Symbol:       l1.Symbol,
		Step:         l1.Step,
		Time:         l1.Time,
		BestBidPrice: l1.BestBidPrice,
		BestAskPrice: l1.BestAskPrice,
		BestBidVol:   l1.BestBidVol,
		BestAskVol:   l1.BestAskVol,
		TotalBidVol:  l1.TotalBidVol,
		TotalAskVol:  l1.TotalAskVol,
	}

	s.mu.Lock()
	s.lastL1 = &snap
	s.mu.Unlock()

	push := snap
	push.Type = "l1"
	s.hub.BroadcastToChannel("l1", push)
}

// BroadcastTrade records a step's trade and pushes it to "trades"
// subscribers. Called from the simulation goroutine.
func (s *Server) BroadcastTrade(t orderbook.Trade) {
	update := TradeUpdate{
		VWAP: t.VWAP,
		Vol:  t.Vol,
		Step: t.Step,
		Time: t.Time,
	}

	s.mu.Lock()
	s.trades = append(s.trades, update)
	if len(s.trades) > tradeBufferCap {
		s.trades = s.trades[len(s.trades)-tradeBufferCap:]
	}
	s.mu.Unlock()

	push := update
	push.Type = "trade"
	s.hub.BroadcastToChannel("trades", push)
}

func (s *Server) handleGetL1(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap := s.lastL1
	s.mu.RUnlock()

	if snap == nil {
		respondError(w, http.StatusNotFound, "no data", "no snapshot published yet")
		return
	}
	respondJSON(w, *snap)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	trades := make([]TradeUpdate, len(s.trades))
	copy(trades, s.trades)
	s.mu.RUnlock()

	respondJSON(w, trades)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
