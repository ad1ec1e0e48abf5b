package api

// REST and WebSocket payload types for the live market-data surface.

// L1Snapshot is the top-of-book view served over REST and pushed to
// WebSocket subscribers of the "l1" channel.
type L1Snapshot struct {
	Type         string `json:"type,omitempty"` // "l1" on WebSocket pushes
	Symbol       string `json:"symbol"`
	Step         int64  `json:"step"`
	Time         string `json:"time"`
	BestBidPrice int64  `json:"bestBidPrice"`
	BestAskPrice int64  `json:"bestAskPrice"`
	BestBidVol   int64  `json:"bestBidVol"`
	BestAskVol   int64  `json:"bestAskVol"`
	TotalBidVol  int64  `json:"totalBidVol"`
	TotalAskVol  int64  `json:"totalAskVol"`
}

// TradeUpdate is one step's volume-weighted trade, pushed to the
// "trades" channel and listed by the trades endpoint.
type TradeUpdate struct {
	Type string  `json:"type,omitempty"` // "trade" on WebSocket pushes
	VWAP float64 `json:"vwap"`
	Vol  int64   `json:"vol"`
	Step int64   `json:"step"`
	Time string  `json:"time"`
}

// WSSubscribeRequest is sent by a client to manage its channel
// subscriptions ("l1", "trades").
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// ErrorResponse is returned for all REST errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
