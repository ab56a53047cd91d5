package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/jreit-finder/internal/selection"
	"github.com/wonny/jreit-finder/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

// LiveRequest is one slider change sent by the client.
// Omitted weights or top_n fall back to the defaults.
type LiveRequest struct {
	Weights *selection.ScoringWeights `json:"weights,omitempty"`
	TopN    *int                      `json:"top_n,omitempty"`
}

// LiveMessage is a frame sent back to the client
type LiveMessage struct {
	Type    string           `json:"type"` // "ranking" or "error"
	Ranking *RankingResponse `json:"ranking,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// LiveHandler re-ranks over a WebSocket as the client tunes the weights
type LiveHandler struct {
	reits    *ReitHandler
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewLiveHandler creates a new live ranking handler
func NewLiveHandler(reits *ReitHandler, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		reits: reits,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
}

// liveConn serializes writes from the read loop and the ping loop
type liveConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *liveConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *liveConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait))
}

// goingAway asks the client to close; its reply ends the read loop
func (c *liveConn) goingAway() {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// Serve upgrades the connection and answers every request with a ranking
// GET /ws/ranking
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	lc := &liveConn{conn: conn}
	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := r.Context()
	stop := make(chan struct{})
	defer close(stop)
	go h.pingLoop(ctx, stop, lc)

	h.logger.WithField("remote", r.RemoteAddr).Debug("Live ranking client connected")

	for {
		var req LiveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Warn("Live ranking connection closed unexpectedly")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := lc.writeJSON(h.answer(ctx, req)); err != nil {
			h.logger.WithError(err).Warn("Failed to write live ranking")
			return
		}
	}
}

func (h *LiveHandler) answer(ctx context.Context, req LiveRequest) LiveMessage {
	weights := selection.DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	topN := h.reits.defaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	resp, err := h.reits.rank(ctx, weights, topN)
	if err != nil {
		var reqErr *requestError
		if !errors.As(err, &reqErr) {
			h.logger.WithError(err).Error("Live ranking failed")
		}
		return LiveMessage{Type: "error", Error: err.Error()}
	}

	return LiveMessage{Type: "ranking", Ranking: resp}
}

// pingLoop keeps the connection alive until stop is closed, and says
// goodbye when the server context ends first
func (h *LiveHandler) pingLoop(ctx context.Context, stop <-chan struct{}, lc *liveConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			lc.goingAway()
			return
		case <-ticker.C:
			if err := lc.ping(); err != nil {
				return
			}
		}
	}
}
