package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/screening"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the router middleware
	},
}

// WSMessage is one frame of the screener stream
type WSMessage struct {
	Type    string      `json:"type"` // progress, result, error
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Stream runs a screen and pushes per-symbol progress before the result
// GET /ws/screener?sector=Technology&limit=10&investmentAmount=10000
func (h *ScreenerHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, err := screenRequestFromQuery(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	// Cancel the screen when the client goes away
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	var mu sync.Mutex
	send := func(msg WSMessage) {
		mu.Lock()
		defer mu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.WithError(err).Debug("WebSocket write failed")
		}
	}

	result, err := h.screener.Screen(ctx, req.toService(), func(p screening.Progress) {
		send(WSMessage{Type: "progress", Payload: p})
	})
	if err != nil {
		h.logger.WithError(err).WithField("sector", req.Sector).Warn("Streamed screen failed")
		send(WSMessage{Type: "error", Error: err.Error()})
	} else {
		send(WSMessage{Type: "result", Payload: result})
	}

	mu.Lock()
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	mu.Unlock()
}

func screenRequestFromQuery(r *http.Request) (ScreenRequest, error) {
	q := r.URL.Query()
	req := ScreenRequest{Sector: q.Get("sector")}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("limit must be an integer: %w", contracts.ErrInvalidArgument)
		}
		req.Limit = n
	}
	if v := q.Get("investmentAmount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("investmentAmount must be a number: %w", contracts.ErrInvalidArgument)
		}
		req.InvestmentAmount = f
	}
	if v := q.Get("concentrationLimit"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("concentrationLimit must be a number: %w", contracts.ErrInvalidArgument)
		}
		req.ConcentrationLimit = &f
	}

	return req, validateStruct(&req)
}
