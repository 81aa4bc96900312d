package http

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
)

// WSHandler streams leaderboard snapshots over a websocket so the standings
// view does not have to poll.
type WSHandler struct {
	leaderboard *app.LeaderboardService
	hub         *app.LeaderboardHub
	upgrader    websocket.Upgrader
}

func NewWSHandler(leaderboard *app.LeaderboardService, hub *app.LeaderboardHub) *WSHandler {
	return &WSHandler{
		leaderboard: leaderboard,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string             `json:"type"`
	Payload domain.Leaderboard `json:"payload"`
}

// ServeWS upgrades the request, sends the current leaderboard, then relays
// every broadcast until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	// Subscribe before the initial snapshot so updates arriving in between
	// are queued rather than lost.
	updates, cancel := h.hub.Subscribe()
	defer cancel()

	initial, err := h.leaderboard.Global(r.Context())
	if err != nil {
		logrus.WithError(err).Warn("ws initial snapshot failed")
		return
	}
	if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: initial}); err != nil {
		return
	}

	// Reader goroutine: its only job is to detect client disconnects.
	readerCtx, readerDone := context.WithCancel(r.Context())
	go func() {
		defer readerDone()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: update}); err != nil {
				logrus.WithError(err).Debug("ws write error")
				return
			}
		case <-readerCtx.Done():
			return
		}
	}
}
