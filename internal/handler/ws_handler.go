package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/model"
	ws "github.com/stemsi/ascent-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// Subscriber is implemented by *redis.Client.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// ExpeditionMapper is the part of the dashboard the stream needs for its snapshot.
type ExpeditionMapper interface {
	ExpeditionMap(ctx context.Context) ([]model.ExpeditionMarker, error)
}

// WSHandler streams progress events to admin dashboards.
type WSHandler struct {
	subscriber Subscriber
	dashboard  ExpeditionMapper
	channel    string
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(subscriber Subscriber, dashboard ExpeditionMapper, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		subscriber: subscriber,
		dashboard:  dashboard,
		channel:    config.Broadcast.Channel,
		log:        logger.Component(log, "ws_handler"),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// ExpeditionStream godoc
// WS /ws/v1/admin/expeditions?token=...
// Sends a snapshot of the expedition map, then forwards every broadcast event.
func (h *WSHandler) ExpeditionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.subscriber.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	feed := make(chan []byte, 64)
	go relay(ctx, pubsub.Channel(), feed)

	h.serve(ctx, conn, feed)
}

// relay copies broker payloads onto feed until ctx ends or the subscription closes.
func relay(ctx context.Context, in <-chan *redis.Message, feed chan<- []byte) {
	defer close(feed)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case feed <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}
}

// serve owns all writes on conn. A separate goroutine reads client actions
// and hands replies back through a buffered channel.
func (h *WSHandler) serve(ctx context.Context, conn *websocket.Conn, feed <-chan []byte) {
	markers, err := h.dashboard.ExpeditionMap(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Expedition snapshot failed")
		markers = []model.ExpeditionMarker{}
	}
	if err := ws.WriteTyped(conn, ws.SnapshotResponse{
		Event:  ws.EventSnapshot,
		Data:   markers,
		SentAt: time.Now().UTC(),
	}); err != nil {
		return
	}

	ws.KeepAlive(conn)
	replies := make(chan any, 4)
	closed := make(chan struct{})
	go h.readLoop(conn, replies, closed)

	ticker := time.NewTicker(ws.PingInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case raw, ok := <-feed:
			if !ok {
				return
			}
			err = ws.WriteRaw(conn, raw)
		case reply := <-replies:
			err = ws.WriteTyped(conn, reply)
		case <-ticker.C:
			err = ws.WritePing(conn)
		}
		if err != nil {
			h.log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, replies chan<- any, closed chan<- struct{}) {
	defer close(closed)
	for {
		var req ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("WebSocket read error")
			}
			return
		}

		var reply any
		switch req.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(req.Action)}
		}
		select {
		case replies <- reply:
		default:
		}
	}
}
