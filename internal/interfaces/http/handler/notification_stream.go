package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/interfaces/http/dto"
)

// sseClient is one open event-stream connection. The message channel
// is never closed: writers (Publish, heartbeats) may still hold a
// reference after the reader goes away, so teardown is signalled via
// done only and the channel is left for the garbage collector.
type sseClient struct {
	id       string
	userID   uuid.UUID
	ch       chan sseMessage
	done     chan struct{}
	doneOnce sync.Once
}

// disconnect signals the reader to stop. Safe to call from both the
// reader side and Stop.
func (c *sseClient) disconnect() {
	c.doneOnce.Do(func() { close(c.done) })
}

type sseMessage struct {
	event string
	data  string
}

// NotificationStreamHandler pushes realtime notification events to
// connected browsers over Server-Sent Events. It implements the
// realtime publisher port of the notification fan-out: events are
// delivered only to connections owned by the target user. A user with
// no open connection simply misses the push; the durable inbox is the
// channel of record.
type NotificationStreamHandler struct {
	BaseHandler
	logger     *zap.Logger
	clients    sync.Map // map[string]*sseClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	maxClients int
}

// NewNotificationStreamHandler creates a new SSE stream handler
func NewNotificationStreamHandler(logger *zap.Logger) *NotificationStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotificationStreamHandler{
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}
	go h.sendHeartbeats()
	return h
}

// Publish delivers a payload to every open connection of the user.
// A slow client's full buffer drops the message rather than blocking
// the event handler.
func (h *NotificationStreamHandler) Publish(ctx context.Context, userID uuid.UUID, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal realtime payload: %w", err)
	}

	msg := sseMessage{event: "notification", data: string(data)}

	h.clients.Range(func(_, value any) bool {
		client, ok := value.(*sseClient)
		if !ok || client.userID != userID {
			return true
		}
		select {
		case client.ch <- msg:
		default:
			h.logger.Warn("SSE client channel full, dropping message",
				zap.String("client_id", client.id),
				zap.String("user_id", userID.String()))
		}
		return true
	})
	return nil
}

// Stream upgrades the request to a Server-Sent Events connection
func (h *NotificationStreamHandler) Stream(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		c.JSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse("MAX_CONNECTIONS_REACHED", "Maximum number of stream connections reached"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	client := &sseClient{
		id:     uuid.New().String(),
		userID: userID,
		ch:     make(chan sseMessage, 64),
		done:   make(chan struct{}),
	}

	h.clients.Store(client.id, client)
	defer func() {
		h.clients.Delete(client.id)
		client.disconnect()
	}()

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.id),
		zap.String("user_id", userID.String()))

	sendSSEEvent(c.Writer, sseMessage{
		event: "connected",
		data:  fmt.Sprintf(`{"client_id":"%s"}`, client.id),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected", zap.String("client_id", client.id))
			return
		case <-client.done:
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.ch:
			sendSSEEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// Stop disconnects every client and stops the heartbeat loop
func (h *NotificationStreamHandler) Stop() {
	h.cancel()
	h.clients.Range(func(_, value any) bool {
		if client, ok := value.(*sseClient); ok {
			client.disconnect()
		}
		return true
	})
}

// ClientCount returns the number of open connections
func (h *NotificationStreamHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (h *NotificationStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			msg := sseMessage{
				event: "heartbeat",
				data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			}
			h.clients.Range(func(_, value any) bool {
				if client, ok := value.(*sseClient); ok {
					select {
					case client.ch <- msg:
					default:
					}
				}
				return true
			})
		}
	}
}

func sendSSEEvent(w io.Writer, msg sseMessage) {
	if msg.event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.event)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.data)
}
