package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/interfaces/http/middleware"
)

func TestNotificationStreamHandler_Publish(t *testing.T) {
	h := NewNotificationStreamHandler(zap.NewNop())
	defer h.Stop()

	t.Run("no connected clients is not an error", func(t *testing.T) {
		err := h.Publish(context.Background(), uuid.New(), map[string]any{"title": "File ready"})
		assert.NoError(t, err)
		assert.Equal(t, 0, h.ClientCount())
	})

	t.Run("unserializable payload fails", func(t *testing.T) {
		err := h.Publish(context.Background(), uuid.New(), map[string]any{"bad": make(chan int)})
		assert.Error(t, err)
	})
}

func TestNotificationStreamHandler_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("requires authentication", func(t *testing.T) {
		h := NewNotificationStreamHandler(zap.NewNop())
		defer h.Stop()

		r := gin.New()
		r.GET("/stream", h.Stream)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("heartbeat racing a disconnect does not panic", func(t *testing.T) {
		h := NewNotificationStreamHandler(zap.NewNop())
		defer h.Stop()

		userID := uuid.New()
		r := gin.New()
		r.GET("/stream", func(c *gin.Context) {
			c.Set(middleware.JWTUserIDKey, userID.String())
			h.Stream(c)
		})

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		served := make(chan struct{})
		go func() {
			defer close(served)
			r.ServeHTTP(w, req)
		}()
		require.Eventually(t, func() bool { return h.ClientCount() == 1 },
			time.Second, 5*time.Millisecond)

		var client *sseClient
		h.clients.Range(func(_, value any) bool {
			client = value.(*sseClient)
			return false
		})
		require.NotNil(t, client)

		cancel()
		<-served
		require.Equal(t, 0, h.ClientCount())

		// A writer that loaded the client before it was removed may
		// still send. Flood past the buffer to prove the channel
		// outlives the connection.
		assert.NotPanics(t, func() {
			msg := sseMessage{event: "heartbeat", data: `{"timestamp":0}`}
			for i := 0; i < 2*cap(client.ch); i++ {
				select {
				case client.ch <- msg:
				default:
				}
			}
		})
	})

	t.Run("sends connected event and closes with the request", func(t *testing.T) {
		h := NewNotificationStreamHandler(zap.NewNop())
		defer h.Stop()

		userID := uuid.New()
		r := gin.New()
		r.GET("/stream", func(c *gin.Context) {
			c.Set(middleware.JWTUserIDKey, userID.String())
			h.Stream(c)
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "event: connected")
		assert.Equal(t, 0, h.ClientCount())
	})
}
