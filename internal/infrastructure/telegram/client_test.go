package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "valid", config: NewConfig("123:token", 42), wantErr: nil},
		{name: "missing token", config: NewConfig("", 42), wantErr: ErrTelegramConfigMissingToken},
		{name: "missing chat", config: NewConfig("123:token", 0), wantErr: ErrTelegramConfigMissingChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := NewConfig("123:token", 42)
	config.BaseURL = server.URL
	config.WebhookSecret = "hook-secret"
	client, err := NewClient(config)
	require.NoError(t, err)
	return client
}

func TestClient_SendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:token/sendMessage", r.URL.Path)

		var req sendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.ChatID)
		assert.Equal(t, "New tuning file", req.Text)
		require.NotNil(t, req.ReplyMarkup)
		assert.Equal(t, "sa_fs_a1b2c3d4_READY", req.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

		json.NewEncoder(w).Encode(apiResponse{
			OK:     true,
			Result: json.RawMessage(`{"message_id":77,"chat":{"id":42}}`),
		})
	})

	keyboard := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "Mark READY", CallbackData: FormatStatusCallback("a1b2c3d4", "READY")}},
		},
	}
	messageID, err := client.SendMessage(context.Background(), 42, "New tuning file", keyboard)
	require.NoError(t, err)
	assert.Equal(t, 77, messageID)
}

func TestClient_EditMessageText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:token/editMessageText", r.URL.Path)

		var req editMessageTextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 77, req.MessageID)

		json.NewEncoder(w).Encode(apiResponse{OK: true})
	})

	err := client.EditMessageText(context.Background(), 42, 77, "updated", nil)
	assert.NoError(t, err)
}

func TestClient_AnswerCallbackQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:token/answerCallbackQuery", r.URL.Path)

		var req answerCallbackQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cbq-1", req.CallbackQueryID)

		json.NewEncoder(w).Encode(apiResponse{OK: true})
	})

	err := client.AnswerCallbackQuery(context.Background(), "cbq-1", "Done")
	assert.NoError(t, err)
}

func TestClient_APIErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			OK:          false,
			ErrorCode:   400,
			Description: "Bad Request: message not found",
		})
	})

	err := client.EditMessageText(context.Background(), 42, 999, "text", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "message not found")
}

func TestClient_VerifyWebhookSecret(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	assert.True(t, client.VerifyWebhookSecret("hook-secret"))
	assert.False(t, client.VerifyWebhookSecret("wrong"))
	assert.False(t, client.VerifyWebhookSecret(""))
}
