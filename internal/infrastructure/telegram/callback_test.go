package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Callback
	}{
		{
			name: "status change",
			data: "sa_fs_a1b2c3d4_READY",
			want: Callback{Action: CallbackSetStatus, ShortID: "a1b2c3d4", Status: "READY"},
		},
		{
			name: "time menu",
			data: "sa_et_a1b2c3d4",
			want: Callback{Action: CallbackTimeMenu, ShortID: "a1b2c3d4"},
		},
		{
			name: "set time",
			data: "sa_t_a1b2c3d4_240",
			want: Callback{Action: CallbackSetTime, ShortID: "a1b2c3d4", Minutes: 240},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "unknown prefix", data: "other_a1b2c3d4"},
		{name: "status without value", data: "sa_fs_a1b2c3d4"},
		{name: "status without short id", data: "sa_fs__READY"},
		{name: "time menu with trailing parts", data: "sa_et_a1b2c3d4_60"},
		{name: "set time without minutes", data: "sa_t_a1b2c3d4"},
		{name: "set time non numeric", data: "sa_t_a1b2c3d4_soon"},
		{name: "set time negative", data: "sa_t_a1b2c3d4_-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCallback(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestFormatCallbacksRoundTrip(t *testing.T) {
	shortID := "deadbeef"

	cb, err := ParseCallback(FormatStatusCallback(shortID, "PENDING"))
	require.NoError(t, err)
	assert.Equal(t, Callback{Action: CallbackSetStatus, ShortID: shortID, Status: "PENDING"}, cb)

	cb, err = ParseCallback(FormatTimeMenuCallback(shortID))
	require.NoError(t, err)
	assert.Equal(t, Callback{Action: CallbackTimeMenu, ShortID: shortID}, cb)

	cb, err = ParseCallback(FormatSetTimeCallback(shortID, 1440))
	require.NoError(t, err)
	assert.Equal(t, Callback{Action: CallbackSetTime, ShortID: shortID, Minutes: 1440}, cb)
}

func TestFormatCallbacksFitTelegramLimit(t *testing.T) {
	// Telegram rejects callback data over 64 bytes
	shortID := "a1b2c3d4"
	assert.LessOrEqual(t, len(FormatStatusCallback(shortID, "RECEIVED")), 64)
	assert.LessOrEqual(t, len(FormatSetTimeCallback(shortID, 1440)), 64)
}
