package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback data prefixes. The short file ID is the 8-hex-char prefix of
// the file UUID, which keeps the whole payload well under Telegram's
// 64-byte callback data limit.
const (
	statusCallbackPrefix   = "sa_fs_"
	timeMenuCallbackPrefix = "sa_et_"
	setTimeCallbackPrefix  = "sa_t_"
)

// CallbackAction identifies what an inline button press asks for
type CallbackAction string

const (
	// CallbackSetStatus moves a tuning file to a new status
	CallbackSetStatus CallbackAction = "set_status"
	// CallbackTimeMenu opens the estimated time picker
	CallbackTimeMenu CallbackAction = "time_menu"
	// CallbackSetTime sets the estimated processing time
	CallbackSetTime CallbackAction = "set_time"
)

// Callback is a decoded inline button press
type Callback struct {
	Action  CallbackAction
	ShortID string
	// Status is set for CallbackSetStatus
	Status string
	// Minutes is set for CallbackSetTime
	Minutes int
}

// FormatStatusCallback encodes a status change button payload
func FormatStatusCallback(shortID, status string) string {
	return statusCallbackPrefix + shortID + "_" + status
}

// FormatTimeMenuCallback encodes the estimated time menu button payload
func FormatTimeMenuCallback(shortID string) string {
	return timeMenuCallbackPrefix + shortID
}

// FormatSetTimeCallback encodes an estimated time option payload
func FormatSetTimeCallback(shortID string, minutes int) string {
	return setTimeCallbackPrefix + shortID + "_" + strconv.Itoa(minutes)
}

// ParseCallback decodes callback data produced by the Format helpers.
// Unknown or malformed payloads return an error so the webhook can
// acknowledge and ignore them.
func ParseCallback(data string) (Callback, error) {
	switch {
	case strings.HasPrefix(data, statusCallbackPrefix):
		rest := strings.TrimPrefix(data, statusCallbackPrefix)
		shortID, status, ok := strings.Cut(rest, "_")
		if !ok || shortID == "" || status == "" {
			return Callback{}, fmt.Errorf("telegram: malformed status callback %q", data)
		}
		return Callback{Action: CallbackSetStatus, ShortID: shortID, Status: status}, nil

	case strings.HasPrefix(data, timeMenuCallbackPrefix):
		shortID := strings.TrimPrefix(data, timeMenuCallbackPrefix)
		if shortID == "" || strings.Contains(shortID, "_") {
			return Callback{}, fmt.Errorf("telegram: malformed time menu callback %q", data)
		}
		return Callback{Action: CallbackTimeMenu, ShortID: shortID}, nil

	case strings.HasPrefix(data, setTimeCallbackPrefix):
		rest := strings.TrimPrefix(data, setTimeCallbackPrefix)
		shortID, raw, ok := strings.Cut(rest, "_")
		if !ok || shortID == "" {
			return Callback{}, fmt.Errorf("telegram: malformed set time callback %q", data)
		}
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Callback{}, fmt.Errorf("telegram: invalid minutes in callback %q", data)
		}
		return Callback{Action: CallbackSetTime, ShortID: shortID, Minutes: minutes}, nil
	}

	return Callback{}, fmt.Errorf("telegram: unrecognized callback %q", data)
}
