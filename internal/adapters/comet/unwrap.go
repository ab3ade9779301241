package comet

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Dephilia/rpoaurk/internal/domain"
)

const (
	callbackPrefix = "CometChannel.scriptCallback("
	callbackSuffix = ");"

	// IdleOffset is sent when the server hold expired without new data.
	IdleOffset int64 = -1
)

type Update struct {
	NewOffset int64
	Data      json.RawMessage
}

func (u Update) Idle() bool {
	return u.NewOffset == IdleOffset && u.Data == nil
}

// Unwrap strips the literal callback wrapper and decodes the payload.
func Unwrap(body []byte) (Update, error) {
	text := bytes.TrimSpace(body)
	if len(text) < len(callbackPrefix)+len(callbackSuffix) ||
		!bytes.HasPrefix(text, []byte(callbackPrefix)) ||
		!bytes.HasSuffix(text, []byte(callbackSuffix)) {
		return Update{}, fmt.Errorf("%w: comet response is not a %s...%s callback", domain.ErrProtocol, callbackPrefix, callbackSuffix)
	}
	inner := text[len(callbackPrefix) : len(text)-len(callbackSuffix)]

	var payload struct {
		NewOffset *int64          `json:"new_offset"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(inner, &payload); err != nil {
		return Update{}, fmt.Errorf("%w: comet payload: %w", domain.ErrDecode, err)
	}
	if payload.NewOffset == nil {
		return Update{}, fmt.Errorf("%w: comet payload has no new_offset", domain.ErrDecode)
	}

	update := Update{NewOffset: *payload.NewOffset, Data: payload.Data}
	if update.Idle() {
		return update, nil
	}
	if payload.Data == nil {
		return Update{}, fmt.Errorf("%w: comet payload has no data", domain.ErrDecode)
	}

	return update, nil
}
