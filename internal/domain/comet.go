package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

type CometDescriptor struct {
	BaseURL string
	Channel string
	Offset  int64
}

func (d CometDescriptor) PollURL() string {
	query := url.Values{}
	query.Set("channel", d.Channel)
	query.Set("offset", strconv.FormatInt(d.Offset, 10))
	return d.BaseURL + "?" + query.Encode()
}

// Advance returns the descriptor moved to newOffset. Offsets never go back.
func (d CometDescriptor) Advance(newOffset int64) (CometDescriptor, error) {
	if newOffset < d.Offset {
		return d, fmt.Errorf("%w: new offset %d is behind current offset %d", ErrProtocol, newOffset, d.Offset)
	}
	d.Offset = newOffset
	return d, nil
}

type CometEvent struct {
	Offset int64
	Data   []byte
}
