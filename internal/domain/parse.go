package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPayload reports a message with nothing left after the marker line.
// Such messages are dropped silently, without a log line.
var ErrEmptyPayload = errors.New("empty payload after marker line")

// alertPayload is the wire shape of the structured body that follows the
// marker line.
type alertPayload struct {
	Status       string     `json:"status"`
	Level        string     `json:"level"`
	Regions      regionList `json:"regions"`
	Summary      string     `json:"summary"`
	OriginalText string     `json:"original_text"`
}

// ParseMessage turns a raw channel message into an AlertEvent.
//
// The first line of the text is a format marker and is discarded unseen. The
// remainder must decode as an alertPayload. The level is preserved verbatim;
// classification decides what an unrecognized value means.
func ParseMessage(msg RawMessage) (AlertEvent, error) {
	_, body, found := strings.Cut(msg.Text, "\n")
	if !found || strings.TrimSpace(body) == "" {
		return AlertEvent{}, ErrEmptyPayload
	}

	var payload alertPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return AlertEvent{}, fmt.Errorf("decode alert payload: %w", err)
	}

	return AlertEvent{
		ID:           msg.ID,
		Timestamp:    msg.Timestamp,
		Status:       payload.Status,
		Level:        payload.Level,
		Regions:      payload.Regions,
		Summary:      payload.Summary,
		OriginalText: payload.OriginalText,
	}, nil
}

// regionList tolerates the two shapes the channel sender has used for the
// regions field: a JSON array of names, or a single name string. The string
// sentinel "none" and null both decode to an empty list.
type regionList []string

func (r *regionList) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*r = names
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("regions is neither a list nor a string: %w", err)
	}
	if single == "" || strings.EqualFold(single, "none") {
		*r = nil
		return nil
	}
	*r = []string{single}
	return nil
}
