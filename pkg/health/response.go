package health

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the backend-reported health status. Any string is accepted; the
// constants below are the values relays and their front-ends commonly report.
type Status string

const (
	StatusOK       Status = "ok"
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
	StatusUnknown  Status = "unknown"
)

// Healthy reports whether s signals a live backend.
func (s Status) Healthy() bool {
	return s == StatusOK || s == StatusUp
}

// HealthResponse is the decoded body of a health endpoint.
//
// Only "status" is interpreted. Every other top-level key is kept verbatim in
// Extra so the payload re-encodes to the same object.
type HealthResponse struct {
	Status Status
	Extra  map[string]json.RawMessage
}

const statusKey = "status"

var errMissingStatus = errors.New(`health response has no "status" field`)

// UnmarshalJSON decodes a JSON object with a string "status" member.
func (h *HealthResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	statusRaw, ok := raw[statusKey]
	if !ok {
		return errMissingStatus
	}
	var status string
	if err := json.Unmarshal(statusRaw, &status); err != nil {
		return fmt.Errorf("health response status is not a string: %w", err)
	}
	delete(raw, statusKey)

	h.Status = Status(status)
	h.Extra = nil
	if len(raw) > 0 {
		h.Extra = raw
	}
	return nil
}

// MarshalJSON encodes the response back into a single JSON object.
func (h HealthResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(h.Extra)+1)
	for k, v := range h.Extra {
		out[k] = v
	}
	status, err := json.Marshal(string(h.Status))
	if err != nil {
		return nil, err
	}
	out[statusKey] = status
	return json.Marshal(out)
}

// Field decodes the extension member key into v. It reports false when the
// payload did not carry key.
func (h HealthResponse) Field(key string, v any) (bool, error) {
	raw, ok := h.Extra[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode health field %q: %w", key, err)
	}
	return true, nil
}
