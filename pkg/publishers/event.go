package publishers

import "time"

// Event is the status-change notification published downstream.
type Event struct {
	TargetID       string    `json:"target_id"`
	TargetName     string    `json:"target_name"`
	URL            string    `json:"url"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Status         string    `json:"status"`
	StatusCode     int       `json:"status_code,omitempty"`
	Error          string    `json:"error,omitempty"`
	ObservedAt     time.Time `json:"observed_at"`
}

// attributes are the routing attributes attached by queue/topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"target_id": e.TargetID,
		"status":    e.Status,
	}
}
