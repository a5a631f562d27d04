package models

// Location is a physical site media infrastructure is deployed at.
type Location struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Service node kinds.
const (
	NodeKindMedia    = "media"
	NodeKindRecorder = "recorder"
	NodeKindTracker  = "tracker"
)

// ServiceNode is a media-plane service instance (SFU media node, recorder,
// or tracker) registered with the management service. The secret is shared
// with the node for callback authentication and never serialized.
type ServiceNode struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Hostname   string  `json:"hostname"`
	Port       int     `json:"port"`
	Secret     string  `json:"-"`
	LocationID *string `json:"location_id,omitempty"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}
