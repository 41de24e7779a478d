package model

import (
	"encoding/json"
	"time"
)

// ContentBlock is one storefront CMS entry. Data holds the kind-specific
// payload as validated JSON.
type ContentBlock struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Position  int             `json:"position"`
	Data      json.RawMessage `json:"data"`
	ImageKey  string          `json:"image_key,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Ready     bool            `json:"ready"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
