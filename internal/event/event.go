// Package event parses storage object-finalize notifications that trigger
// the indexer.
package event

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ObjectFinalized is the payload of a storage upload notification. Field
// names follow the Cloud Storage object resource shape.
type ObjectFinalized struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
	TimeCreated string `json:"timeCreated"`
}

// Parse decodes a notification payload and validates the required fields.
func Parse(r io.Reader) (ObjectFinalized, error) {
	var ev ObjectFinalized
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return ObjectFinalized{}, fmt.Errorf("decode event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return ObjectFinalized{}, err
	}
	return ev, nil
}

// Validate checks that the event identifies an object.
func (e ObjectFinalized) Validate() error {
	if strings.TrimSpace(e.Bucket) == "" {
		return fmt.Errorf("event missing bucket")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("event missing object name")
	}
	return nil
}

// URI returns the gs:// path of the object.
func (e ObjectFinalized) URI() string {
	return "gs://" + e.Bucket + "/" + e.Name
}
