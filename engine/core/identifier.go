package core

import (
	"fmt"

	"github.com/google/uuid"
)

// NewLabel returns label unchanged, or a unique "<kind>-<uuid>" label when it
// is empty so every encoder shows up distinctly in logs.
func NewLabel(kind, label string) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("%s-%s", kind, uuid.New().String())
}
