// Package id mints pipeline run identifiers.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

type Generator interface {
	NewID() (string, error)
}

// TimeOrderedGenerator mints UUIDv7 strings, so run IDs sort by start time.
type TimeOrderedGenerator struct{}

func NewTimeOrderedGenerator() TimeOrderedGenerator {
	return TimeOrderedGenerator{}
}

func (TimeOrderedGenerator) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return value.String(), nil
}
