// Package idgen provides UUID-backed identifier generation for vault records.
package idgen

import (
	"github.com/google/uuid"

	"sidevault/internal/domain"
)

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator producing random UUID strings.
func NewUUIDGenerator() domain.IDGenerator {
	return &uuidGenerator{}
}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}
