// Package ident generates entity ids.
package ident

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/docket/pkg/randid"
)

// Strategy names accepted in configuration.
const (
	StrategyTimeRandom = "time-random"
	StrategyUUIDv7     = "uuidv7"
)

// Strategies lists every accepted strategy name.
var Strategies = []string{StrategyTimeRandom, StrategyUUIDv7}

// Generator produces a fresh id for every call.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() string

// NewID calls f.
func (f GeneratorFunc) NewID() string { return f() }

// TimeRandom builds ids from the base-36 millisecond clock followed by a
// random suffix, so ids sort roughly by creation time.
type TimeRandom struct {
	Now        func() time.Time
	SuffixSize int
}

// NewID implements Generator.
func (g TimeRandom) NewID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	size := g.SuffixSize
	if size <= 0 {
		size = 9
	}
	return strconv.FormatInt(now().UnixMilli(), 36) + randid.Generate(size)
}

// UUIDv7 produces time-ordered RFC 9562 UUIDs.
type UUIDv7 struct{}

// NewID implements Generator. It falls back to a random v4 UUID if the v7
// generator fails.
func (UUIDv7) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New returns the generator for the named strategy.
func New(strategy string) (Generator, error) {
	switch strategy {
	case "", StrategyTimeRandom:
		return TimeRandom{}, nil
	case StrategyUUIDv7:
		return UUIDv7{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
