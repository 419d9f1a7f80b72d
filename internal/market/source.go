// Package market answers base price quotes for a crop. Quotes come from a
// chain of sources: a Redis cache, an external price API and finally the
// static reference table, which always answers for known crops.
package market

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/reference"
)

// Quote is a base price for a crop in its quoted unit
type Quote struct {
	Crop         string  `json:"crop"`
	Price        float64 `json:"price"`
	Unit         string  `json:"unit"`
	UnitWeightLb float64 `json:"unit_weight_lb,omitempty"`
	Source       string  `json:"source"`
}

// PriceSource returns a quote for a canonical crop key. A source that has no
// price for the crop returns found=false and a nil error.
type PriceSource interface {
	Quote(ctx context.Context, crop string) (Quote, bool, error)
}

// StaticSource quotes from the reference tables
type StaticSource struct {
	tables *reference.Tables
}

func NewStaticSource(tables *reference.Tables) *StaticSource {
	return &StaticSource{tables: tables}
}

func (s *StaticSource) Quote(_ context.Context, crop string) (Quote, bool, error) {
	p, ok := s.tables.Crops[crop]
	if !ok {
		return Quote{}, false, nil
	}
	return Quote{
		Crop:         p.Key,
		Price:        p.BasePrice,
		Unit:         p.PriceUnit,
		UnitWeightLb: p.UnitWeightLb,
		Source:       "static",
	}, true, nil
}

// Chain asks each source in turn. Errors are logged and skipped.
type Chain []PriceSource

func (c Chain) Quote(ctx context.Context, crop string) (Quote, bool, error) {
	for _, src := range c {
		q, found, err := src.Quote(ctx, crop)
		if err != nil {
			log.Warn().Err(err).Str("crop", crop).Msg("Price source failed, trying next")
			continue
		}
		if found {
			return q, true, nil
		}
	}
	return Quote{}, false, nil
}
