// Package projection computes the expected yield, revenue, cost, profit,
// ROI and risk of a crop project.
package projection

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/market"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
)

// Risk adjustments applied on top of the channel's base risk
const (
	riskIrrigated = -0.1
	riskRainFed   = 0.2
	riskExport    = 0.1
	riskCoop      = -0.1
)

// Projection is an immutable snapshot of one project's financials
type Projection struct {
	Crop            string             `json:"crop"`
	AreaHa          float64            `json:"area_ha"`
	ExpectedYieldQQ float64            `json:"expected_yield_qq"`
	PricePerQQ      float64            `json:"price_per_qq"`
	ExpectedRevenue float64            `json:"expected_revenue"`
	TotalCost       float64            `json:"total_cost"`
	ExpectedProfit  float64            `json:"expected_profit"`
	ROIPercent      float64            `json:"roi_percent"`
	RiskScore       float64            `json:"risk_score"`
	CostBreakdown   map[string]float64 `json:"cost_breakdown"`

	// SubstitutedCrop is the crop whose profile stood in for an unknown crop
	SubstitutedCrop string `json:"substituted_crop,omitempty"`
	PriceSource     string `json:"price_source"`
	// PriceUnconverted is set when the quote's unit could not be turned into quintals
	PriceUnconverted bool `json:"price_unconverted,omitempty"`
}

// Projector computes projections from the reference tables and a price source
type Projector struct {
	tables *reference.Tables
	prices market.PriceSource
}

// NewProjector returns a projector. A nil price source quotes from the tables.
func NewProjector(tables *reference.Tables, prices market.PriceSource) *Projector {
	if prices == nil {
		prices = market.NewStaticSource(tables)
	}
	return &Projector{tables: tables, prices: prices}
}

// Project runs every step or fails as a whole with a COMPUTATION error
func (p *Projector) Project(ctx context.Context, in reference.ProjectInputs) (Projection, error) {
	if err := in.Validate(); err != nil {
		return Projection{}, apperr.Computation("invalid project inputs", err)
	}

	profile, substituted := p.tables.Crop(in.Crop)
	out := Projection{
		Crop:          in.Crop,
		AreaHa:        in.AreaHa,
		CostBreakdown: make(map[string]float64, len(profile.CostPerHa)),
	}
	if substituted {
		out.SubstitutedCrop = profile.Key
		log.Info().Str("crop", in.Crop).Str("substitute", profile.Key).Msg("Unknown crop, using substitute profile")
	}

	// cost
	for item, perHa := range profile.CostPerHa {
		out.CostBreakdown[item] = perHa * in.AreaHa
		out.TotalCost += perHa * in.AreaHa
	}

	// yield
	out.ExpectedYieldQQ = profile.YieldPerHaQQ * in.AreaHa * p.tables.Efficiency(profile, in.Irrigation)

	// price
	price, err := p.pricePerQQ(ctx, profile)
	if err != nil {
		return Projection{}, err
	}
	channel, _ := p.tables.Channel(in.Channel)
	out.PricePerQQ = price.perQQ * channel.PriceMultiplier
	out.PriceSource = price.source
	out.PriceUnconverted = !price.converted

	// revenue and profit
	out.ExpectedRevenue = out.ExpectedYieldQQ * out.PricePerQQ
	out.ExpectedProfit = out.ExpectedRevenue - out.TotalCost
	if out.TotalCost != 0 {
		out.ROIPercent = out.ExpectedProfit / out.TotalCost * 100
	}

	out.RiskScore = Risk(channel.BaseRisk, in.Irrigation, profile.Market)

	for name, v := range map[string]float64{
		"yield":   out.ExpectedYieldQQ,
		"price":   out.PricePerQQ,
		"revenue": out.ExpectedRevenue,
		"cost":    out.TotalCost,
		"roi":     out.ROIPercent,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Projection{}, apperr.Computation(fmt.Sprintf("%s is not a finite number", name), nil)
		}
	}
	return out, nil
}

type quotedPrice struct {
	perQQ     float64
	source    string
	converted bool
}

func (p *Projector) pricePerQQ(ctx context.Context, profile reference.CropProfile) (quotedPrice, error) {
	q, found, err := p.prices.Quote(ctx, profile.Key)
	if err != nil {
		return quotedPrice{}, apperr.Computation("price lookup failed for "+profile.Key, err)
	}
	if !found {
		q = market.Quote{
			Crop:         profile.Key,
			Price:        profile.BasePrice,
			Unit:         profile.PriceUnit,
			UnitWeightLb: profile.UnitWeightLb,
			Source:       "static",
		}
	}

	// the table weight describes the table's unit only
	weight := q.UnitWeightLb
	if weight <= 0 && reference.CanonicalUnit(q.Unit) == reference.CanonicalUnit(profile.PriceUnit) {
		weight = profile.UnitWeightLb
	}

	perQQ, ok := reference.PricePerQuintal(q.Price, q.Unit, weight)
	if !ok {
		log.Warn().
			Str("crop", profile.Key).
			Str("unit", q.Unit).
			Float64("price", q.Price).
			Msg("No quintal conversion for price unit, using the quoted price")
	}
	return quotedPrice{perQQ: perQQ, source: q.Source, converted: ok}, nil
}

// Risk adjusts a channel's base risk for irrigation and the crop's typical
// market, clamped to [0, 1] and rounded to two decimals.
func Risk(base float64, irrigation reference.Irrigation, profile reference.MarketProfile) float64 {
	r := base
	switch irrigation {
	case reference.IrrigationDrip, reference.IrrigationSprinkler:
		r += riskIrrigated
	case reference.IrrigationRainFed:
		r += riskRainFed
	}
	switch profile {
	case reference.MarketExport:
		r += riskExport
	case reference.MarketCooperative:
		r += riskCoop
	}
	r = math.Max(0, math.Min(1, r))
	return math.Round(r*100) / 100
}
