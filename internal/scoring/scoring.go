// Package scoring turns canonical project inputs into five category
// sub-scores, a 0-1000 total and an approval tier.
//
// Every category is computed from the reference tables alone; the financial
// projection is not an input. Unknown keys score the documented neutral
// defaults and are listed in Result.Defaulted.
package scoring

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
)

// Tier is the approval band derived from the total score
type Tier string

const (
	TierApproved   Tier = "APPROVED"
	TierEvaluation Tier = "EVALUATION"
	TierRejected   Tier = "REJECTED"
)

const (
	ApprovedMin   = 800
	EvaluationMin = 500

	MinTotal = 300
	MaxTotal = 1000

	// FallbackTotal and FallbackCategory are returned when scoring fails
	FallbackTotal    = 500
	FallbackCategory = 100

	maxRecommendations = 2
)

// Category names a sub-score
type Category string

const (
	CategoryCrop       Category = "crop"
	CategoryArea       Category = "area"
	CategoryChannel    Category = "channel"
	CategoryIrrigation Category = "irrigation"
	CategoryLocation   Category = "location"
)

// bounds are the inclusive limits of each category
var bounds = map[Category][2]int{
	CategoryCrop:       {0, 200},
	CategoryArea:       {0, 200},
	CategoryChannel:    {0, 200},
	CategoryIrrigation: {0, 250},
	CategoryLocation:   {0, 150},
}

// Result is one scoring run. It is never patched, only recomputed.
type Result struct {
	Crop            int        `json:"crop"`
	Area            int        `json:"area"`
	Channel         int        `json:"channel"`
	Irrigation      int        `json:"irrigation"`
	Location        int        `json:"location"`
	Total           int        `json:"total"`
	Tier            Tier       `json:"tier"`
	Recommendations []string   `json:"recommendations,omitempty"`
	Defaulted       []Category `json:"defaulted,omitempty"`
	Fallback        bool       `json:"fallback,omitempty"`
}

// Category returns the sub-score for c
func (r Result) Category(c Category) int {
	switch c {
	case CategoryCrop:
		return r.Crop
	case CategoryArea:
		return r.Area
	case CategoryChannel:
		return r.Channel
	case CategoryIrrigation:
		return r.Irrigation
	case CategoryLocation:
		return r.Location
	}
	return 0
}

// Engine scores project inputs against a set of reference tables
type Engine struct {
	tables *reference.Tables
}

func NewEngine(tables *reference.Tables) *Engine {
	return &Engine{tables: tables}
}

// Score computes all five categories or fails as a whole with a
// COMPUTATION error. No partial result is returned.
func (e *Engine) Score(in reference.ProjectInputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, apperr.Computation("invalid project inputs", err)
	}

	var r Result
	var found bool

	if r.Crop, found = e.tables.CropScore(in.Crop); !found {
		r.Defaulted = append(r.Defaulted, CategoryCrop)
	}
	r.Area = AreaScore(in.AreaHa)

	channel, found := e.tables.Channel(in.Channel)
	if !found {
		r.Defaulted = append(r.Defaulted, CategoryChannel)
	}
	r.Channel = channel.Score

	if r.Irrigation, found = e.tables.IrrigationScore(in.Irrigation); !found {
		r.Defaulted = append(r.Defaulted, CategoryIrrigation)
	}
	if r.Location, found = e.tables.LocationScore(in.Location); !found {
		r.Defaulted = append(r.Defaulted, CategoryLocation)
	}

	for _, c := range []Category{CategoryCrop, CategoryArea, CategoryChannel, CategoryIrrigation, CategoryLocation} {
		b := bounds[c]
		if v := r.Category(c); v < b[0] || v > b[1] {
			return Result{}, apperr.Computation(
				fmt.Sprintf("%s score %d outside [%d, %d]", c, v, b[0], b[1]), nil)
		}
	}

	r.Total = r.Crop + r.Area + r.Channel + r.Irrigation + r.Location
	if r.Total < MinTotal || r.Total > MaxTotal {
		return Result{}, apperr.Computation(fmt.Sprintf("total score %d outside [%d, %d]", r.Total, MinTotal, MaxTotal), nil)
	}

	r.Tier = TierFor(r.Total)
	if r.Tier == TierRejected {
		r.Recommendations = Recommendations(r)
	}
	return r, nil
}

// ScoreWithFallback applies the fixed fallback policy: when Score fails the
// caller gets a mid-band EVALUATION result flagged as a fallback.
func (e *Engine) ScoreWithFallback(in reference.ProjectInputs) Result {
	r, err := e.Score(in)
	if err != nil {
		log.Error().Err(err).
			Str("crop", in.Crop).
			Float64("area_ha", in.AreaHa).
			Msg("Scoring failed, using fallback score")
		return FallbackResult()
	}
	return r
}

// FallbackResult is the fixed result used when scoring fails
func FallbackResult() Result {
	return Result{
		Crop:       FallbackCategory,
		Area:       FallbackCategory,
		Channel:    FallbackCategory,
		Irrigation: FallbackCategory,
		Location:   FallbackCategory,
		Total:      FallbackTotal,
		Tier:       TierFor(FallbackTotal),
		Fallback:   true,
	}
}

// TierFor maps a total score to its approval tier
func TierFor(total int) Tier {
	switch {
	case total >= ApprovedMin:
		return TierApproved
	case total >= EvaluationMin:
		return TierEvaluation
	default:
		return TierRejected
	}
}

// AreaScore rewards scale up to 50 ha and then falls back to penalize
// concentration. Values are rounded and capped at the category maximum, so
// the last stretch before 50 ha reads 200.
func AreaScore(a float64) int {
	var s float64
	switch {
	case a < 1:
		s = clamp(a*100, 80, 100)
	case a <= 5:
		s = 100 + (a-1)*10
	case a <= 15:
		s = 140 + (a-5)*4
	case a <= 50:
		s = 180 + (a-15)*0.6
	default:
		s = clamp(200-(a-50)*0.2, 160, 190)
	}
	b := bounds[CategoryArea]
	return int(clamp(math.Round(s), float64(b[0]), float64(b[1])))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
