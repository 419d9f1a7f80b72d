package storage

import "github.com/agrocredito/agrocredito-backend/internal/projection"

func projectionFixture() projection.Projection {
	return projection.Projection{
		Crop:            "tomate",
		AreaHa:          2,
		ExpectedYieldQQ: 5200,
		PricePerQQ:      112.5,
		ExpectedRevenue: 585000,
		TotalCost:       114000,
		ExpectedProfit:  471000,
		ROIPercent:      413.16,
		RiskScore:       0.25,
		CostBreakdown:   map[string]float64{"seed": 16000},
		PriceSource:     "static",
	}
}
