package reference

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names
const (
	SheetCosts  = "costos"
	SheetYields = "rendimientos"
	SheetPrices = "precios"
)

// WorkbookSummary reports what an override workbook changed
type WorkbookSummary struct {
	Updated []string
	Added   []string
}

// ApplyWorkbook overrides crop costs, yields and prices from an XLSX file.
// Each sheet has a header row whose first column is the canonical crop key.
// Missing sheets are skipped; crops not yet in the table are added on top of
// a copy of the default crop's profile.
func ApplyWorkbook(t *Tables, path string) (*WorkbookSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open reference workbook: %w", err)
	}
	defer f.Close()

	summary := &WorkbookSummary{}
	seen := map[string]bool{}
	touch := func(key string) CropProfile {
		p, ok := t.Crops[key]
		if !ok {
			p = t.Crops[DefaultCropKey]
			p.Key = key
			p.Name = key
			p.Score = DefaultCropScore
			p.Market = MarketGeneral
			p.Efficiency = nil
			p.CostPerHa = cloneCosts(p.CostPerHa)
			if !seen[key] {
				summary.Added = append(summary.Added, key)
			}
		} else if !seen[key] {
			summary.Updated = append(summary.Updated, key)
		}
		seen[key] = true
		return p
	}

	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}

	if sheets[SheetCosts] {
		err := eachRow(f, SheetCosts, func(key string, col map[string]string) error {
			p := touch(key)
			p.CostPerHa = cloneCosts(p.CostPerHa)
			for _, item := range CostItems {
				if raw, ok := col[item]; ok && raw != "" {
					v, err := parseNumber(raw)
					if err != nil {
						return fmt.Errorf("%s.%s: %w", key, item, err)
					}
					p.CostPerHa[item] = v
				}
			}
			t.Crops[key] = p
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if sheets[SheetYields] {
		err := eachRow(f, SheetYields, func(key string, col map[string]string) error {
			p := touch(key)
			if raw := col["yield_qq_ha"]; raw != "" {
				v, err := parseNumber(raw)
				if err != nil {
					return fmt.Errorf("%s.yield_qq_ha: %w", key, err)
				}
				p.YieldPerHaQQ = v
			}
			if raw := col["score"]; raw != "" {
				v, err := strconv.Atoi(raw)
				if err != nil || v < 0 || v > 200 {
					return fmt.Errorf("%s.score: must be an integer between 0 and 200", key)
				}
				p.Score = v
			}
			t.Crops[key] = p
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if sheets[SheetPrices] {
		err := eachRow(f, SheetPrices, func(key string, col map[string]string) error {
			p := touch(key)
			if raw := col["price"]; raw != "" {
				v, err := parseNumber(raw)
				if err != nil {
					return fmt.Errorf("%s.price: %w", key, err)
				}
				p.BasePrice = v
			}
			if raw := col["unit"]; raw != "" {
				p.PriceUnit = CanonicalUnit(raw)
			}
			if raw := col["unit_weight_lb"]; raw != "" {
				v, err := parseNumber(raw)
				if err != nil {
					return fmt.Errorf("%s.unit_weight_lb: %w", key, err)
				}
				p.UnitWeightLb = v
			}
			t.Crops[key] = p
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func eachRow(f *excelize.File, sheet string, fn func(key string, col map[string]string) error) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for n, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row[0]))
		if key == "" {
			continue
		}
		col := make(map[string]string, len(row))
		for i := 1; i < len(row) && i < len(header); i++ {
			col[header[i]] = strings.TrimSpace(row[i])
		}
		if err := fn(key, col); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, n+2, err)
		}
	}
	return nil
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %q", raw)
	}
	return v, nil
}

func cloneCosts(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
