package reference

import "strings"

// Price units found in market quotes
const (
	UnitQuintal  = "quintal"
	UnitPound    = "libra"
	UnitArroba   = "arroba"
	UnitKilogram = "kilogramo"
	UnitTon      = "tonelada"
	UnitBox      = "caja"
	UnitSack     = "saco"
	UnitHundred  = "ciento"
	UnitDozen    = "docena"
	UnitPiece    = "unidad"
	UnitNet      = "red"
)

const poundsPerQuintal = 100.0

// quintalsPerUnit holds the fixed conversions. Boxes, sacks and counted
// units depend on the crop and need a per-unit weight instead.
var quintalsPerUnit = map[string]float64{
	UnitQuintal:  1,
	UnitPound:    0.01,
	UnitArroba:   0.25,
	UnitKilogram: 0.022046,
	UnitTon:      22.046,
}

// piecesPerUnit converts counted units to a number of pieces
var piecesPerUnit = map[string]float64{
	UnitHundred: 100,
	UnitDozen:   12,
	UnitPiece:   1,
}

var unitAliases = map[string]string{
	"qq":        UnitQuintal,
	"quintales": UnitQuintal,
	"lb":        UnitPound,
	"libras":    UnitPound,
	"kg":        UnitKilogram,
	"kilo":      UnitKilogram,
	"kilos":     UnitKilogram,
	"tm":        UnitTon,
	"cajas":     UnitBox,
	"sacos":     UnitSack,
	"costal":    UnitSack,
	"docenas":   UnitDozen,
	"unidades":  UnitPiece,
	"redes":     UnitNet,
}

// CanonicalUnit normalizes a unit name from a quote
func CanonicalUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return UnitQuintal
	}
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// QuintalsPerUnit returns how many quintales one unit weighs. unitWeightLb is
// the crop-specific weight of one box, sack or net, or of one piece for
// counted units. ok is false when neither a fixed factor nor a weight is known.
func QuintalsPerUnit(unit string, unitWeightLb float64) (float64, bool) {
	unit = CanonicalUnit(unit)
	if factor, ok := quintalsPerUnit[unit]; ok {
		return factor, true
	}
	if unitWeightLb <= 0 {
		return 0, false
	}
	if pieces, ok := piecesPerUnit[unit]; ok {
		return pieces * unitWeightLb / poundsPerQuintal, true
	}
	switch unit {
	case UnitBox, UnitSack, UnitNet:
		return unitWeightLb / poundsPerQuintal, true
	}
	return 0, false
}

// PricePerQuintal converts a per-unit price to a per-quintal price. When the
// conversion is unknown the original price is returned with ok=false.
func PricePerQuintal(price float64, unit string, unitWeightLb float64) (float64, bool) {
	qq, ok := QuintalsPerUnit(unit, unitWeightLb)
	if !ok || qq <= 0 {
		return price, false
	}
	return price / qq, true
}
