package reference

import "sort"

// Cost items of the per-hectare budget, in display order
const (
	CostLandPrep   = "land_prep"
	CostSeed       = "seed"
	CostFertilizer = "fertilizer"
	CostPesticide  = "pesticide"
	CostLabor      = "labor"
	CostHarvest    = "harvest"
	CostOther      = "other"
)

// CostItems lists every itemized cost key
var CostItems = []string{CostLandPrep, CostSeed, CostFertilizer, CostPesticide, CostLabor, CostHarvest, CostOther}

// MarketProfile tags crops whose usual buyer changes the risk estimate
type MarketProfile string

const (
	MarketGeneral     MarketProfile = ""
	MarketExport      MarketProfile = "export"
	MarketCooperative MarketProfile = "cooperative"
)

// Defaults used when a key is not in the tables
const (
	DefaultCropKey         = "maiz"
	DefaultCropScore       = 100
	DefaultIrrigationScore = 80
	DefaultEfficiency      = 0.8
	DefaultChannelScore    = 120
	DefaultPriceMultiplier = 1.0
	DefaultChannelRisk     = 0.30
	DefaultLocationKey     = "guatemala"
	DefaultLocationScore   = 100
)

// CropProfile is everything the engines know about one crop
type CropProfile struct {
	Key          string
	Name         string
	Score        int
	CostPerHa    map[string]float64
	YieldPerHaQQ float64
	BasePrice    float64
	PriceUnit    string
	// UnitWeightLb is the weight of one PriceUnit for units without a fixed factor
	UnitWeightLb float64
	// Efficiency overrides the default irrigation multipliers for this crop
	Efficiency map[Irrigation]float64
	Market     MarketProfile
}

// CostTotalPerHa sums the itemized budget
func (c CropProfile) CostTotalPerHa() float64 {
	total := 0.0
	for _, item := range CostItems {
		total += c.CostPerHa[item]
	}
	return total
}

// IrrigationProfile scores and weights an irrigation category
type IrrigationProfile struct {
	Score      int
	Efficiency float64
}

// ChannelProfile scores and prices a commercialization channel
type ChannelProfile struct {
	Score           int
	PriceMultiplier float64
	BaseRisk        float64
}

// LocationProfile is the department-level productivity score
type LocationProfile struct {
	Name  string
	Score int
}

// Tables is one canonical reference table per concept
type Tables struct {
	Crops      map[string]CropProfile
	Irrigation map[Irrigation]IrrigationProfile
	Channels   map[Channel]ChannelProfile
	Locations  map[string]LocationProfile
}

// Crop returns the profile for key. Unknown keys get the default crop's
// profile and substituted=true.
func (t *Tables) Crop(key string) (profile CropProfile, substituted bool) {
	if p, ok := t.Crops[key]; ok {
		return p, false
	}
	return t.Crops[DefaultCropKey], true
}

// CropScore returns the crop category score, 100 for unknown crops
func (t *Tables) CropScore(key string) (int, bool) {
	if p, ok := t.Crops[key]; ok {
		return p.Score, true
	}
	return DefaultCropScore, false
}

// CropKeys returns the known crop keys sorted
func (t *Tables) CropKeys() []string {
	keys := make([]string, 0, len(t.Crops))
	for k := range t.Crops {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IrrigationScore returns the irrigation category score, 80 when unknown
func (t *Tables) IrrigationScore(i Irrigation) (int, bool) {
	if p, ok := t.Irrigation[i]; ok {
		return p.Score, true
	}
	return DefaultIrrigationScore, false
}

// Efficiency returns the yield multiplier for crop under irrigation i
func (t *Tables) Efficiency(crop CropProfile, i Irrigation) float64 {
	if e, ok := crop.Efficiency[i]; ok {
		return e
	}
	if p, ok := t.Irrigation[i]; ok {
		return p.Efficiency
	}
	return DefaultEfficiency
}

// Channel returns the channel profile, a neutral profile when unknown
func (t *Tables) Channel(c Channel) (ChannelProfile, bool) {
	if p, ok := t.Channels[c]; ok {
		return p, true
	}
	return ChannelProfile{
		Score:           DefaultChannelScore,
		PriceMultiplier: DefaultPriceMultiplier,
		BaseRisk:        DefaultChannelRisk,
	}, false
}

// LocationScore returns the department score; unknown departments get the
// capital region's profile
func (t *Tables) LocationScore(key string) (int, bool) {
	if p, ok := t.Locations[key]; ok {
		return p.Score, true
	}
	if p, ok := t.Locations[DefaultLocationKey]; ok {
		return p.Score, false
	}
	return DefaultLocationScore, false
}

// LocationKeys returns the known department keys sorted
func (t *Tables) LocationKeys() []string {
	keys := make([]string, 0, len(t.Locations))
	for k := range t.Locations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func costs(landPrep, seed, fertilizer, pesticide, labor, harvest, other float64) map[string]float64 {
	return map[string]float64{
		CostLandPrep:   landPrep,
		CostSeed:       seed,
		CostFertilizer: fertilizer,
		CostPesticide:  pesticide,
		CostLabor:      labor,
		CostHarvest:    harvest,
		CostOther:      other,
	}
}

func efficiency(drip, sprinkler, gravity, rainFed float64) map[Irrigation]float64 {
	return map[Irrigation]float64{
		IrrigationDrip:      drip,
		IrrigationSprinkler: sprinkler,
		IrrigationGravity:   gravity,
		IrrigationRainFed:   rainFed,
	}
}

func crop(key, name string, score int, yieldQQ, price float64, unit string, unitWeightLb float64,
	market MarketProfile, eff map[Irrigation]float64, costPerHa map[string]float64) CropProfile {
	return CropProfile{
		Key:          key,
		Name:         name,
		Score:        score,
		CostPerHa:    costPerHa,
		YieldPerHaQQ: yieldQQ,
		BasePrice:    price,
		PriceUnit:    unit,
		UnitWeightLb: unitWeightLb,
		Efficiency:   eff,
		Market:       market,
	}
}

func cropTable(profiles ...CropProfile) map[string]CropProfile {
	table := make(map[string]CropProfile, len(profiles))
	for _, p := range profiles {
		table[p.Key] = p
	}
	return table
}

// Default builds a fresh copy of the built-in tables. Costs and prices are
// quetzales, yields are quintales per hectare.
func Default() *Tables {
	return &Tables{
		Crops: cropTable(
			// key, name, score, yield qq/ha, price, unit, unit weight lb, market, efficiency overrides, costs per ha
			crop("maiz", "Maíz", 120, 60, 200, UnitQuintal, 0, MarketCooperative, efficiency(1.25, 1.15, 1.05, 0.85),
				costs(1200, 800, 2500, 700, 2800, 1000, 500)),
			crop("frijol", "Frijol", 115, 25, 600, UnitQuintal, 0, MarketCooperative, nil,
				costs(1000, 900, 1500, 800, 2500, 900, 400)),
			crop("tomate", "Tomate", 160, 2000, 45, UnitBox, 50, MarketGeneral, nil,
				costs(3500, 8000, 12000, 9000, 15000, 6000, 3500)),
			crop("papa", "Papa", 140, 400, 180, UnitQuintal, 0, MarketCooperative, nil,
				costs(2500, 9000, 6000, 4500, 7000, 3000, 1500)),
			crop("cafe", "Café", 180, 30, 1200, UnitQuintal, 0, MarketCooperative, efficiency(1.15, 1.1, 1.0, 0.9),
				costs(1500, 2000, 5000, 2500, 9000, 4500, 1500)),
			crop("cardamomo", "Cardamomo", 170, 12, 1500, UnitQuintal, 0, MarketExport, nil,
				costs(1500, 2500, 3500, 2000, 8000, 3500, 1000)),
			crop("aguacate", "Aguacate", 175, 200, 250, UnitHundred, 0.5, MarketExport, nil,
				costs(2000, 6000, 5000, 3500, 8000, 4000, 1500)),
			crop("brocoli", "Brócoli", 165, 250, 160, UnitQuintal, 0, MarketExport, nil,
				costs(2500, 5000, 7000, 5000, 9000, 4000, 2000)),
			crop("arveja", "Arveja china", 165, 120, 350, UnitQuintal, 0, MarketExport, nil,
				costs(2500, 4500, 5000, 5500, 14000, 5000, 2000)),
			crop("ejote", "Ejote francés", 160, 250, 220, UnitQuintal, 0, MarketExport, nil,
				costs(2500, 4000, 5000, 5000, 12000, 4500, 2000)),
			crop("chile", "Chile pimiento", 150, 500, 200, UnitSack, 80, MarketGeneral, nil,
				costs(3000, 7000, 9000, 7000, 12000, 5000, 2500)),
			crop("cebolla", "Cebolla", 145, 600, 250, UnitSack, 100, MarketGeneral, nil,
				costs(2500, 6000, 7000, 5000, 10000, 4000, 2000)),
			crop("banano", "Banano", 150, 1500, 70, UnitBox, 40, MarketExport, nil,
				costs(3000, 5000, 8000, 6000, 12000, 5000, 3000)),
			crop("platano", "Plátano", 140, 700, 90, UnitHundred, 0.75, MarketGeneral, nil,
				costs(2500, 4500, 6000, 4000, 9000, 4000, 2000)),
			crop("limon", "Limón persa", 135, 350, 150, UnitSack, 90, MarketGeneral, nil,
				costs(2000, 4000, 5000, 3500, 7000, 3500, 1500)),
		),
		Irrigation: map[Irrigation]IrrigationProfile{
			IrrigationDrip:      {Score: 250, Efficiency: 1.3},
			IrrigationSprinkler: {Score: 200, Efficiency: 1.15},
			IrrigationGravity:   {Score: 150, Efficiency: 1.0},
			IrrigationRainFed:   {Score: 80, Efficiency: 0.8},
		},
		Channels: map[Channel]ChannelProfile{
			ChannelExport:      {Score: 200, PriceMultiplier: 1.25, BaseRisk: 0.35},
			ChannelCooperative: {Score: 180, PriceMultiplier: 1.10, BaseRisk: 0.20},
			ChannelWholesale:   {Score: 150, PriceMultiplier: 1.00, BaseRisk: 0.25},
			ChannelLocal:       {Score: 120, PriceMultiplier: 0.90, BaseRisk: 0.30},
		},
		Locations: map[string]LocationProfile{
			"alta_verapaz":   {Name: "Alta Verapaz", Score: 120},
			"baja_verapaz":   {Name: "Baja Verapaz", Score: 110},
			"chimaltenango":  {Name: "Chimaltenango", Score: 145},
			"chiquimula":     {Name: "Chiquimula", Score: 95},
			"el_progreso":    {Name: "El Progreso", Score: 95},
			"escuintla":      {Name: "Escuintla", Score: 130},
			"guatemala":      {Name: "Guatemala", Score: 100},
			"huehuetenango":  {Name: "Huehuetenango", Score: 140},
			"izabal":         {Name: "Izabal", Score: 115},
			"jalapa":         {Name: "Jalapa", Score: 105},
			"jutiapa":        {Name: "Jutiapa", Score: 105},
			"peten":          {Name: "Petén", Score: 110},
			"quetzaltenango": {Name: "Quetzaltenango", Score: 135},
			"quiche":         {Name: "Quiché", Score: 115},
			"retalhuleu":     {Name: "Retalhuleu", Score: 125},
			"sacatepequez":   {Name: "Sacatepéquez", Score: 130},
			"san_marcos":     {Name: "San Marcos", Score: 125},
			"santa_rosa":     {Name: "Santa Rosa", Score: 115},
			"solola":         {Name: "Sololá", Score: 130},
			"suchitepequez":  {Name: "Suchitepéquez", Score: 125},
			"totonicapan":    {Name: "Totonicapán", Score: 110},
			"zacapa":         {Name: "Zacapa", Score: 90},
		},
	}
}
