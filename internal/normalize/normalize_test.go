package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrocredito/agrocredito-backend/internal/reference"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "maiz", Fold("  MAÍZ "))
	assert.Equal(t, "aspersion", Fold("Aspersión"))
	assert.Equal(t, "alta verapaz", Fold("Alta   Verapaz"))
	assert.Equal(t, "", Fold("   "))
	assert.Equal(t, "alta_verapaz", Key("Alta Verapaz"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("goteo", "goteo"))
	assert.InDelta(t, 0.8, Similarity("gotee", "goteo"), 1e-9)
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestMatchIrrigation(t *testing.T) {
	r := NewResolver(reference.Default())

	tests := []struct {
		input  string
		want   reference.Irrigation
		wantOK bool
	}{
		{"goteo", reference.IrrigationDrip, true},
		{"GOTEO", reference.IrrigationDrip, true},
		{"Riego por goteo", reference.IrrigationDrip, true},
		{"aspersión", reference.IrrigationSprinkler, true},
		{"aspercion", reference.IrrigationSprinkler, true},
		{"Gravedad", reference.IrrigationGravity, true},
		{"temporal", reference.IrrigationRainFed, true},
		{"sin riego", reference.IrrigationRainFed, true},
		{"4", reference.IrrigationRainFed, true},
		{"opción 1", reference.IrrigationDrip, true},
		{"7", "", false},
		{"helicoptero", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.MatchIrrigation(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchChannel(t *testing.T) {
	r := NewResolver(reference.Default())

	tests := []struct {
		input  string
		want   reference.Channel
		wantOK bool
	}{
		{"exportación", reference.ChannelExport, true},
		{"Exportacion", reference.ChannelExport, true},
		{"cooperativa", reference.ChannelCooperative, true},
		{"mayorista", reference.ChannelWholesale, true},
		{"mercado local", reference.ChannelLocal, true},
		{"mercado_local", reference.ChannelLocal, true},
		{"2", reference.ChannelCooperative, true},
		{"3.", reference.ChannelWholesale, true},
		{"trueque", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.MatchChannel(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCrop(t *testing.T) {
	r := NewResolver(reference.Default())

	key, ok := r.ResolveCrop("Maíz")
	assert.True(t, ok)
	assert.Equal(t, "maiz", key)

	key, ok = r.ResolveCrop("tomates")
	assert.True(t, ok)
	assert.Equal(t, "tomate", key)

	key, ok = r.ResolveCrop("tomat")
	assert.True(t, ok)
	assert.Equal(t, "tomate", key)

	key, ok = r.ResolveCrop("Arveja China")
	assert.True(t, ok)
	assert.Equal(t, "arveja", key)

	key, ok = r.ResolveCrop("Pitahaya roja")
	assert.False(t, ok)
	assert.Equal(t, "pitahaya_roja", key)
}

func TestResolveLocation(t *testing.T) {
	r := NewResolver(reference.Default())

	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"Huehuetenango", "huehuetenango", true},
		{"huehuetenago", "huehuetenango", true},
		{"Petén", "peten", true},
		{"Alta Verapaz", "alta_verapaz", true},
		{"Xela", "quetzaltenango", true},
		{"Aldea Chichimuch, Huehuetenango", "huehuetenango", true},
		{"Marte", "marte", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.ResolveLocation(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithFloorIsStricter(t *testing.T) {
	r := NewResolver(reference.Default())

	_, ok := r.MatchIrrigation("aspercion")
	assert.True(t, ok)

	_, ok = r.WithFloor(0.95).MatchIrrigation("aspercion")
	assert.False(t, ok)
}
