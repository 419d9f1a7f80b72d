// Package reference holds the canonical agronomic and market tables the
// scoring and projection engines read, together with the typed inputs they
// accept. Every lookup answers unknown keys with a documented default.
package reference

import (
	"fmt"
	"math"
	"strings"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
)

// Irrigation is the canonical irrigation category
type Irrigation string

const (
	IrrigationDrip      Irrigation = "goteo"
	IrrigationSprinkler Irrigation = "aspersion"
	IrrigationGravity   Irrigation = "gravedad"
	IrrigationRainFed   Irrigation = "temporal"
)

// Irrigations lists the categories in descending efficiency
var Irrigations = []Irrigation{IrrigationDrip, IrrigationSprinkler, IrrigationGravity, IrrigationRainFed}

// Valid reports whether i is one of the four categories
func (i Irrigation) Valid() bool {
	switch i {
	case IrrigationDrip, IrrigationSprinkler, IrrigationGravity, IrrigationRainFed:
		return true
	}
	return false
}

// Label is the user-facing name
func (i Irrigation) Label() string {
	switch i {
	case IrrigationDrip:
		return "Goteo"
	case IrrigationSprinkler:
		return "Aspersión"
	case IrrigationGravity:
		return "Gravedad"
	case IrrigationRainFed:
		return "Temporal (lluvia)"
	}
	return string(i)
}

// Channel is the canonical commercialization channel
type Channel string

const (
	ChannelExport      Channel = "exportacion"
	ChannelCooperative Channel = "cooperativa"
	ChannelWholesale   Channel = "mayorista"
	ChannelLocal       Channel = "mercado_local"
)

// Channels lists the channels from highest to lowest price
var Channels = []Channel{ChannelExport, ChannelCooperative, ChannelWholesale, ChannelLocal}

// Valid reports whether c is one of the four channels
func (c Channel) Valid() bool {
	switch c {
	case ChannelExport, ChannelCooperative, ChannelWholesale, ChannelLocal:
		return true
	}
	return false
}

// Label is the user-facing name
func (c Channel) Label() string {
	switch c {
	case ChannelExport:
		return "Exportación"
	case ChannelCooperative:
		return "Cooperativa"
	case ChannelWholesale:
		return "Mayorista / intermediario"
	case ChannelLocal:
		return "Mercado local"
	}
	return string(c)
}

// ProjectInputs is the normalized view of a completed intake
type ProjectInputs struct {
	Crop       string     `json:"crop"`
	AreaHa     float64    `json:"area_ha"`
	Irrigation Irrigation `json:"irrigation"`
	Channel    Channel    `json:"channel"`
	Location   string     `json:"location"`
}

// Validate checks what the engines cannot default: a crop key and a usable
// area. Irrigation, channel and location fall back to neutral table values.
func (p ProjectInputs) Validate() error {
	if strings.TrimSpace(p.Crop) == "" {
		return apperr.Validation("crop is required")
	}
	if math.IsNaN(p.AreaHa) || math.IsInf(p.AreaHa, 0) || p.AreaHa <= 0 {
		return apperr.Validation(fmt.Sprintf("area must be a positive number, got %v", p.AreaHa))
	}
	return nil
}
