package normalize

import "github.com/agrocredito/agrocredito-backend/internal/reference"

var cropAliases = map[string]string{
	"maiz blanco":     "maiz",
	"maiz amarillo":   "maiz",
	"elote":           "maiz",
	"milpa":           "maiz",
	"frijol negro":    "frijol",
	"frijoles":        "frijol",
	"tomates":         "tomate",
	"jitomate":        "tomate",
	"papas":           "papa",
	"patata":          "papa",
	"cafe pergamino":  "cafe",
	"cafe oro":        "cafe",
	"cafeto":          "cafe",
	"cardamomo verde": "cardamomo",
	"aguacate hass":   "aguacate",
	"palta":           "aguacate",
	"brocoli":         "brocoli",
	"arveja china":    "arveja",
	"arveja dulce":    "arveja",
	"ejote frances":   "ejote",
	"chile pimiento":  "chile",
	"pimiento":        "chile",
	"cebollas":        "cebolla",
	"bananos":         "banano",
	"guineo":          "banano",
	"platanos":        "platano",
	"limon persa":     "limon",
	"limones":         "limon",
}

var locationAliases = map[string]string{
	"xela":                  "quetzaltenango",
	"huehue":                "huehuetenango",
	"ciudad de guatemala":   "guatemala",
	"capital":               "guatemala",
	"antigua":               "sacatepequez",
	"antigua guatemala":     "sacatepequez",
	"coban":                 "alta_verapaz",
	"salama":                "baja_verapaz",
	"flores":                "peten",
	"santa cruz del quiche": "quiche",
	"el quiche":             "quiche",
	"mazatenango":           "suchitepequez",
	"puerto barrios":        "izabal",
	"progreso":              "el_progreso",
	"guastatoya":            "el_progreso",
	"cuilapa":               "santa_rosa",
	"panajachel":            "solola",
}

var irrigationAliases = map[string]reference.Irrigation{
	"goteo":           reference.IrrigationDrip,
	"por goteo":       reference.IrrigationDrip,
	"riego por goteo": reference.IrrigationDrip,
	"drip":            reference.IrrigationDrip,
	"aspersion":       reference.IrrigationSprinkler,
	"por aspersion":   reference.IrrigationSprinkler,
	"aspersores":      reference.IrrigationSprinkler,
	"microaspersion":  reference.IrrigationSprinkler,
	"sprinkler":       reference.IrrigationSprinkler,
	"gravedad":        reference.IrrigationGravity,
	"por gravedad":    reference.IrrigationGravity,
	"inundacion":      reference.IrrigationGravity,
	"surcos":          reference.IrrigationGravity,
	"gravity":         reference.IrrigationGravity,
	"temporal":        reference.IrrigationRainFed,
	"lluvia":          reference.IrrigationRainFed,
	"de lluvia":       reference.IrrigationRainFed,
	"ninguno":         reference.IrrigationRainFed,
	"sin riego":       reference.IrrigationRainFed,
	"no tengo riego":  reference.IrrigationRainFed,
	"rain-fed":        reference.IrrigationRainFed,
	"none":            reference.IrrigationRainFed,
}

var channelAliases = map[string]reference.Channel{
	"exportacion":   reference.ChannelExport,
	"exportar":      reference.ChannelExport,
	"exportador":    reference.ChannelExport,
	"export":        reference.ChannelExport,
	"cooperativa":   reference.ChannelCooperative,
	"asociacion":    reference.ChannelCooperative,
	"cooperative":   reference.ChannelCooperative,
	"mayorista":     reference.ChannelWholesale,
	"intermediario": reference.ChannelWholesale,
	"coyote":        reference.ChannelWholesale,
	"wholesale":     reference.ChannelWholesale,
	"mercado local": reference.ChannelLocal,
	"mercado":       reference.ChannelLocal,
	"local":         reference.ChannelLocal,
	"venta local":   reference.ChannelLocal,
	"plaza":         reference.ChannelLocal,
}
