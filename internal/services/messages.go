package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
)

// Reply texts sent to farmers. All user-facing copy lives here.
const (
	msgWelcome = "¡Hola! 🌱 Bienvenido a AgroCrédito.\n\n" +
		"Le haré 5 preguntas cortas sobre su proyecto agrícola para evaluar un microcrédito. " +
		"Puede escribir *reiniciar* en cualquier momento para empezar de nuevo, o *ayuda* para repetir la pregunta."

	msgAskCrop     = "🌾 ¿Qué cultivo desea sembrar? (por ejemplo: maíz, frijol, tomate, café)"
	msgAskArea     = "📐 ¿Cuántas hectáreas va a sembrar de %s? Escriba solo el número, por ejemplo 2.5"
	msgAskLocation = "📍 ¿En qué departamento está su terreno? (por ejemplo: Huehuetenango, Chimaltenango)"

	msgEmptyCrop     = "No recibí el nombre del cultivo. " + msgAskCrop
	msgBadArea       = "❗ No entendí el área. Escriba un número mayor que cero, por ejemplo 2 o 2,5 (hectáreas)."
	msgBadIrrigation = "❗ No reconocí el tipo de riego. Responda con una de estas opciones:"
	msgBadChannel    = "❗ No reconocí cómo venderá su cosecha. Responda con una de estas opciones:"
	msgEmptyLocation = "No recibí la ubicación. " + msgAskLocation

	msgReset        = "🔄 Listo, empezamos de nuevo."
	msgLoanCreated  = "✅ ¡Gracias! Registramos su solicitud de crédito por %s. Un asesor la revisará y le contactará por este medio."
	msgLoanExists   = "Su solicitud de crédito ya fue registrada. Un asesor le contactará pronto."
	msgClosing      = "Entendido. Si cambia de opinión, escriba *sí*. Para evaluar otro proyecto, escriba *reiniciar*."
	msgGenericRetry = "😕 Tuvimos un problema al procesar su mensaje. Por favor intente de nuevo en unos minutos."
	msgReminder     = "👋 Hola, su evaluación de AgroCrédito quedó pendiente. Cuando guste, continuamos:"
	msgOfferPrompt  = "¿Desea solicitar el crédito? Responda *SÍ* o *NO*."
	msgNotEligible  = "Por ahora su proyecto no califica para el crédito. Revise las recomendaciones y escriba *reiniciar* para evaluar otro proyecto."
	msgRepeated     = "Ya recibimos esa respuesta en la pregunta anterior."
	msgOptionHint   = "Si también es su respuesta a esta pregunta, escriba el nombre de la opción o *opción N*."
)

// FormatQuetzales renders an amount as "Q 1,234.56"
func FormatQuetzales(v float64) string {
	return "Q " + humanize.FormatFloat("#,###.##", v)
}

func formatNumber(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Welcome is the first reply a new farmer receives
func Welcome() string {
	return msgWelcome + "\n\n" + msgAskCrop
}

// Prompt is the question asked while waiting in state s
func Prompt(s models.IntakeState, data models.SessionData) string {
	switch s {
	case models.StateInicio:
		return msgAskCrop
	case models.StateCultivo:
		return fmt.Sprintf(msgAskArea, cropLabel(data.Crop))
	case models.StateHectareas:
		return irrigationQuestion()
	case models.StateRiego:
		return channelQuestion()
	case models.StateComercializacion:
		return msgAskLocation
	case models.StateUbicacion:
		return "⏳ Estamos calculando su evaluación. Escriba cualquier mensaje para ver el resultado."
	case models.StateFinalizado:
		return msgOfferPrompt
	}
	return msgAskCrop
}

// repeated answers a message that equals the previous answer
func repeated(s models.IntakeState, data models.SessionData) string {
	switch s {
	case models.StateHectareas, models.StateRiego:
		return msgRepeated + " " + msgOptionHint + "\n\n" + Prompt(s, data)
	case models.StateFinalizado:
		if !data.Eligible() {
			return msgRepeated + " " + msgNotEligible
		}
	}
	return msgRepeated + "\n\n" + Prompt(s, data)
}

func irrigationQuestion() string {
	return "💧 ¿Qué tipo de riego usará?\n" + irrigationOptions()
}

func channelQuestion() string {
	return "🚚 ¿Cómo venderá su cosecha?\n" + channelOptions()
}

func irrigationOptions() string {
	var b strings.Builder
	for i, irr := range reference.Irrigations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, irr.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}

func channelOptions() string {
	var b strings.Builder
	for i, ch := range reference.Channels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ch.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}

func cropLabel(key string) string {
	if key == "" {
		return "su cultivo"
	}
	return strings.ReplaceAll(key, "_", " ")
}

var tierText = map[scoring.Tier]string{
	scoring.TierApproved:   "✅ *PRE-APROBADO*: su proyecto califica para aprobación automática.",
	scoring.TierEvaluation: "🟡 *EN EVALUACIÓN*: un asesor revisará su proyecto.",
	scoring.TierRejected:   "🔴 *NO CALIFICA* por ahora.",
}

// Summary renders the final evaluation of an intake
func Summary(score scoring.Result, proj projection.Projection) string {
	var b strings.Builder

	b.WriteString("📊 *Resultado de su evaluación*\n\n")
	b.WriteString(tierText[score.Tier])
	fmt.Fprintf(&b, "\nPuntaje: *%d* de 1000\n", score.Total)
	fmt.Fprintf(&b, "• Cultivo: %d\n• Área: %d\n• Riego: %d\n• Comercialización: %d\n• Ubicación: %d\n",
		score.Crop, score.Area, score.Irrigation, score.Channel, score.Location)

	b.WriteString("\n💰 *Proyección financiera*\n")
	fmt.Fprintf(&b, "• Producción esperada: %s qq\n", formatNumber(proj.ExpectedYieldQQ))
	fmt.Fprintf(&b, "• Precio estimado: %s por qq\n", FormatQuetzales(proj.PricePerQQ))
	fmt.Fprintf(&b, "• Ingreso esperado: %s\n", FormatQuetzales(proj.ExpectedRevenue))
	fmt.Fprintf(&b, "• Costo total: %s\n", FormatQuetzales(proj.TotalCost))
	fmt.Fprintf(&b, "• Ganancia esperada: %s\n", FormatQuetzales(proj.ExpectedProfit))
	fmt.Fprintf(&b, "• Retorno (ROI): %s%%\n", formatNumber(proj.ROIPercent))
	fmt.Fprintf(&b, "• Riesgo: %s\n", riskLabel(proj.RiskScore))

	if proj.SubstitutedCrop != "" {
		fmt.Fprintf(&b, "\nℹ️ No tenemos datos de su cultivo; usamos los de %s como referencia.\n", cropLabel(proj.SubstitutedCrop))
	}

	if len(score.Recommendations) > 0 {
		b.WriteString("\n📝 *Recomendaciones*\n")
		for _, r := range score.Recommendations {
			b.WriteString("• " + r + "\n")
		}
	}

	if score.Tier != scoring.TierRejected {
		b.WriteString("\n" + msgOfferPrompt)
	} else {
		b.WriteString("\nEscriba *reiniciar* para evaluar otro proyecto.")
	}
	return b.String()
}

func riskLabel(r float64) string {
	pct := fmt.Sprintf("%.0f%%", math.Round(r*100))
	switch {
	case r < 0.25:
		return "bajo (" + pct + ")"
	case r < 0.45:
		return "medio (" + pct + ")"
	default:
		return "alto (" + pct + ")"
	}
}

// Help repeats the current question
func Help(s models.IntakeState, data models.SessionData) string {
	return "ℹ️ Escriba *reiniciar* para empezar de nuevo.\n\n" + Prompt(s, data)
}

// Reminder nudges a farmer who left the intake half way
func Reminder(s models.IntakeState, data models.SessionData) string {
	return msgReminder + "\n\n" + Prompt(s, data)
}
