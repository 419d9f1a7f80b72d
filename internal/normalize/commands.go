package normalize

import (
	"math"
	"strconv"
	"strings"
)

// HectaresPerManzana converts the manzana, still common in Guatemala, to hectares
const HectaresPerManzana = 0.6988

var (
	resetCommands = map[string]bool{"reiniciar": true, "reset": true, "reinicio": true}
	helpCommands  = map[string]bool{"ayuda": true, "help": true, "?": true}
	yesAnswers    = map[string]bool{"si": true, "yes": true, "s": true, "claro": true, "dale": true}
	noAnswers     = map[string]bool{"no": true, "n": true, "no gracias": true}

	optionPrefixes = []string{"opcion", "opc", "op", "numero", "#"}
)

// IsReset reports whether the text is a reset command
func IsReset(text string) bool {
	return resetCommands[Fold(text)]
}

// IsHelp reports whether the text asks for help
func IsHelp(text string) bool {
	return helpCommands[Fold(text)]
}

// Answer is a yes/no reply
type Answer int

const (
	AnswerOther Answer = iota
	AnswerYes
	AnswerNo
)

// ParseAnswer classifies a yes/no reply. Trailing punctuation is ignored.
func ParseAnswer(text string) Answer {
	folded := strings.Trim(Fold(text), " .!¡¿?")
	switch {
	case yesAnswers[folded]:
		return AnswerYes
	case noAnswers[folded]:
		return AnswerNo
	}
	return AnswerOther
}

// ParseArea reads a positive area in hectares. A decimal comma or point is
// accepted, as is a trailing unit word; manzanas are converted to hectares.
func ParseArea(text string) (float64, bool) {
	folded := Fold(text)
	factor := 1.0

	fields := strings.Fields(folded)
	if len(fields) == 0 {
		return 0, false
	}
	if len(fields) == 2 {
		switch fields[1] {
		case "ha", "has", "hectarea", "hectareas":
		case "mz", "manzana", "manzanas":
			factor = HectaresPerManzana
		default:
			return 0, false
		}
	} else if len(fields) > 2 {
		return 0, false
	}

	number := fields[0]
	if strings.Contains(number, ",") {
		if strings.Contains(number, ".") {
			// 1,250.5
			number = strings.ReplaceAll(number, ",", "")
		} else {
			number = strings.Replace(number, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v * factor, true
}

// ParseOption reads the 1-based number of one of n listed options: "2",
// "2.", "2)", "#2" or "opción 2".
func ParseOption(text string, n int) (int, bool) {
	folded := Fold(text)
	for _, prefix := range optionPrefixes {
		if rest, ok := strings.CutPrefix(folded, prefix); ok {
			folded = strings.TrimSpace(strings.TrimPrefix(rest, "."))
			break
		}
	}
	folded = strings.TrimRight(folded, ".)")

	v, err := strconv.Atoi(folded)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v, true
}
