package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArea(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"2.5", 2.5, true},
		{"2,5", 2.5, true},
		{" 3 ", 3, true},
		{"2 hectáreas", 2, true},
		{"10 ha", 10, true},
		{"1,250.5", 1250.5, true},
		{"2 manzanas", 2 * HectaresPerManzana, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"dos", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"2 cuerdas", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseArea(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCommands(t *testing.T) {
	assert.True(t, IsReset("REINICIAR"))
	assert.True(t, IsReset(" reset "))
	assert.False(t, IsReset("reiniciar todo"))

	assert.True(t, IsHelp("Ayuda"))
	assert.False(t, IsHelp("maiz"))
}

func TestParseAnswer(t *testing.T) {
	assert.Equal(t, AnswerYes, ParseAnswer("Sí"))
	assert.Equal(t, AnswerYes, ParseAnswer("si!"))
	assert.Equal(t, AnswerYes, ParseAnswer("yes"))
	assert.Equal(t, AnswerNo, ParseAnswer("No."))
	assert.Equal(t, AnswerOther, ParseAnswer("tal vez"))
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"2", 2, true},
		{"2.", 2, true},
		{"3)", 3, true},
		{"#1", 1, true},
		{"opción 4", 4, true},
		{"Opcion 1", 1, true},
		{"op. 2", 2, true},
		{"5", 0, false},
		{"0", 0, false},
		{"2.5", 0, false},
		{"opcion", 0, false},
		{"goteo", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOption(tt.input, 4)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
