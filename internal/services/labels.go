package services

import (
	"fmt"
	"math"
	"strconv"
)

// Translator renders a localized message for key. Unknown keys render as the
// key itself.
type Translator func(key string, args ...any) string

// PassthroughTranslator formats the key as a format string.
func PassthroughTranslator(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf(key, args...)
}

func translatorOrDefault(translate Translator) Translator {
	if translate == nil {
		return PassthroughTranslator
	}
	return translate
}

// formatDecimal prints whole values with one decimal (38.0) and keeps other
// values at their shortest form (38.55).
func formatDecimal(value float64) string {
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', 1, 64)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func roundToTenth(value float64) float64 {
	return math.RoundToEven(value*10) / 10
}
