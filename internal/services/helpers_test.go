package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/careline/internal/i18n"
)

var testZone = time.FixedZone("CST", 8*3600)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, testZone)
}

func clockAt(year int, month time.Month, dayOfMonth int) FixedClock {
	return FixedClock{Instant: time.Date(year, month, dayOfMonth, 10, 30, 0, 0, testZone)}
}

func intPtr(value int) *int {
	return &value
}

func floatPtr(value float64) *float64 {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func stringPtr(value string) *string {
	return &value
}

func translatorFor(t *testing.T, language string) Translator {
	t.Helper()

	manager, err := i18n.NewEmbeddedManager(language)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	return manager.Translator(language)
}
