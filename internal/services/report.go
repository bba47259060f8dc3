package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/careline/internal/models"
)

const doingWellEnergyCeiling = 1.5

// CaregiverReport renders the visit-preparation summary for cycle at day.
// An overrunning cycle is reported as completed with its overrun instead of
// a progress line.
func CaregiverReport(cycle models.Cycle, day int, stats KeyStats, today time.Time, translate Translator) string {
	translate = translatorOrDefault(translate)
	lines := []string{translate("report.caregiver.title")}

	if overrun := CycleOverrun(cycle, day); overrun > 0 {
		lines = append(lines,
			translate("report.caregiver.overdue", cycle.CycleNo, cycle.LengthDays, overrun),
			translate("report.caregiver.new_cycle_hint"),
		)
	} else {
		lines = append(lines, translate("report.caregiver.progress", cycle.CycleNo, day, cycle.LengthDays, FormatDay(today)))
	}
	if cycle.Regimen != nil && strings.TrimSpace(*cycle.Regimen) != "" {
		lines = append(lines, translate("report.caregiver.regimen", *cycle.Regimen))
	}

	lines = append(lines, "")
	if stats.MaxNausea != nil {
		lines = append(lines, translate("report.peak.nausea", *stats.MaxNausea, dayLabel(stats.MaxNauseaDay)))
	}
	if stats.MinEnergy != nil {
		lines = append(lines, translate("report.peak.energy", *stats.MinEnergy, dayLabel(stats.MinEnergyDay)))
	}
	if stats.MaxStool != nil {
		lines = append(lines, translate("report.peak.stool", *stats.MaxStool, dayLabel(stats.MaxStoolDay)))
	}
	if stats.MaxDiarrhea != nil {
		lines = append(lines, translate("report.peak.diarrhea", *stats.MaxDiarrhea, dayLabel(stats.MaxDiarrheaDay)))
	}

	if len(stats.FeverEvents) > 0 {
		lines = append(lines, "", translate("report.fever.header", len(stats.FeverEvents)))
		for _, event := range stats.FeverEvents {
			lines = append(lines, translate("report.fever.line", dayLabel(event.Day), formatDecimal(event.Temp)))
		}
	}
	if len(stats.BloodEvents) > 0 {
		lines = append(lines, "", translate("report.blood.header", len(stats.BloodEvents)))
	}

	lines = append(lines, "", translate("report.average.header"))
	if stats.AvgEnergy7d != nil {
		lines = append(lines, translate("report.average.energy", formatDecimal(*stats.AvgEnergy7d)))
	}
	if stats.AvgNausea7d != nil {
		lines = append(lines, translate("report.average.nausea", formatDecimal(*stats.AvgNausea7d)))
	}
	if stats.AvgStool7d != nil {
		lines = append(lines, translate("report.average.stool", formatDecimal(*stats.AvgStool7d)))
	}

	if len(stats.WorstDays) > 0 {
		lines = append(lines, "", translate("report.worst.header"))
		for _, worst := range stats.WorstDays {
			if len(worst.Reasons) == 0 {
				continue
			}
			lines = append(lines, translate("report.worst.line", dayLabel(worst.Day), strings.Join(worst.Reasons, ", ")))
		}
	}

	lines = append(lines, "", translate("report.footer", FormatDay(today)))
	return strings.Join(lines, "\n")
}

// CycleCompletionPercent is day/length*100 rounded half to even, kept
// within 0..100.
func CycleCompletionPercent(cycle models.Cycle, day int) int {
	if cycle.LengthDays <= 0 {
		return 0
	}
	percent := int(math.RoundToEven(float64(day) / float64(cycle.LengthDays) * 100))
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}

// PatientReport renders the short encouragement text shown to the patient.
func PatientReport(cycle models.Cycle, day int, stats KeyStats, translate Translator) string {
	translate = translatorOrDefault(translate)
	percent := CycleCompletionPercent(cycle, day)

	var status string
	switch {
	case percent >= 100:
		status = translate("report.patient.status.complete")
	case stats.AvgEnergy7d != nil && *stats.AvgEnergy7d <= doingWellEnergyCeiling:
		status = translate("report.patient.status.doing_well")
	case day > 7:
		status = translate("report.patient.status.worst_behind")
	default:
		status = translate("report.patient.status.recovering")
	}

	displayDay := day
	if displayDay > cycle.LengthDays {
		displayDay = cycle.LengthDays
	}

	lines := []string{
		translate("report.patient.headline", cycle.CycleNo, displayDay),
		"",
		translate("report.patient.progress", percent),
		"",
		status,
		translate("report.patient.cheer"),
	}
	return strings.Join(lines, "\n")
}

func dayLabel(day *int) string {
	if day == nil {
		return "-"
	}
	return strconv.Itoa(*day)
}
