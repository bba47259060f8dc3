package services

import (
	"sort"

	"github.com/terraincognita07/careline/internal/models"
)

const (
	DefaultSummaryDays = 14
	MinSummaryDays     = 1
	MaxSummaryDays     = 60
	maxAverageWindow   = 7
	worstDaysLimit     = 3

	worstEnergyThreshold = 3
	worstNauseaThreshold = 2
	worstStoolThreshold  = 5
	feverScore           = 3
	frequentStoolScore   = 2
)

type FeverEvent struct {
	Date string  `json:"date"`
	Day  *int    `json:"day"`
	Temp float64 `json:"temp"`
}

type BloodEvent struct {
	Date  string `json:"date"`
	Day   *int   `json:"day"`
	Count int    `json:"count"`
}

type WorstDay struct {
	Day     *int     `json:"day"`
	Date    string   `json:"date"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// KeyStats summarises one cycle's records.
//
// Higher energy scores mean a worse state, so MinEnergy holds the highest
// recorded energy value. The name is kept for API compatibility.
type KeyStats struct {
	MaxNausea      *int `json:"max_nausea"`
	MaxNauseaDay   *int `json:"max_nausea_day"`
	MinEnergy      *int `json:"min_energy"`
	MinEnergyDay   *int `json:"min_energy_day"`
	MaxStool       *int `json:"max_stool"`
	MaxStoolDay    *int `json:"max_stool_day"`
	MaxDiarrhea    *int `json:"max_diarrhea"`
	MaxDiarrheaDay *int `json:"max_diarrhea_day"`

	FeverEvents []FeverEvent `json:"fever_events"`
	BloodEvents []BloodEvent `json:"blood_events"`

	AvgEnergy7d *float64 `json:"avg_energy_7d"`
	AvgNausea7d *float64 `json:"avg_nausea_7d"`
	AvgStool7d  *float64 `json:"avg_stool_7d"`
	AvgSleep7d  *float64 `json:"avg_sleep_7d"`

	WorstDays []WorstDay `json:"worst_days"`
}

// RecentWindow turns a caller's day window into the averaging window.
func RecentWindow(days int) int {
	if days < MinSummaryDays {
		days = DefaultSummaryDays
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}
	if days > maxAverageWindow {
		return maxAverageWindow
	}
	return days
}

// BuildKeyStats scans records, ordered by date ascending. Unset fields never
// count towards a peak or an average.
func BuildKeyStats(records []models.DailyRecord, recentWindow int, translate Translator) KeyStats {
	translate = translatorOrDefault(translate)
	stats := KeyStats{
		FeverEvents: []FeverEvent{},
		BloodEvents: []BloodEvent{},
		WorstDays:   []WorstDay{},
	}
	if len(records) == 0 {
		return stats
	}

	stats.MaxNausea, stats.MaxNauseaDay = peakOf(records, func(record models.DailyRecord) *int { return record.Nausea })
	stats.MinEnergy, stats.MinEnergyDay = peakOf(records, func(record models.DailyRecord) *int { return record.Energy })
	stats.MaxStool, stats.MaxStoolDay = peakOf(records, func(record models.DailyRecord) *int { return record.StoolCount })
	stats.MaxDiarrhea, stats.MaxDiarrheaDay = peakOf(records, func(record models.DailyRecord) *int { return record.Diarrhea })

	for _, record := range records {
		if hasFever(record) {
			stats.FeverEvents = append(stats.FeverEvents, FeverEvent{
				Date: FormatDay(record.Date),
				Day:  cloneInt(record.CycleDay),
				Temp: *record.TempC,
			})
		}
		if record.StoolBloodCount > 0 {
			stats.BloodEvents = append(stats.BloodEvents, BloodEvent{
				Date:  FormatDay(record.Date),
				Day:   cloneInt(record.CycleDay),
				Count: record.StoolBloodCount,
			})
		}
	}

	recent := mostRecent(records, recentWindow)
	stats.AvgEnergy7d = averageOf(recent, func(record models.DailyRecord) *int { return record.Energy })
	stats.AvgNausea7d = averageOf(recent, func(record models.DailyRecord) *int { return record.Nausea })
	stats.AvgStool7d = averageOf(recent, func(record models.DailyRecord) *int { return record.StoolCount })
	stats.AvgSleep7d = averageOf(recent, func(record models.DailyRecord) *int { return record.SleepQuality })

	stats.WorstDays = worstDays(records, translate)
	return stats
}

// SeverityScore is energy + nausea, plus 3 for a fever with a temperature
// and 2 for five or more stools.
func SeverityScore(record models.DailyRecord) int {
	score := 0
	if record.Energy != nil {
		score += *record.Energy
	}
	if record.Nausea != nil {
		score += *record.Nausea
	}
	if hasFever(record) {
		score += feverScore
	}
	if record.StoolCount != nil && *record.StoolCount >= worstStoolThreshold {
		score += frequentStoolScore
	}
	return score
}

func severityReasons(record models.DailyRecord, translate Translator) []string {
	reasons := make([]string, 0, 4)
	if record.Energy != nil && *record.Energy >= worstEnergyThreshold {
		reasons = append(reasons, translate("stats.reason.energy", *record.Energy))
	}
	if record.Nausea != nil && *record.Nausea >= worstNauseaThreshold {
		reasons = append(reasons, translate("stats.reason.nausea", *record.Nausea))
	}
	if hasFever(record) {
		reasons = append(reasons, translate("stats.reason.fever", formatDecimal(*record.TempC)))
	}
	if record.StoolCount != nil && *record.StoolCount >= worstStoolThreshold {
		reasons = append(reasons, translate("stats.reason.stool", *record.StoolCount))
	}
	return reasons
}

func worstDays(records []models.DailyRecord, translate Translator) []WorstDay {
	ranked := make([]WorstDay, 0, len(records))
	for _, record := range records {
		ranked = append(ranked, WorstDay{
			Day:     cloneInt(record.CycleDay),
			Date:    FormatDay(record.Date),
			Score:   SeverityScore(record),
			Reasons: severityReasons(record, translate),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > worstDaysLimit {
		ranked = ranked[:worstDaysLimit]
	}
	return ranked
}

func hasFever(record models.DailyRecord) bool {
	return record.Fever && record.TempC != nil && *record.TempC != 0
}

// peakOf returns the highest value and its cycle day. The earliest record
// wins a tie.
func peakOf(records []models.DailyRecord, field func(models.DailyRecord) *int) (*int, *int) {
	var peak *int
	var peakDay *int
	for _, record := range records {
		value := field(record)
		if value == nil {
			continue
		}
		if peak == nil || *value > *peak {
			peak = cloneInt(value)
			peakDay = cloneInt(record.CycleDay)
		}
	}
	return peak, peakDay
}

func mostRecent(records []models.DailyRecord, window int) []models.DailyRecord {
	sorted := make([]models.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if window < 0 {
		window = 0
	}
	if len(sorted) > window {
		sorted = sorted[:window]
	}
	return sorted
}

func averageOf(records []models.DailyRecord, field func(models.DailyRecord) *int) *float64 {
	total := 0
	count := 0
	for _, record := range records {
		if value := field(record); value != nil {
			total += *value
			count++
		}
	}
	if count == 0 {
		return nil
	}
	average := roundToTenth(float64(total) / float64(count))
	return &average
}
