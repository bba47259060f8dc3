package services

import (
	"bytes"
	"fmt"

	"github.com/terraincognita07/careline/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheetName = "Records"
	statsSheetName   = "Key stats"
	reportSheetName  = "Report"
)

var exportRecordColumns = []string{
	"export.column.date",
	"export.column.cycle_day",
	"export.column.energy",
	"export.column.nausea",
	"export.column.appetite",
	"export.column.sleep_quality",
	"export.column.fever",
	"export.column.temp_c",
	"export.column.stool_count",
	"export.column.stool_blood",
	"export.column.stool_mucus",
	"export.column.stool_tenesmus",
	"export.column.diarrhea",
	"export.column.numbness",
	"export.column.mouth_sore",
	"export.column.tough_day",
	"export.column.note",
}

var exportRecordColumnWidths = []float64{12, 10, 8, 8, 8, 8, 8, 8, 10, 10, 10, 10, 8, 8, 8, 10, 40}

type ExportService struct {
	cycles  SummaryCycleReader
	records SummaryRecordReader
	clock   Clock
}

func NewExportService(cycles SummaryCycleReader, records SummaryRecordReader, clock Clock) *ExportService {
	return &ExportService{cycles: cycles, records: records, clock: clock}
}

// CycleWorkbook renders a cycle's records, key stats and caregiver report as
// an xlsx workbook. It also returns the suggested file name.
func (service *ExportService) CycleWorkbook(familyID uint, cycleNo *int, translate Translator) ([]byte, string, error) {
	translate = translatorOrDefault(translate)
	cycle, err := service.cycles.Resolve(familyID, cycleNo)
	if err != nil {
		return nil, "", err
	}
	records, err := service.records.ForCycle(familyID, cycle.CycleNo)
	if err != nil {
		return nil, "", err
	}

	today := service.clock.Today()
	day := DaysBetween(cycle.StartDate, today) + 1
	stats := BuildKeyStats(records, RecentWindow(DefaultSummaryDays), translate)
	report := CaregiverReport(cycle, day, stats, today, translate)

	content, err := buildCycleWorkbook(records, stats, report, translate)
	if err != nil {
		return nil, "", err
	}
	return content, fmt.Sprintf("careline-cycle-%d-%s.xlsx", cycle.CycleNo, FormatDay(today)), nil
}

func buildCycleWorkbook(records []models.DailyRecord, stats KeyStats, report string, translate Translator) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", recordsSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRecordsSheet(file, records, translate); err != nil {
		return nil, err
	}
	if err := writeStatsSheet(file, stats, translate); err != nil {
		return nil, err
	}
	if err := writeReportSheet(file, report); err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if _, err := file.WriteTo(&buffer); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

func writeRecordsSheet(file *excelize.File, records []models.DailyRecord, translate Translator) error {
	header := make([]any, 0, len(exportRecordColumns))
	for _, key := range exportRecordColumns {
		header = append(header, translate(key))
	}
	if err := file.SetSheetRow(recordsSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastColumn, err := excelize.ColumnNumberToName(len(exportRecordColumns))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(recordsSheetName, "A1", lastColumn+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for index, width := range exportRecordColumnWidths {
		column, err := excelize.ColumnNumberToName(index + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(recordsSheetName, column, column, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for index, record := range records {
		row := []any{
			FormatDay(record.Date),
			intCell(record.CycleDay),
			intCell(record.Energy),
			intCell(record.Nausea),
			intCell(record.Appetite),
			intCell(record.SleepQuality),
			yesNo(record.Fever, translate),
			floatCell(record.TempC),
			intCell(record.StoolCount),
			record.StoolBloodCount,
			record.StoolMucusCount,
			record.StoolTenesmusCount,
			intCell(record.Diarrhea),
			yesNo(record.Numbness, translate),
			yesNo(record.MouthSore, translate),
			yesNo(record.IsToughDay, translate),
			stringCell(record.Note),
		}
		cell, err := excelize.CoordinatesToCellName(1, index+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(recordsSheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", index+2, err)
		}
	}

	return file.SetPanes(recordsSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeStatsSheet(file *excelize.File, stats KeyStats, translate Translator) error {
	if _, err := file.NewSheet(statsSheetName); err != nil {
		return fmt.Errorf("create stats sheet: %w", err)
	}

	rows := [][]any{
		{translate("export.stats.metric"), translate("export.stats.value"), translate("export.stats.day")},
		{translate("export.stats.max_nausea"), intCell(stats.MaxNausea), intCell(stats.MaxNauseaDay)},
		{translate("export.stats.worst_energy"), intCell(stats.MinEnergy), intCell(stats.MinEnergyDay)},
		{translate("export.stats.max_stool"), intCell(stats.MaxStool), intCell(stats.MaxStoolDay)},
		{translate("export.stats.max_diarrhea"), intCell(stats.MaxDiarrhea), intCell(stats.MaxDiarrheaDay)},
		{translate("export.stats.avg_energy"), floatCell(stats.AvgEnergy7d), ""},
		{translate("export.stats.avg_nausea"), floatCell(stats.AvgNausea7d), ""},
		{translate("export.stats.avg_stool"), floatCell(stats.AvgStool7d), ""},
		{translate("export.stats.avg_sleep"), floatCell(stats.AvgSleep7d), ""},
		{translate("export.stats.fever_events"), len(stats.FeverEvents), ""},
		{translate("export.stats.blood_events"), len(stats.BloodEvents), ""},
	}
	for index := range rows {
		cell, err := excelize.CoordinatesToCellName(1, index+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(statsSheetName, cell, &rows[index]); err != nil {
			return fmt.Errorf("write stats row %d: %w", index+1, err)
		}
	}
	return file.SetColWidth(statsSheetName, "A", "A", 24)
}

func writeReportSheet(file *excelize.File, report string) error {
	if _, err := file.NewSheet(reportSheetName); err != nil {
		return fmt.Errorf("create report sheet: %w", err)
	}
	if err := file.SetCellValue(reportSheetName, "A1", report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	wrapStyle, err := file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(reportSheetName, "A1", "A1", wrapStyle); err != nil {
		return err
	}
	return file.SetColWidth(reportSheetName, "A", "A", 80)
}

func intCell(value *int) any {
	if value == nil {
		return ""
	}
	return *value
}

func floatCell(value *float64) any {
	if value == nil {
		return ""
	}
	return *value
}

func stringCell(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func yesNo(value bool, translate Translator) string {
	if value {
		return translate("export.value.yes")
	}
	return translate("export.value.no")
}
