package analytics

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the first row of every export. Order matches the columns
// written by WriteCSV.
var CSVHeader = []string{
	"date", "start_time", "end_time", "duration_minutes",
	"product", "scans", "views", "clicks", "conversion_rate_pct",
}

// WriteCSV writes the per-session breakdown as UTF-8 CSV, header row first,
// one row per session. Every field is quoted, including numbers; spreadsheet
// imports of seller reports depend on that.
func WriteCSV(w io.Writer, breakdown []SessionBreakdown) error {
	if err := writeCSVRow(w, CSVHeader); err != nil {
		return err
	}

	for _, row := range breakdown {
		date, startTime := "", ""
		if row.StartedAt != nil {
			date = row.StartedAt.Format("2006-01-02")
			startTime = row.StartedAt.Format("15:04")
		}
		endTime := ""
		if row.EndedAt != nil {
			endTime = row.EndedAt.Format("15:04")
		}

		fields := []string{
			date,
			startTime,
			endTime,
			strconv.Itoa(row.DurationMinutes),
			row.Product,
			strconv.Itoa(row.Scans),
			strconv.Itoa(row.Views),
			strconv.Itoa(row.Clicks),
			strconv.Itoa(row.ConversionRate),
		}
		if err := writeCSVRow(w, fields); err != nil {
			return err
		}
	}

	return nil
}

// CSVFilename embeds the export date into the download name, e.g.
// "live-report-2025-11-03.csv".
func CSVFilename(reportName string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", reportName, now.Format("2006-01-02"))
}

func writeCSVRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}
