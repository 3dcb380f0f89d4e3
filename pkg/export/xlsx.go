package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/entrhq/guestlist/pkg/capture"
)

// SheetName is the worksheet holding the attendees.
const SheetName = "Attendees"

// Columns are the spreadsheet headers, in record field order.
var Columns = []string{
	"name",
	"profileLink",
	"eventName",
	"eventLink",
	"timezone",
	"username",
	"bioShort",
	"avatarUrl",
	"lastOnlineAt",
	"twitter",
	"instagram",
	"linkedin",
	"youtube",
	"tiktok",
	"website",
	"numTicketsRegistered",
}

// Row returns the cell values of a in Columns order. Absent optional
// fields are nil.
func Row(a capture.Attendee) []interface{} {
	return []interface{}{
		a.Name,
		a.ProfileLink,
		a.EventName,
		a.EventLink,
		a.Timezone,
		a.Username,
		a.BioShort,
		a.AvatarURL,
		a.LastOnlineAt,
		optional(a.Twitter),
		optional(a.Instagram),
		optional(a.LinkedIn),
		optional(a.YouTube),
		optional(a.TikTok),
		optional(a.Website),
		a.NumTicketsRegistered,
	}
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// WriteXLSX writes the attendees to a workbook with a header row. Absent
// optional fields are left as blank cells.
func (e *Exporter) WriteXLSX(attendees []capture.Attendee, eventName string) (string, error) {
	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.opts.OutputDir, FileName(AttendeesPrefix, eventName, "xlsx"))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return "", fmt.Errorf("failed to name worksheet: %w", err)
	}

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, a := range attendees {
		for c, v := range Row(a) {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}
	for i := 1; i <= len(Columns); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		_ = f.SetColWidth(SheetName, col, col, 24)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}
