package editor

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

// DateLayout is the wire format for availability dates
const DateLayout = "2006-01-02"

// Availability row values
const (
	AvailabilityBlocked = "BLOCKED"
	SourceManual        = "manual"
	SourceBooking       = "booking"

	// MaxBlockDays is the longest range one availability block may cover
	MaxBlockDays = 366
)

type datedRow struct {
	date  time.Time
	notes string
}

// BuildInitialAvailability coalesces per-date server rows into editable blocks.
// Only manually blocked dates are considered; booking rows are not editable.
// Consecutive dates with the same note become one block; a gap of a single
// day or a different note starts a new block. Output is sorted by start date.
func BuildInitialAvailability(rows []homestayapi.AvailabilityDay) []AvailabilityBlock {
	dated := make([]datedRow, 0, len(rows))
	for _, row := range rows {
		if !strings.EqualFold(row.Status, AvailabilityBlocked) {
			continue
		}
		if strings.EqualFold(row.Source, SourceBooking) {
			continue
		}
		d, ok := parseDate(row.Date)
		if !ok {
			continue
		}
		dated = append(dated, datedRow{date: d, notes: row.Notes})
	}

	sort.SliceStable(dated, func(i, j int) bool { return dated[i].date.Before(dated[j].date) })

	blocks := []AvailabilityBlock{}
	var start, end time.Time
	var notes string
	open := false

	flush := func() {
		if open {
			blocks = append(blocks, AvailabilityBlock{
				ClientID:  uuid.NewString(),
				StartDate: start.Format(DateLayout),
				EndDate:   end.Format(DateLayout),
				Notes:     notes,
			})
		}
	}

	for _, row := range dated {
		if open && row.date.Equal(end) {
			// duplicate date, first row wins
			continue
		}
		if open && row.date.Equal(end.AddDate(0, 0, 1)) && row.notes == notes {
			end = row.date
			continue
		}
		flush()
		start, end, notes, open = row.date, row.date, row.notes, true
	}
	flush()

	return blocks
}

// BlockDays counts the dates covered by a block, inclusive, without
// listing them. It reports false for unparsable or reversed ranges.
func BlockDays(startDate, endDate string) (int, bool) {
	start, ok := parseDate(startDate)
	if !ok {
		return 0, false
	}
	end, ok := parseDate(endDate)
	if !ok || end.Before(start) {
		return 0, false
	}
	// Sub saturates for spans over ~292 years, which still exceeds any limit
	return int(end.Sub(start).Hours()/24) + 1, true
}

// ExpandBlock lists every date covered by a block, inclusive. Blocks longer
// than MaxBlockDays are refused before any date is built.
func ExpandBlock(startDate, endDate string) ([]string, bool) {
	n, ok := BlockDays(startDate, endDate)
	if !ok || n > MaxBlockDays {
		return nil, false
	}
	start, _ := parseDate(startDate)
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates, true
}

// parseDate accepts YYYY-MM-DD or any timestamp starting with it
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) < len(DateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, value[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
