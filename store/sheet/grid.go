/*
Package sheet reads and writes booking data laid out as spreadsheet
grids: a header row followed by data rows. The same grid logic backs
both the CSV file store and the Google Sheets store.

COLUMN DISCOVERY:
  Columns are found by fuzzy header match against known substrings
  (Russian and English), so operators can rename or reorder columns
  without breaking the integration. An inventory row with a blank name
  is skipped; an unparseable quantity becomes 0. A booking row missing
  any of the date/start/end/resources fields is skipped entirely,
  never partially used.

LAYOUT:
  New bookings are inserted directly below the header row, so reading
  top-down yields most-recent-first ordering.
*/
package sheet

import (
	"strconv"
	"strings"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// Header substrings recognised per column, matched case-insensitively
// against trimmed header cells.
var (
	nameHeaders      = []string{"наимен", "назв", "name"}
	quantityHeaders  = []string{"кол", "count"}
	dateHeaders      = []string{"дата", "date"}
	startHeaders     = []string{"время начала", "start", "начало"}
	endHeaders       = []string{"время окончания", "end", "конец"}
	resourcesHeaders = []string{"ресурс", "resource", "необходим"}
	employeeHeaders  = []string{"сотруд", "employee"}
	managerHeaders   = []string{"руковод", "менедж", "manager"}
)

// findColumn returns the index of the first header containing any of
// the substrings, or -1.
func findColumn(headers []string, substrs []string) int {
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, s := range substrs {
			if strings.Contains(h, s) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// =============================================================================
// INVENTORY GRID
// =============================================================================

// ParseInventory turns a raw grid into an ordered inventory. A grid
// without recognisable name and quantity columns yields an empty
// inventory rather than an error.
func ParseInventory(rows [][]string) *booking.Inventory {
	if len(rows) < 2 {
		return booking.NewInventory(nil)
	}
	nameCol := findColumn(rows[0], nameHeaders)
	qtyCol := findColumn(rows[0], quantityHeaders)
	if nameCol < 0 || qtyCol < 0 {
		return booking.NewInventory(nil)
	}

	var resources []booking.Resource
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		qty, err := strconv.Atoi(cell(row, qtyCol))
		if err != nil || qty < 0 {
			qty = 0
		}
		resources = append(resources, booking.Resource{Name: name, Quantity: qty})
	}
	return booking.NewInventory(resources)
}

// =============================================================================
// BOOKING GRID
// =============================================================================

// bookingColumns is the resolved column layout of a booking grid.
type bookingColumns struct {
	date, start, end, resources int
	employee, manager           int // optional, -1 when absent
}

func resolveBookingColumns(headers []string) (bookingColumns, bool) {
	cols := bookingColumns{
		date:      findColumn(headers, dateHeaders),
		start:     findColumn(headers, startHeaders),
		end:       findColumn(headers, endHeaders),
		resources: findColumn(headers, resourcesHeaders),
		employee:  findColumn(headers, employeeHeaders),
		manager:   findColumn(headers, managerHeaders),
	}
	ok := cols.date >= 0 && cols.start >= 0 && cols.end >= 0 && cols.resources >= 0
	return cols, ok
}

// ParseBookings turns a raw grid into records in grid order. Rows that
// fail to yield all of date, start, end and resources are dropped.
func ParseBookings(rows [][]string) []booking.Record {
	if len(rows) < 2 {
		return nil
	}
	cols, ok := resolveBookingColumns(rows[0])
	if !ok {
		return nil
	}

	var records []booking.Record
	for _, row := range rows[1:] {
		date, err := booking.ParseDate(cell(row, cols.date))
		if err != nil {
			continue
		}
		start, err := booking.ParseTimeOfDay(cell(row, cols.start))
		if err != nil {
			continue
		}
		end, err := booking.ParseTimeOfDay(cell(row, cols.end))
		if err != nil {
			continue
		}
		resources := booking.ParseResources(cell(row, cols.resources))
		if resources.Empty() {
			continue
		}
		records = append(records, booking.Record{
			Date:      date,
			Start:     start,
			End:       end,
			Resources: resources,
			Employee:  cell(row, cols.employee),
			Manager:   cell(row, cols.manager),
		})
	}
	return records
}

// RecordRow serializes a record into the fixed append layout:
// date, employee, resources, start, end, manager.
func RecordRow(rec booking.Record) []string {
	return []string{
		rec.Date.String(),
		rec.Employee,
		rec.Resources.String(),
		rec.Start.String(),
		rec.End.String(),
		rec.Manager,
	}
}

// BookingHeader is the layout written when a booking grid is created
// from scratch, matching RecordRow's column order.
var BookingHeader = []string{"Date", "Employee", "Resources", "Start", "End", "Manager"}

// InventoryHeader is the layout written when an inventory grid is
// created from scratch.
var InventoryHeader = []string{"Name", "Count"}
