package insights

import (
	"cmp"
	"slices"
	"time"

	"purchase-dashboard/internal/models"
)

type weekDay struct {
	week int
	day  int
}

// WeekOfYear numbers Sunday-start weeks, with week 1 being the week that
// contains January 1. The last days of December fall into week 1 of the next
// year when that week starts before the year ends.
func WeekOfYear(t time.Time) int {
	d := civilDate(t)
	nextStart := startOfWeek(time.Date(d.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC))
	if !d.Before(nextStart) {
		return 1
	}
	start := startOfWeek(time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	days := int(startOfWeek(d).Sub(start).Hours() / 24)
	return days/7 + 1
}

// DayOfWeek is 0 for Sunday through 6 for Saturday.
func DayOfWeek(t time.Time) int {
	return int(t.Weekday())
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// TemporalMatrix sums total price per (week, day) cell. Only cells with at
// least one record appear; records without a date are skipped. Cells are
// ordered by week, then day.
func TemporalMatrix(records []models.TransactionRecord) []models.MatrixCell {
	dated := make([]models.TransactionRecord, 0, len(records))
	for _, r := range records {
		if !r.PurchaseDate.IsZero() {
			dated = append(dated, r)
		}
	}

	groups := GroupAndReduce(dated,
		func(r models.TransactionRecord) weekDay {
			return weekDay{week: WeekOfYear(r.PurchaseDate), day: DayOfWeek(r.PurchaseDate)}
		},
		totalPrice, sum, 0)

	cells := make([]models.MatrixCell, 0, groups.Len())
	for _, e := range groups.Entries() {
		cells = append(cells, models.MatrixCell{Week: e.Key.week, Day: e.Key.day, Value: e.Value})
	}
	slices.SortFunc(cells, func(a, b models.MatrixCell) int {
		if c := cmp.Compare(a.Week, b.Week); c != 0 {
			return c
		}
		return cmp.Compare(a.Day, b.Day)
	})
	return cells
}
