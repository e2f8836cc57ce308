package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/duocommerce/warehousectl/internal/db"
)

// DateRow is one calendar day of the date dimension. Every attribute is a
// pure function of the date itself.
type DateRow struct {
	Key        int
	Date       time.Time
	Year       int
	Quarter    int
	Month      int
	MonthName  string
	DayOfMonth int
	ISOWeekday int
	DayName    string
	IsWeekend  bool
	IsHoliday  bool
	ISOWeek    int
}

// DateKey encodes a calendar date as its YYYYMMDD surrogate key.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ISOWeekday returns the ISO day of week, Monday=1 through Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// NewDateRow computes all calendar attributes for a single day.
// The holiday flag is always false: no holiday calendar is modeled.
func NewDateRow(t time.Time) DateRow {
	t = t.Truncate(24 * time.Hour)
	_, isoWeek := t.ISOWeek()
	weekday := ISOWeekday(t)
	return DateRow{
		Key:        DateKey(t),
		Date:       t,
		Year:       t.Year(),
		Quarter:    (int(t.Month())-1)/3 + 1,
		Month:      int(t.Month()),
		MonthName:  t.Month().String(),
		DayOfMonth: t.Day(),
		ISOWeekday: weekday,
		DayName:    t.Weekday().String(),
		IsWeekend:  weekday > 5,
		IsHoliday:  false,
		ISOWeek:    isoWeek,
	}
}

// BuildCalendar returns one DateRow per day in [start, end], inclusive.
func BuildCalendar(start, end time.Time) []DateRow {
	var rows []DateRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, NewDateRow(d))
	}
	return rows
}

const insertDateSQL = `
INSERT INTO dim_dates (
    id_date, date_complete, annee, trimestre, mois, nom_mois,
    jour_mois, jour_semaine, nom_jour, est_weekend, est_jour_ferie,
    numero_semaine_iso
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id_date) DO NOTHING`

// RefreshDates ensures one dimension row exists for every day in the
// configured calendar range. Safe to call against a fully populated
// dimension; returns the number of rows inserted.
func RefreshDates(ctx context.Context, q db.Querier, start, end time.Time) (int64, error) {
	batch := &pgx.Batch{}
	for _, row := range BuildCalendar(start, end) {
		batch.Queue(insertDateSQL,
			row.Key, row.Date, row.Year, row.Quarter, row.Month, row.MonthName,
			row.DayOfMonth, row.ISOWeekday, row.DayName, row.IsWeekend,
			row.IsHoliday, row.ISOWeek,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("failed to insert calendar day: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to flush calendar batch: %w", err)
	}
	return inserted, nil
}
