package booking

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// csvRow is the column layout of a booking export.
type csvRow struct {
	ID           string `csv:"id"`
	StationID    string `csv:"pickup_return_station_id"`
	StartDate    string `csv:"start_date"`
	EndDate      string `csv:"end_date"`
	CustomerName string `csv:"customer_name"`
}

// ExportCSV writes bookings as CSV with a header row, in the given order.
func ExportCSV(w io.Writer, bookings []*Booking) error {
	rows := make([]*csvRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, &csvRow{
			ID:           b.ID,
			StationID:    b.PickupReturnStationID,
			StartDate:    b.StartDate,
			EndDate:      b.EndDate,
			CustomerName: b.CustomerName,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write bookings csv: %w", err)
	}
	return nil
}
