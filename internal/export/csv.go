package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tradelens/internal/insights"
	"tradelens/internal/model"
)

var recordHeader = []string{"Consignee", "Exporter", "Mark", "Tons", "Month", "Year", "Consignee State", "Product"}

func recordRow(record model.ShipmentRecord) []string {
	quantity := ""
	if record.HasQuantity {
		quantity = record.Quantity.String()
	}
	return []string{
		record.Consignee,
		record.Exporter,
		record.Mark,
		quantity,
		record.Month.String(),
		strconv.Itoa(record.Year),
		record.State,
		record.ProductCategory,
	}
}

// WriteCSV serializes records as plain delimited text, preceded by commented
// summary lines when metrics are given.
func WriteCSV(w io.Writer, records []model.ShipmentRecord, metrics []insights.Metric) error {
	for _, metric := range metrics {
		if _, err := fmt.Fprintf(w, "# %s: %s\n", metric.Label, metric.Value); err != nil {
			return err
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(recordHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(recordRow(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
