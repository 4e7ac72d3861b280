package leadview

import (
	"encoding/csv"
	"io"
	"time"

	"leadsync/internal/models"
)

var csvHeader = []string{"id", "name", "email", "phone", "company", "source", "status", "created_at"}

// WriteCSV writes leads as CSV with a header row
func WriteCSV(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range leads {
		record := []string{
			l.ID,
			l.Name,
			l.Email,
			l.Phone,
			l.Company,
			l.Source,
			string(l.Status),
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
