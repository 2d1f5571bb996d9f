package match

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// csvHeader is the fixed column set of the export sheet.
var csvHeader = []string{"MatchID", "CourtID", "Sport", "StartDate", "EndDate", "Duration", "Players"}

// WriteCSV writes the matches to w as a semicolon-separated sheet with
// one header row. Dates are RFC 3339; Players is the comma-joined list
// of player user IDs.
func WriteCSV(w io.Writer, matches []Match) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, m := range matches {
		row := []string{
			m.MatchID,
			m.CourtID,
			m.Sport,
			m.StartDate.Format(time.RFC3339),
			m.EndDate.Format(time.RFC3339),
			m.Duration().String(),
			strings.Join(m.PlayerIDs(), ", "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToCSV renders the matches as a CSV string.
func ToCSV(matches []Match) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, matches); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ExportFile writes "<title>.csv" into dir and returns the full path.
// This is the file-system analog of the browser download trigger.
func ExportFile(dir, title string, matches []Match) (string, error) {
	path := filepath.Join(dir, title+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := WriteCSV(f, matches); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
