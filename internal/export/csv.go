package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/iliyamo/attendance-ledger/internal/report"
)

// utf8BOM makes spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// WriteCSV writes the header block, a blank line and the table.
func WriteCSV(out io.Writer, w report.Window, loc *time.Location) error {
	if _, err := io.WriteString(out, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(out)
	if err := cw.WriteAll(header(w)); err != nil {
		return err
	}
	if err := cw.Write(nil); err != nil {
		return err
	}
	return cw.WriteAll(table(w, loc))
}
