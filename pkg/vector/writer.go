package vector

import (
	"fmt"
	"io"
)

// WriteText renders records in text vector syntax, one per line.
func WriteText(w io.Writer, records []Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}
