package capture

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Printer writes reports for a human reader, used when a report cannot be
// forwarded.
type Printer struct {
	w io.Writer
	p *message.Printer
}

// NewPrinter creates a printer formatting numbers for lang.
func NewPrinter(w io.Writer, lang language.Tag) *Printer {
	return &Printer{w: w, p: message.NewPrinter(lang)}
}

// Print writes a short summary followed by the report as indented JSON.
func (p *Printer) Print(r *Report) error {
	c := r.ClientCount
	p.p.Fprintf(p.w, "report %s: %d access points, %d devices in window\n", r.Name, len(r.AP), len(r.Devices))
	p.p.Fprintf(p.w, "clients (5 min): %d filtered, %d total\n", c.FilteredLast5Mins, c.ClientsLast5Mins)
	p.p.Fprintf(p.w, "clients (1 hour): %d filtered, %d total\n", c.FilteredLastHour, c.ClientsLastHour)

	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if _, err := fmt.Fprintf(p.w, "%s\n", body); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
