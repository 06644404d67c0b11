package printing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Job is one rendered document queued for a printer.
type Job struct {
	Printer string `json:"printer"`
	Kind    string `json:"kind"` // "bill" or "kot"
	OrderID int64  `json:"order_id"`
	Path    string `json:"path"`
}

// Result reports a submission outcome back to the operator. A failed job
// carries the error message; the order it belongs to is already
// committed and unaffected.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Jobs    []Job  `json:"jobs,omitempty"`
}

// Spooler delivers rendered documents by writing them into a spool
// directory, one file per job, named so the OS print agent can pick them
// up per printer. Submission is best-effort and separately retryable;
// there is deliberately no exactly-once guarantee.
type Spooler struct {
	dir string
	now func() time.Time
}

// NewSpooler creates the spool directory if needed and returns a Spooler
// writing into it.
func NewSpooler(dir string) (*Spooler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Spooler{dir: dir, now: time.Now}, nil
}

// Submit writes one document for one printer and returns the job record.
func (s *Spooler) Submit(printer, kind string, orderID int64, html string) (Job, error) {
	name := fmt.Sprintf("%s_%s_%d_%s.html", s.now().Format("20060102T150405.000"), kind, orderID, sanitize(printer))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return Job{}, err
	}
	return Job{Printer: printer, Kind: kind, OrderID: orderID, Path: path}, nil
}

// sanitize makes a printer name safe for use in a file name.
func sanitize(name string) string {
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-")
	cleaned := replacer.Replace(name)
	if cleaned == "" {
		return "default"
	}
	return cleaned
}
