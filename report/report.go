// Package report prints the results of simulation runs.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/cache"
)

// Entry is the result of one run.
type Entry struct {
	Title  string
	Config cache.Config
	Stats  cache.Stats
}

// A Printer writes entries to an output.
type Printer interface {
	Print(entry Entry) error
	// Skip reports a run that produced no statistics.
	Skip(title string, err error) error
}

// NewPrinter creates a printer for the named format, "text" or "json".
func NewPrinter(format string, w io.Writer) (Printer, error) {
	switch format {
	case "", "text":
		return &textPrinter{w: w}, nil
	case "json":
		return &jsonPrinter{encoder: json.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FormatHitRate formats a hit rate with two decimals, or N/A when there was
// no access.
func FormatHitRate(stats cache.Stats) string {
	rate, ok := stats.HitRate()
	if !ok {
		return "N/A"
	}

	return fmt.Sprintf("%.2f%%", rate)
}

type textPrinter struct {
	w       io.Writer
	printed int
}

func (p *textPrinter) header(title string) error {
	sep := ""
	if p.printed > 0 {
		sep = "\n"
	}

	p.printed++

	_, err := fmt.Fprintf(p.w, "%s%s:\n", sep, title)

	return err
}

func (p *textPrinter) Print(entry Entry) error {
	err := p.header(entry.Title)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(p.w,
		"Number of hits: %d\nNumber of total accesses: %d\nHit rate: %s\n",
		entry.Stats.Hits,
		entry.Stats.Accesses,
		FormatHitRate(entry.Stats),
	)

	return err
}

func (p *textPrinter) Skip(title string, err error) error {
	headerErr := p.header(title)
	if headerErr != nil {
		return headerErr
	}

	_, writeErr := fmt.Fprintf(p.w, "Skipped: %v\n", err)

	return writeErr
}

type jsonEntry struct {
	Title    string   `json:"name"`
	NumLines int      `json:"num_lines"`
	NumWays  int      `json:"num_ways"`
	UseLRU   bool     `json:"use_lru"`
	Policy   string   `json:"policy"`
	Hits     uint64   `json:"hits"`
	Accesses uint64   `json:"accesses"`
	HitRate  *float64 `json:"hit_rate"`
	Error    string   `json:"error,omitempty"`
}

type jsonPrinter struct {
	encoder *json.Encoder
}

func (p *jsonPrinter) Print(entry Entry) error {
	e := jsonEntry{
		Title:    entry.Title,
		NumLines: entry.Config.NumLines,
		NumWays:  entry.Config.NumWays,
		UseLRU:   entry.Config.UseLRU,
		Policy:   entry.Config.Policy().String(),
		Hits:     entry.Stats.Hits,
		Accesses: entry.Stats.Accesses,
	}

	if rate, ok := entry.Stats.HitRate(); ok {
		e.HitRate = &rate
	}

	return p.encoder.Encode(e)
}

func (p *jsonPrinter) Skip(title string, err error) error {
	return p.encoder.Encode(jsonEntry{Title: title, Error: err.Error()})
}
