// Package output renders command results as text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// Format is an output format.
type Format string

// Output formats. FormatAuto picks text on a terminal and JSON otherwise.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// ErrInvalidFormat is returned for an unknown --output value.
//
//nolint:gochecknoglobals // sentinel
var ErrInvalidFormat = &walleterr.WalletError{
	Code:       "INVALID_OUTPUT_FORMAT",
	Message:    "unknown output format",
	Suggestion: "use auto, text or json",
	ExitCode:   walleterr.ExitInput,
}

// ParseFormat parses an --output value. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", walleterr.WithDetails(ErrInvalidFormat, map[string]string{"format": s})
	}
}

// Resolve turns FormatAuto into text when w is a terminal and JSON when it
// is not. Explicit formats are returned unchanged.
func Resolve(w io.Writer, f Format) Format {
	if f != FormatAuto {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) { //nolint:gosec // G115: fd fits in int
		return FormatText
	}
	return FormatJSON
}

// Formatter writes command results in one format.
type Formatter struct {
	format Format
	w      io.Writer
}

// NewFormatter returns a Formatter writing to w. FormatAuto is resolved
// against w.
func NewFormatter(f Format, w io.Writer) *Formatter {
	return &Formatter{format: Resolve(w, f), w: w}
}

// Format returns the resolved format.
func (f *Formatter) Format() Format { return f.format }

// IsJSON reports whether results are written as JSON.
func (f *Formatter) IsJSON() bool { return f.format == FormatJSON }

// Print writes v as indented JSON, or as one text line.
func (f *Formatter) Print(v any) error {
	if f.IsJSON() {
		enc := json.NewEncoder(f.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	var err error
	switch val := v.(type) {
	case fmt.Stringer:
		_, err = fmt.Fprintln(f.w, val.String())
	default:
		_, err = fmt.Fprintln(f.w, val)
	}
	return err
}
