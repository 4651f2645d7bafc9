package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// ErrorOutput is the JSON envelope of a failed command.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Amount     string            `json:"amount,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError writes err to w.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return formatErrorJSON(w, err)
	}
	return formatErrorText(w, err)
}

func detail(err error) ErrorDetail {
	var we *walleterr.WalletError
	if !errors.As(err, &we) {
		return ErrorDetail{
			Code:     walleterr.ErrGeneral.Code,
			Message:  err.Error(),
			ExitCode: walleterr.ExitGeneral,
		}
	}

	d := ErrorDetail{
		Code:       we.Code,
		Message:    we.Message,
		Details:    we.Details,
		Suggestion: we.Suggestion,
		ExitCode:   walleterr.ExitCode(err),
	}
	if q, ok := walleterr.QuantityOf(err); ok {
		d.Amount = q.String()
	}
	return d
}

func formatErrorJSON(w io.Writer, err error) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ErrorOutput{Error: detail(err)})
}

func formatErrorText(w io.Writer, err error) error {
	d := detail(err)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", d.Message))

	if d.Amount != "" {
		sb.WriteString(fmt.Sprintf("Amount: %s\n", d.Amount))
	}

	if len(d.Details) > 0 {
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, d.Details[k]))
		}
	}

	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", d.Suggestion))
	}

	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
