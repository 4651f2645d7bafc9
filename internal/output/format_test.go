package output_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/evmwallet/internal/output"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

func TestFormatter_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatJSON, &buf)

	require.NoError(t, f.Print(map[string]string{"txId": "0xfeed"}))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "0xfeed", result["txId"])
	assert.Contains(t, buf.String(), "\n  \"txId\"")
}

type stringer struct{}

func (stringer) String() string { return "1.5 BNB" }

func TestFormatter_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"string", "hello world", "hello world\n"},
		{"stringer", stringer{}, "1.5 BNB\n"},
		{"number", 42, "42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			f := output.NewFormatter(output.FormatText, &buf)
			require.NoError(t, f.Print(tt.v))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatter_AutoResolvesAgainstWriter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	f := output.NewFormatter(output.FormatAuto, &buf)
	assert.Equal(t, output.FormatJSON, f.Format())
	assert.True(t, f.IsJSON())

	f = output.NewFormatter(output.FormatText, &buf)
	assert.Equal(t, output.FormatText, f.Format())
	assert.False(t, f.IsJSON())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected output.Format
	}{
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{" text ", output.FormatText},
		{"auto", output.FormatAuto},
		{"", output.FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := output.ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	t.Parallel()

	_, err := output.ParseFormat("yaml")
	require.ErrorIs(t, err, output.ErrInvalidFormat)
	assert.Equal(t, walleterr.ExitInput, walleterr.ExitCode(err))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	assert.Equal(t, output.FormatJSON, output.Resolve(&buf, output.FormatJSON))
	assert.Equal(t, output.FormatText, output.Resolve(&buf, output.FormatText))
	assert.Equal(t, output.FormatJSON, output.Resolve(&buf, output.FormatAuto))
}

func TestResolve_TTY(t *testing.T) {
	if os.Getenv("TEST_TTY") == "" {
		t.Skip("Skipping TTY test - set TEST_TTY=1 to run")
	}
	assert.Equal(t, output.FormatText, output.Resolve(os.Stdout, output.FormatAuto))
}

func renderTable(t *testing.T, table *output.Table) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestTable_Render(t *testing.T) {
	t.Parallel()
	table := output.NewTable("TXID", "AMOUNT")
	table.AddRow("0xabc", "1.5")
	table.AddRow("0xdef0", "0.25")

	lines := renderTable(t, table)
	require.Len(t, lines, 4)
	assert.Equal(t, "TXID    AMOUNT", lines[0])
	assert.Equal(t, "------  ------", lines[1])
	assert.Equal(t, "0xabc   1.5", lines[2])
	assert.Equal(t, "0xdef0  0.25", lines[3])
}

func TestTable_AlignRight(t *testing.T) {
	t.Parallel()
	table := output.NewTable("TXID", "AMOUNT", "STATUS").AlignRight(1)
	table.AddRow("0xabc", "1.5", "pending")
	table.AddRow("0xdef", "120.25", "success")

	lines := renderTable(t, table)
	require.Len(t, lines, 4)
	assert.Equal(t, "TXID   AMOUNT  STATUS", lines[0])
	assert.Equal(t, "0xabc     1.5  pending", lines[2])
	assert.Equal(t, "0xdef  120.25  success", lines[3])
}

func TestTable_RaggedRows(t *testing.T) {
	t.Parallel()
	table := output.NewTable("A", "B", "C")
	table.AddRow("1", "2")
	table.AddRow("3", "4", "5", "extra")
	table.AddRow("6")

	lines := renderTable(t, table)
	require.Len(t, lines, 5)
	assert.Equal(t, "1  2", lines[2])
	assert.Equal(t, "3  4  5", lines[3])
	assert.Equal(t, "6", lines[4])
}

func TestTable_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.NewTable().Render(&buf))
	assert.Empty(t, buf.String())
}
