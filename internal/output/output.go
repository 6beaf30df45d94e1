// Package output renders share records for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"sharekeeper/internal/shareinfo"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// TableRenderer is implemented by types that can render themselves as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// Share is the serialized form of one record.
type Share struct {
	Name     string `json:"name" yaml:"name"`
	Type     uint32 `json:"share_type" yaml:"share_type"`
	TypeName string `json:"type_name" yaml:"type_name"`
	Remark   string `json:"remark" yaml:"remark"`
}

// ShareList adapts records to TableRenderer and to JSON/YAML encoding.
type ShareList []Share

// NewShareList converts records, keeping their order.
func NewShareList(records []shareinfo.ShareRecord) ShareList {
	list := make(ShareList, 0, len(records))
	for _, r := range records {
		list = append(list, Share{
			Name:     r.Name,
			Type:     uint32(r.Type),
			TypeName: r.Type.String(),
			Remark:   r.Remark,
		})
	}
	return list
}

// Headers implements TableRenderer.
func (l ShareList) Headers() []string {
	return []string{"Name", "Type", "Code", "Remark"}
}

// Rows implements TableRenderer.
func (l ShareList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{s.Name, s.TypeName, "0x" + strconv.FormatUint(uint64(s.Type), 16), s.Remark})
	}
	return rows
}

// Print writes data to w in format f. Table output falls back to JSON when
// data does not implement TableRenderer.
func Print(w io.Writer, f Format, data any) error {
	switch f {
	case FormatTable:
		if r, ok := data.(TableRenderer); ok {
			return PrintTable(w, r)
		}
		return PrintJSON(w, data)
	case FormatJSON:
		return PrintJSON(w, data)
	case FormatYAML:
		return PrintYAML(w, data)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// PrintTable writes data as a borderless, left-aligned table.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(data.Rows())

	table.Render()
	return nil
}

// PrintJSON writes data as indented JSON.
func PrintJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintYAML writes data as YAML.
func PrintYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
