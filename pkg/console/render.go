package console

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/aretw0/hbnb/pkg/core"
)

// Format selects how record listings are rendered.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat validates an output format name. An empty name selects text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or table)", name)
	}
}

// Render writes records in the given format.
func Render(w io.Writer, f Format, records []*core.Record) error {
	switch f {
	case FormatJSON:
		return renderJSON(w, records)
	case FormatTable:
		return renderTable(w, records)
	default:
		return renderText(w, records)
	}
}

// renderText prints "[<printed>, <printed>]".
func renderText(w io.Writer, records []*core.Record) error {
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = r.String()
	}
	_, err := fmt.Fprintf(w, "[%s]\n", strings.Join(parts, ", "))
	return err
}

// renderJSON prints the records keyed like the store file.
func renderJSON(w io.Writer, records []*core.Record) error {
	payload := make(map[string]map[string]any, len(records))
	for _, r := range records {
		doc := make(map[string]any)
		for name, v := range r.Attributes() {
			doc[name] = v.JSON()
		}
		doc[core.AttrID] = r.ID()
		doc[core.AttrCreatedAt] = core.FormatTime(r.CreatedAt())
		doc[core.AttrUpdatedAt] = core.FormatTime(r.UpdatedAt())
		doc[core.AttrClass] = string(r.Kind())
		payload[r.Key()] = doc
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}

func renderTable(w io.Writer, records []*core.Record) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 records)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Class", "ID", "Created", "Updated", "Attributes"})
	for _, r := range records {
		t.AppendRow(table.Row{
			string(r.Kind()),
			r.ID(),
			core.FormatTime(r.CreatedAt()),
			core.FormatTime(r.UpdatedAt()),
			formatAttributes(r.Attributes()),
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d records)\n", len(records))
	return nil
}

func formatAttributes(attrs core.Attributes) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + attrs[name].String()
	}
	return strings.Join(parts, " ")
}
