package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Format is an export format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatText, FormatCSV, FormatYAML}

// ParseFormat parses an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatYAML:
		return f, nil
	case "txt":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf("unsupported export format %q (supported: %v)", s, Formats)
	}
}

// Filename returns the download file name for the format.
func (f Format) Filename() string {
	switch f {
	case FormatCSV:
		return "playlist_duration_report.csv"
	case FormatYAML:
		return "playlist_duration_report.yaml"
	default:
		return "playlist_duration_report.txt"
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write encodes the report in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatCSV:
		return r.writeCSV(w)
	case FormatYAML:
		return r.writeYAML(w)
	case FormatText:
		return r.writeText(w)
	default:
		return errors.Newf("unsupported export format %q", f)
	}
}

// writeCSV writes the title row followed by one label,value row per line.
func (r *Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{r.Title}); err != nil {
		return errors.Wrap(err, "failed to write csv title")
	}
	for _, row := range r.Rows {
		if err := cw.Write([]string{row.Label, row.Value}); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

func (r *Report) writeText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", r.Title); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	for _, row := range r.Rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", row.Label, row.Value); err != nil {
			return errors.Wrap(err, "failed to write report")
		}
	}
	return nil
}

// writeYAML keeps row order by encoding a mapping node instead of a map.
func (r *Report) writeYAML(w io.Writer) error {
	rows := &yaml.Node{Kind: yaml.MappingNode}
	for _, row := range r.Rows {
		rows.Content = append(rows.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: row.Label},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row.Value},
		)
	}
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "title"},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Title},
			{Kind: yaml.ScalarNode, Value: "report"},
			rows,
		},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode yaml report")
	}
	return errors.Wrap(enc.Close(), "failed to close yaml encoder")
}
