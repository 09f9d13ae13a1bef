package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/user/memorial-extractor/internal/entity"
)

const (
	formatYAML  = "yaml"
	formatJSON  = "json"
	formatTable = "table"
)

// maxCellWidth bounds table values; biographies can run for paragraphs.
const maxCellWidth = 80

func validFormat(format string) bool {
	switch format {
	case formatYAML, formatJSON, formatTable:
		return true
	}
	return false
}

// writeRecord prints rec in column order.
func writeRecord(w io.Writer, format string, rec *entity.Record) error {
	switch format {
	case formatJSON:
		b, err := json.Marshal(rec, jsontext.WithIndent("  "))
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case formatTable:
		return writeTable(w, rec)
	default:
		return writeYAML(w, rec)
	}
}

func writeYAML(w io.Writer, rec *entity.Record) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range rec.Fields() {
		var value yaml.Node
		if err := value.Encode(f.Value); err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.Key, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&value,
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, rec *entity.Record) error {
	width := 0
	for _, k := range rec.Keys() {
		width = max(width, runewidth.StringWidth(k))
	}
	for _, f := range rec.Fields() {
		value := runewidth.Truncate(cellText(f.Value), maxCellWidth, "...")
		line := strings.TrimRight(runewidth.FillRight(f.Key, width)+"  "+value, " ")
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// cellText renders a record value the way it appears in a sheet cell.
func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.Join(strings.Fields(v), " ")
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
