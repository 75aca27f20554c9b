package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes rows using tabwriter. header is the first row.
func Table(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// KV prints a key-value detail view.
func KV(w io.Writer, pairs [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, pair := range pairs {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", pair[0], pair[1])
	}
	_ = tw.Flush()
}

// FormatFields renders a product's fields as sorted name=value pairs.
func FormatFields(fields map[string]any) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+FormatValue(fields[name]))
	}
	return strings.Join(parts, " ")
}

// FormatValue renders a stored value for pretty output.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case []any:
		items, err := cast.ToStringSliceE(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return "[" + strings.Join(items, ",") + "]"
	default:
		return cast.ToString(v)
	}
}

// ParseSets splits repeated key=value arguments.
func ParseSets(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --set %q (expected key=value)", kv)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// ReadFileOrStdin reads path, or stdin when path is "-".
func ReadFileOrStdin(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
