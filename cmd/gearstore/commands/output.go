package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

// printJSON writes v as indented JSON, optionally filtered through a jq
// expression first. v must be plain decoded JSON (map[string]any,
// []any, scalars).
func printJSON(w io.Writer, v any, expr string) error {
	if expr == "" {
		return encodeIndent(w, v)
	}
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	iter := query.Run(v)
	for {
		out, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := out.(error); ok {
			return fmt.Errorf("jq: %w", err)
		}
		if err := encodeIndent(w, out); err != nil {
			return err
		}
	}
}

func encodeIndent(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
