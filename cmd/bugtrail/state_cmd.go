package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDumpCmd(c *cli) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print stored state as a JSON object that \"import\" accepts",
		Long: strings.TrimSpace(`
Print every stored key as one JSON object. By default values are embedded as
JSON; --raw encodes them as strings the way browser localStorage holds them.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			keys, err := a.KV.Keys(ctx)
			if err != nil {
				return err
			}
			out := make(map[string]any, len(keys))
			for _, key := range keys {
				value, err := a.KV.Get(ctx, key)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", key, err)
				}
				if raw || !json.Valid(value) {
					out[key] = string(value)
				} else {
					out[key] = json.RawMessage(value)
				}
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Encode values as JSON strings")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace stored state with a browser localStorage dump",
		Long: strings.TrimSpace(`
Replace stored state with a JSON object of storage keys (project, errors,
currentProject, projectIds, lastDeleted). Values may be JSON or, as
localStorage holds them, strings containing JSON. Name-keyed data from the
browser is migrated to project ids. Unknown keys are ignored and known keys
missing from the file are cleared.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			values, err := decodeDump(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			keys, err := a.State.Import(ctx, values)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				return errors.New("nothing imported: no known keys in file")
			}
			snap := a.State.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d projects\n", strings.Join(keys, ", "), len(snap.Projects))
			return nil
		},
	}
}

// decodeDump reads a key to value object, unwrapping values that are JSON
// encoded as strings.
func decodeDump(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	out := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil && isEncodedJSON(s) {
			out[key] = json.RawMessage(s)
			continue
		}
		out[key] = value
	}
	return out, nil
}

// isEncodedJSON reports whether s holds a JSON object, array or string. Scalars
// such as "123" or "true" stay strings.
func isEncodedJSON(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" || !strings.ContainsRune("{[\"", rune(t[0])) {
		return false
	}
	return json.Valid([]byte(t))
}
