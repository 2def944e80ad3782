package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credisphere/credisphere/internal/client/apiclient"
)

var resources = []string{"users", "clubs", "parties", "competitions", "power-teams", "categories"}

// formFields lists the request fields of each resource, so server errors
// on fields the user left out can still be shown against them.
var formFields = map[string][]string{
	"users":        {"email", "name", "password", "role", "club_id"},
	"clubs":        {"name", "city", "category_id"},
	"parties":      {"name", "abbreviation", "leader"},
	"competitions": {"title", "description", "club_id", "starts_at", "ends_at"},
	"power-teams":  {"name", "club_id", "category_id"},
	"categories":   {"name", "description"},
}

// knownFields returns the form fields of resource followed by any other
// keys the user passed.
func knownFields(resource string, passed []string) []string {
	known := slices.Clone(formFields[resource])
	for _, key := range passed {
		if !slices.Contains(known, key) {
			known = append(known, key)
		}
	}
	return known
}

func create(opts *Options) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:       "create <resource>",
		Short:     "Create a record from --field key=value pairs",
		Example:   "credisphere-cli create clubs --field name=Harbor --field city=Lisbon",
		Args:      cobra.ExactArgs(1),
		ValidArgs: resources,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, passed, err := parseFields(fields)
			if err != nil {
				return err
			}
			known := knownFields(args[0], passed)
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			created, err := e.client.Create(cmd.Context(), args[0], payload)
			if err != nil {
				if apiclient.IsUnauthorized(err) {
					return e.handle(cmd, err)
				}
				return e.report(err, known)
			}
			return printJSON(e, created)
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field as key=value. Values that parse as JSON (numbers, booleans, null) are sent typed")
	return cmd
}

func list(opts *Options) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:       "list <resource>",
		Aliases:   []string{"ls"},
		Short:     "Print one page of records",
		Args:      cobra.ExactArgs(1),
		ValidArgs: resources,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			rows, err := e.client.List(cmd.Context(), args[0], page, limit)
			if err != nil {
				return e.handle(cmd, err)
			}
			return printJSON(e, rows)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	return cmd
}

// parseFields turns key=value pairs into a request body. It also returns
// the keys in flag order.
func parseFields(pairs []string) (map[string]any, []string, error) {
	payload := make(map[string]any, len(pairs))
	known := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		if _, seen := payload[key]; !seen {
			known = append(known, key)
		}
		payload[key] = value
	}
	return payload, known, nil
}

func printJSON(e *env, v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
