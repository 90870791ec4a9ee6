package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/campaign"
	"github.com/goliatone/go-formstate/pkg/forms"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/schemafile"
	"github.com/goliatone/go-formstate/pkg/validation"
)

var (
	errUnknownForm   = errors.New("unknown form")
	errInvalidRecord = errors.New("record has validation errors")
)

// catalogue gathers the built-in forms and those under the schema dir.
func (a *app) catalogue() (map[string]*model.Schema, error) {
	out := map[string]*model.Schema{campaign.FormID: campaign.Form()}
	for _, schema := range forms.All() {
		out[schema.ID()] = schema
	}
	if a.cfg.Schemas.Dir == "" {
		return out, nil
	}
	store, err := schemafile.LoadFS(os.DirFS(a.cfg.Schemas.Dir))
	if err != nil {
		return nil, err
	}
	for _, id := range store.IDs() {
		schema, _ := store.Form(id)
		out[id] = schema
	}
	return out, nil
}

func (a *app) resolveForm(id string) (*model.Schema, error) {
	all, err := a.catalogue()
	if err != nil {
		return nil, err
	}
	schema, ok := all[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownForm, id)
	}
	return schema, nil
}

func (a *app) engine() *validation.Engine {
	var opts []validation.Option
	if len(a.cfg.Validation.Messages) > 0 {
		opts = append(opts, validation.WithCatalog(validation.NewCatalog(validation.WithTemplates(a.cfg.Validation.Messages))))
	}
	return validation.New(opts...)
}

func readRecord(path string) (model.Record, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	var record model.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	return record, nil
}

func (a *app) formsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List the available forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.catalogue()
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(all))
			for id := range all {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPURPOSE\tFIELDS")
			for _, id := range ids {
				schema := all[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", id, schema.Title(), schema.Purpose(), schema.Len())
			}
			return w.Flush()
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	var (
		formID     string
		recordPath string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON record against a form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.resolveForm(formID)
			if err != nil {
				return err
			}
			record, err := readRecord(recordPath)
			if err != nil {
				return err
			}
			result := a.engine().Validate(schema, record)
			a.logger.Debug("record validated", zap.String("form", formID), zap.Int("issues", len(result)))

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else if result.Valid() {
				fmt.Fprintln(out, "ok")
			} else {
				for _, key := range schema.Keys() {
					if issue, ok := result[key]; ok {
						field, _ := schema.Field(key)
						fmt.Fprintf(out, "%s (%s): %s\n", field.Label, key, issue.Message)
					}
				}
			}
			if !result.Valid() {
				return fmt.Errorf("%w: %d field(s)", errInvalidRecord, len(result))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formID, "form", "", "form id")
	cmd.Flags().StringVar(&recordPath, "record", "", "JSON file with the record")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")
	_ = cmd.MarkFlagRequired("form")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
