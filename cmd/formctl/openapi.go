package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/schemafile"
)

var errLintViolations = errors.New("lint found violations")

func (a *app) importOpenAPICmd() *cobra.Command {
	var (
		specPath    string
		operationID string
		format      string
		outPath     string
	)
	cmd := &cobra.Command{
		Use:   "import-openapi",
		Short: "Convert an OpenAPI operation request body into a form schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openapi.LoadFile(cmd.Context(), specPath, openapi.WithExternalRefs(true))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if operationID == "" {
				for _, id := range doc.Operations() {
					fmt.Fprintln(out, id)
				}
				return nil
			}
			schema, err := doc.Form(operationID)
			if err != nil {
				return err
			}
			data, err := schemafile.Marshal(schemafile.Format(format), schema)
			if err != nil {
				return err
			}
			if outPath != "" {
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(out, "Form written to %s\n", outPath)
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "OpenAPI document path or URL")
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id (lists operations when empty)")
	cmd.Flags().StringVar(&format, "format", string(schemafile.FormatYAML), "output format: yaml or json")
	cmd.Flags().StringVar(&outPath, "output", "", "output file (stdout if empty)")
	_ = cmd.MarkFlagRequired("spec")
	return cmd
}

func (a *app) lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <spec>...",
		Short: "Report x-formstate extensions the importer would ignore or misread",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found := 0
			for _, path := range args {
				doc, err := openapi.LoadFile(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				for _, v := range doc.Lint() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, v)
					found++
				}
			}
			if found > 0 {
				return fmt.Errorf("%w: %d", errLintViolations, found)
			}
			return nil
		},
	}
}
