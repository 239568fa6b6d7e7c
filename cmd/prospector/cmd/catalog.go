package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/prospector/internal/catalog"
	"github.com/solatis/prospector/internal/core/api"
	"github.com/solatis/prospector/internal/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the field catalog of an entity type",
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().String("entity", "leads", "entity type (leads, companies)")
	catalogCmd.Flags().Bool("cross-entity", true, "include fields of the related entity")
	catalogCmd.Flags().String("records", "", "records JSON file instead of the database")
	catalogCmd.Flags().Bool("json", false, "print JSON instead of a table")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	entityFlag, _ := cmd.Flags().GetString("entity")
	cross, _ := cmd.Flags().GetBool("cross-entity")
	recordsPath, _ := cmd.Flags().GetString("records")
	asJSON, _ := cmd.Flags().GetBool("json")

	entity, err := types.ParseEntityType(entityFlag)
	if err != nil {
		return fmt.Errorf("--entity %q: %w", entityFlag, err)
	}

	var fields []types.FilterableField
	if recordsPath != "" {
		var recs recordsFile
		if err := readJSONFile(recordsPath, &recs); err != nil {
			return err
		}
		fields = catalog.Build(catalog.Input{
			Entity:         entity,
			Leads:          recs.Leads,
			Companies:      recs.Companies,
			PipelineStages: cfg.Filter.PipelineStages,
			CrossEntity:    cross,
		})
	} else {
		rt, err := openRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		resp, err := rt.service.FieldCatalog(workspaceContext(cmd.Context()), &api.FieldCatalogRequest{EntityType: entity, CrossEntity: &cross})
		if err != nil {
			return err
		}
		fields = resp.Fields
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), fields)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tNAME\tLABEL\tTYPE\tCUSTOM")
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", f.EntitySource, f.Name, f.Label, f.Type, f.IsCustomField)
	}
	return w.Flush()
}
