package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solatis/prospector/internal/core/api"
	"github.com/solatis/prospector/internal/ingest"
	"github.com/solatis/prospector/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import leads from a CSV or XLSX file into the workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringArray("map", nil, "override a column mapping as HEADER=TARGET (empty TARGET ignores the column)")
	importCmd.Flags().Bool("dry-run", false, "print the suggested mapping without storing anything")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrides, _ := cmd.Flags().GetStringArray("map")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mapping := make(map[string]string, len(overrides))
	for _, o := range overrides {
		header, target, ok := strings.Cut(o, "=")
		if !ok {
			return fmt.Errorf("--map %q: expected HEADER=TARGET", o)
		}
		mapping[header] = target
	}

	if dryRun {
		table, err := ingest.ReadTable(path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		suggested := ingest.SuggestMapping(table.Headers)
		for h, t := range mapping {
			if _, ok := suggested[h]; ok {
				suggested[h] = t
			}
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{"rows": len(table.Rows), "mapping": suggested})
	}

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.service.ImportLeads(workspaceContext(cmd.Context()), &api.ImportLeadsRequest{
		FileName: filepath.Base(path),
		Data:     data,
		Mapping:  mapping,
	})
	if err != nil {
		return err
	}
	logger.Get().Infow("import finished", "workspace", workspace, "leads", resp.Leads, "companies", resp.CompaniesCreated)
	return writeJSON(cmd.OutOrStdout(), resp)
}
