package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/solatis/prospector/internal/core/api"
	"github.com/solatis/prospector/internal/logger"
	"github.com/solatis/prospector/internal/rules"
	"github.com/solatis/prospector/internal/types"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Evaluate a rule chain and print the matching records",
	Long: `Evaluate a rule chain against the workspace's stored records, or against a
records file ({"leads": [...], "companies": [...]}) with --records.
The chain is a JSON array of rules (--rules) or a saved preset (--preset).`,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().String("entity", "leads", "entity type to filter (leads, companies)")
	filterCmd.Flags().String("rules", "", "rule chain JSON file")
	filterCmd.Flags().String("preset", "", "saved preset id")
	filterCmd.Flags().String("records", "", "records JSON file instead of the database")
	filterCmd.Flags().String("explain", "", "print per-rule results for this record id")
}

// recordsFile is the offline input of filter and catalog.
type recordsFile struct {
	Leads     []*types.Lead    `json:"leads"`
	Companies []*types.Company `json:"companies"`
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	entityFlag, _ := cmd.Flags().GetString("entity")
	rulesPath, _ := cmd.Flags().GetString("rules")
	presetID, _ := cmd.Flags().GetString("preset")
	recordsPath, _ := cmd.Flags().GetString("records")
	explainID, _ := cmd.Flags().GetString("explain")

	entity, err := types.ParseEntityType(entityFlag)
	if err != nil {
		return fmt.Errorf("--entity %q: %w", entityFlag, err)
	}

	req := api.FilterRequest{PresetID: types.PresetID(presetID)}
	if rulesPath != "" {
		if err := readJSONFile(rulesPath, &req.Rules); err != nil {
			return err
		}
	}

	if recordsPath != "" {
		if presetID != "" {
			return fmt.Errorf("--preset needs the database; use --rules with --records")
		}
		var recs recordsFile
		if err := readJSONFile(recordsPath, &recs); err != nil {
			return err
		}
		return filterOffline(cmd.OutOrStdout(), entity, req.Rules, recs, explainID)
	}

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	ctx := workspaceContext(cmd.Context())

	if explainID != "" {
		resp, err := rt.service.Explain(ctx, &api.ExplainRequest{FilterRequest: req, EntityType: entity, RecordID: explainID})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp.Explanation)
	}
	return filterStored(ctx, cmd.OutOrStdout(), rt.service, entity, &req)
}

func filterStored(ctx context.Context, w io.Writer, svc *api.FilterService, entity types.EntityType, req *api.FilterRequest) error {
	switch entity {
	case types.EntityCompanies:
		resp, err := svc.FilterCompanies(ctx, req)
		if err != nil {
			return err
		}
		return writeJSON(w, resp)
	default:
		resp, err := svc.FilterLeads(ctx, req)
		if err != nil {
			return err
		}
		return writeJSON(w, resp)
	}
}

// filterOffline evaluates chain over recs without touching the database.
func filterOffline(w io.Writer, entity types.EntityType, chain []types.FilterRule, recs recordsFile, explainID string) error {
	if err := rules.ValidateChain(chain); err != nil {
		return err
	}
	engine := rules.NewEngine(logger.Get())

	switch entity {
	case types.EntityCompanies:
		if explainID != "" {
			company, ok := lo.Find(recs.Companies, func(c *types.Company) bool { return c != nil && c.ID == explainID })
			if !ok {
				return fmt.Errorf("company %s: %w", explainID, types.ErrNotFound)
			}
			return writeJSON(w, engine.ExplainCompany(company, recs.Leads, chain))
		}
		matched := engine.FilterCompanies(recs.Companies, recs.Leads, chain)
		return writeJSON(w, api.FilterCompaniesResponse{Companies: matched, Total: len(matched), Scanned: len(recs.Companies)})
	default:
		if explainID != "" {
			lead, ok := lo.Find(recs.Leads, func(l *types.Lead) bool { return l != nil && l.ID == explainID })
			if !ok {
				return fmt.Errorf("lead %s: %w", explainID, types.ErrNotFound)
			}
			return writeJSON(w, engine.ExplainLead(lead, recs.Companies, chain))
		}
		matched := engine.FilterLeads(recs.Leads, recs.Companies, chain)
		return writeJSON(w, api.FilterLeadsResponse{Leads: matched, Total: len(matched), Scanned: len(recs.Leads)})
	}
}
