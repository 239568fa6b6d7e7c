package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/prospector/internal/core/auth"
	"github.com/solatis/prospector/internal/core/config"
	"github.com/solatis/prospector/internal/logger"
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue an API key for the workspace and print it once",
	RunE:  runAPIKeyCreate,
}

var apiKeyRevokeCmd = &cobra.Command{
	Use:   "revoke API_KEY_ID",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apiKeyCmd)
	apiKeyCmd.AddCommand(apiKeyCreateCmd, apiKeyRevokeCmd)
	apiKeyCreateCmd.Flags().String("name", "", "human-readable key name")
}

func openAuthenticator(cmd *cobra.Command) (*auth.Authenticator, *runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	secrets, err := config.APISecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load API secrets: %w", err)
	}
	rt, err := openRuntime(cfg)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAuthenticator(secrets, rt.queries, logger.Get()), rt, nil
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	a, rt, err := openAuthenticator(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	id, key, err := a.IssueKey(cmd.Context(), workspace, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "api_key_id: %s\napi_key:    %s\n", id, key)
	return nil
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	a, rt, err := openAuthenticator(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := a.RevokeKey(cmd.Context(), args[0]); err != nil {
		return err
	}
	logger.Get().Infow("revoked API key", "api_key_id", args[0])
	return nil
}
