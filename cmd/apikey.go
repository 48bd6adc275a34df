package cmd

import (
	"fmt"

	"github.com/vibast-solutions/ms-go-idmatch/app/service"

	"github.com/spf13/cobra"
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the lookup API key",
}

var apiKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an API key and the bcrypt hash to set as API_KEY_HASH",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		key, hash, err := service.GenerateAPIKey()
		if err != nil {
			return err
		}

		fmt.Printf("api_key: %s\n", key)
		fmt.Printf("api_key_hash: %s\n", hash)
		return nil
	},
}

func init() {
	apiKeyCmd.AddCommand(apiKeyGenerateCmd)
	rootCmd.AddCommand(apiKeyCmd)
}
