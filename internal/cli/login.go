// internal/cli/login.go
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seolens/seolens/internal/auth"
	"github.com/seolens/seolens/internal/ui"
)

var loginProfile string

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <endpoint>",
	Short: "Store an API key for a collection endpoint",
	Long: `Saves the endpoint URL and API key in your OS keyring (or an
encrypted-at-rest fallback file in CI environments). Stored credentials
are used automatically when no --endpoint/--api-key flags are given.`,
	Example: `  # Store credentials for the default profile
  seolens login https://collect.example.com/events

  # Keep separate staging credentials
  seolens login https://staging.example.com/events --profile=staging`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove a stored API key",
	Example: `  # Remove the default credentials
  seolens logout

  # Remove the staging profile
  seolens logout --profile=staging`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&loginProfile, "profile", "", "Credential profile name")
	logoutCmd.Flags().StringVar(&loginProfile, "profile", "", "Credential profile name")

	// Credentials need no running application
	loginCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil }
	logoutCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil }
}

func runLogin(cmd *cobra.Command, args []string) error {
	endpoint := args[0]
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return fmt.Errorf("invalid endpoint: must start with http:// or https://")
	}

	fmt.Fprint(os.Stderr, "API key: ")
	reader := bufio.NewReader(os.Stdin)
	key, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	cred := &auth.Credential{
		Profile:  loginProfile,
		Endpoint: endpoint,
		APIKey:   key,
	}
	if err := auth.SaveCredential(cred); err != nil {
		return err
	}

	fmt.Printf("%s Credentials saved for profile %q\n", ui.Success("✓"), cred.Profile)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := auth.DeleteCredential(loginProfile); err != nil {
		return err
	}
	profile := loginProfile
	if profile == "" {
		profile = auth.DefaultProfile
	}
	fmt.Printf("%s Credentials removed for profile %q\n", ui.Success("✓"), profile)
	return nil
}
