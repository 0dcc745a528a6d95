package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hcf/internal/source/curseforge"
)

var authNoVerify bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the CurseForge API key",
	Long: `Manage the CurseForge API key.

The key is read from ` + apiKeyEnv + ` if set, otherwise from the key stored
with 'hcf auth set-key'.`,
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store a CurseForge API key",
	Long: `Store a CurseForge API key. Without an argument the key is read from the
terminal without echo.

To get a key:
  1. Visit https://console.curseforge.com/
  2. Create a project and generate an API key
  3. Copy your API key`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSetKey,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is available",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	authSetKeyCmd.Flags().BoolVar(&authNoVerify, "no-verify", false, "store the key without testing it against the API")

	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSetKey(cmd *cobra.Command, args []string) error {
	var apiKey string
	if len(args) > 0 {
		apiKey = strings.TrimSpace(args[0])
	} else {
		var err error
		if apiKey, err = readAPIKey(); err != nil {
			return fmt.Errorf("reading API key: %w", err)
		}
	}
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	if !authNoVerify {
		fmt.Print("Validating... ")
		src := newSource(service)
		src.SetAPIKey(apiKey)
		if err := validateAPIKey(cmd.Context(), src); err != nil {
			fmt.Println("failed")
			return fmt.Errorf("invalid API key: %w", err)
		}
		fmt.Println("done")
	}

	if err := service.SaveSourceToken(sourceID, apiKey); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("API key saved.")
	return nil
}

// validateAPIKey resolves the game ID, which any authenticated request can do.
func validateAPIKey(ctx context.Context, src *curseforge.CurseForge) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	_, err := src.GameID(ctx)
	return err
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if key := os.Getenv(apiKeyEnv); key != "" {
		fmt.Printf("CurseForge: authenticated via %s (key: %s)\n", apiKeyEnv, maskAPIKey(key))
		return nil
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	token, err := service.GetSourceToken(sourceID)
	if err != nil {
		return fmt.Errorf("checking %s: %w", sourceID, err)
	}
	if token == nil {
		fmt.Println("CurseForge: not authenticated")
		return nil
	}

	fmt.Printf("CurseForge: authenticated (key: %s, saved %s)\n", maskAPIKey(token.APIKey), token.UpdatedAt.Local().Format("2006-01-02"))
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	if err := service.DeleteSourceToken(sourceID); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}

	fmt.Println("Removed CurseForge credentials.")
	return nil
}

// readAPIKey prompts for and reads an API key from the terminal
func readAPIKey() (string, error) {
	fmt.Print("Enter API key: ")

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	// Piped input
	key, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && key == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// maskAPIKey returns a masked version of the API key (shows first 3 and last 3 chars)
func maskAPIKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
