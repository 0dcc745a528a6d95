package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/scanner"
	"hcf/internal/source/curseforge"
	"hcf/internal/storage/config"
)

// ErrCancelled is returned when the user cancels an operation (e.g. prompt declined).
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

const (
	sourceID  = "curseforge"
	apiKeyEnv = "CURSEFORGE_API_KEY"
	apiURLEnv = "CURSEFORGE_API_URL"
)

var (
	version = "0.4.0"

	// Global flags
	configDir   string
	configFile  string
	dataDir     string
	gameDir     string
	metricsFile string
	verbose     bool
	jsonOutput  bool
	noColor     bool
	strictMatch bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hcf",
	Short: "Hytale CurseForge manager - install and update Hytale content from the terminal",
	Long: `hcf manages mods, worlds, prefabs, bootstrap packs and translations from
CurseForge inside a Hytale game directory.

Installed content is tracked in installed_mods.json in the game directory.
Run 'hcf --help' for available commands, or 'hcf tui' for the interactive UI.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/hcf)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "config file (overrides --config)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/hcf)")
	rootCmd.PersistentFlags().StringVarP(&gameDir, "game-dir", "d", "", "Hytale game directory (default: game_path from config)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output and debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (search, info, list, scan, update, history)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&strictMatch, "strict-match", false, "only bind local files whose name equals the item name")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
func colorEnabled() bool {
	return !noColor && os.Getenv("NO_COLOR") == ""
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorize(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return code + s + ansiReset
}

func colorGreen(s string) string  { return colorize(ansiGreen, s) }
func colorRed(s string) string    { return colorize(ansiRed, s) }
func colorYellow(s string) string { return colorize(ansiYellow, s) }

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	svc, err := core.NewService(cfg)
	if err != nil {
		return nil, err
	}
	if metricsFile != "" {
		svc.Config().MetricsFile = metricsFile
	}
	return svc, nil
}

// closeService closes svc, reporting failures as warnings.
func closeService(svc *core.Service) {
	if err := svc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", err)
	}
}

// getServiceConfig returns the service configuration with defaults.
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
	}

	if configFile != "" {
		path, err := config.ParseConfigPath(configFile)
		if err != nil {
			return core.ServiceConfig{}, err
		}
		cfg.ConfigFile = path
	}

	if cfg.ConfigDir == "" || cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
		}
		if cfg.ConfigDir == "" {
			cfg.ConfigDir = filepath.Join(homeDir, ".config", "hcf")
		}
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(homeDir, ".local", "share", "hcf")
		}
	}

	return cfg, nil
}

// getSourceAPIKey retrieves an API key from environment or database
func getSourceAPIKey(svc *core.Service, sourceID, envVar string) string {
	if key := os.Getenv(envVar); key != "" {
		return key
	}

	token, err := svc.GetSourceToken(sourceID)
	if err != nil || token == nil {
		return ""
	}
	return token.APIKey
}

// newSource builds the CurseForge source from stored settings.
func newSource(svc *core.Service) *curseforge.CurseForge {
	opts := []curseforge.Option{curseforge.WithCDNFallback(svc.Config().CDNFallback)}
	if u := os.Getenv(apiURLEnv); u != "" {
		opts = append(opts, curseforge.WithBaseURL(u))
	}
	return curseforge.New(nil, getSourceAPIKey(svc, sourceID, apiKeyEnv), opts...)
}

// requireSource returns the CurseForge source, failing early when no API key is available.
func requireSource(svc *core.Service) (*curseforge.CurseForge, error) {
	src := newSource(svc)
	if !src.IsAuthenticated() {
		return nil, fmt.Errorf("%w: no CurseForge API key; run 'hcf auth set-key' or set %s", domain.ErrAuthRequired, apiKeyEnv)
	}
	return src, nil
}

// openSession opens a session on the resolved game directory. The CurseForge
// API key must be available.
func openSession(svc *core.Service) (*core.Session, error) {
	src, err := requireSource(svc)
	if err != nil {
		return nil, err
	}
	return openSessionWith(svc, src)
}

// openLocalSession opens a session for operations that only touch the game
// directory, so no API key is required.
func openLocalSession(svc *core.Service) (*core.Session, error) {
	return openSessionWith(svc, newSource(svc))
}

func openSessionWith(svc *core.Service, src *curseforge.CurseForge) (*core.Session, error) {
	dir, err := svc.GameDir(gameDir)
	if err != nil {
		if errors.Is(err, domain.ErrGameDirNotSet) {
			return nil, fmt.Errorf("%w; use --game-dir or 'hcf config set game_path <dir>'", err)
		}
		return nil, err
	}

	var opts []core.SessionOption
	if strictMatch {
		opts = append(opts, core.WithMatcher(scanner.MatchStrict))
	}
	return svc.OpenSession(dir, src, opts...)
}
