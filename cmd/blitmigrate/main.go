package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blit-migrate/internal/app"
	"blit-migrate/internal/config"
	mErrors "blit-migrate/internal/errors"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a migration failure kind to its process status. Anything
// else (usage, config, journal) exits 1.
func exitCode(err error) int {
	if mErr, ok := mErrors.As(err); ok {
		return mErr.ExitCode()
	}
	return 1
}

// loadConfig reads the config file, falling back to defaults when there is none.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewApp(cfg, app.Options{Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "blitmigrate",
	Short:         "Upgrade blit animation projects from format version 1 to 2",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate OLD_DIR NEW_DIR",
	Short: "Migrate a version 1 project into a new directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Migrate(cmd.Context(), args[0], args[1], overwrite, dryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.DryRun {
			fmt.Fprintf(out, "Dry run: would migrate %s -> %s\n", result.Source, result.Destination)
		} else {
			fmt.Fprintf(out, "Migrated %s -> %s\n", result.Source, result.Destination)
		}
		fmt.Fprintf(out, "Run:    %s\n", result.RunID)
		fmt.Fprintf(out, "Cels:   %d\n", result.CelCount)
		fmt.Fprintf(out, "Frames: %d\n", result.FrameCount)
		fmt.Fprintf(out, "Assets: %d\n", len(result.Assets))
		if !result.DryRun {
			fmt.Fprintf(out, "Took:   %s\n", result.Duration.Truncate(time.Millisecond))
		}
		return nil
	},
}

// inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect DIR",
	Short: "Show the format version and contents of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.Inspect(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Project:   %s\n", info.Path)
		fmt.Fprintf(out, "Name:      %s\n", info.Name)
		fmt.Fprintf(out, "Sequence:  version %s\n", info.SequenceVersion)
		if info.PaletteVersion != "" {
			fmt.Fprintf(out, "Palette:   version %s\n", info.PaletteVersion)
		} else {
			fmt.Fprintln(out, "Palette:   missing")
		}
		fmt.Fprintf(out, "Size:      %dx%d\n", info.Width, info.Height)
		fmt.Fprintf(out, "Timing:    %d fps, length %d\n", info.FPS, info.SeqLength)
		fmt.Fprintf(out, "Cels:      %d\n", info.CelCount)
		fmt.Fprintf(out, "Frames:    %d\n", info.FrameCount)
		fmt.Fprintf(out, "Planes:    %d\n", info.PlaneCount)
		for _, name := range info.MissingAssets {
			fmt.Fprintf(out, "Missing:   %s\n", name)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View migration run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No migrations recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if !r.FinishedAt.IsZero() {
				duration = r.Duration().Truncate(time.Millisecond).String()
			}
			outcome := string(r.Status)
			if r.ErrorKind != "" {
				outcome = fmt.Sprintf("%s (%s at %s)", r.Status, r.ErrorKind, r.Stage)
			}
			if r.DryRun {
				outcome += " [dry run]"
			}
			fmt.Fprintf(out, "%s  %s  %s -> %s  %s  %s\n",
				r.ID[:min(8, len(r.ID))],
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Source,
				r.Destination,
				outcome,
				duration,
			)
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(cmd.OutOrStdout(), "Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", path)
		fmt.Fprintf(out, "Base Dir:         %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:          %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Journal:          %s %s\n", cfg.Journal.Type, cfg.Journal.DataDir)
		fmt.Fprintf(out, "Assets:           %s (verify checksums: %t)\n", cfg.Assets.Type, cfg.Assets.VerifyChecksums)
		fmt.Fprintf(out, "Keep Staging:     %t\n", cfg.Staging.KeepOnFailure)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every stage and asset copy")

	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolP("overwrite", "o", false, "Replace NEW_DIR if it already exists, deleting every file in it that the migration does not write")
	migrateCmd.Flags().Bool("dry-run", false, "Validate and transform without writing anything")

	rootCmd.AddCommand(inspectCmd)

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
