package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photofind/internal/app"
	"photofind/internal/config"
	"photofind/internal/gallery"
	"photofind/internal/imgio"
	"photofind/internal/model"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "IndexFolder", "Search").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "photofind",
	Short: "Search your photos by what is in them",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set your API key with: photofind config set-key")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		keyState := "(not set, environment variable used)"
		if cfg.Provider.APIKey != "" {
			keyState = "(set)"
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Provider:  %s %s\n", cfg.Provider.Type, keyState)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the provider API key in the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Print("API key: ")
		key, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}
		if len(key) == 0 {
			return fmt.Errorf("empty key")
		}

		cfg.Provider.APIKey = strings.TrimSpace(string(key))
		if err := config.WriteToFile(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("API key stored for provider %q\n", cfg.Provider.Type)
		return nil
	},
}

// index command
var indexCmd = &cobra.Command{
	Use:   "index [FOLDER]",
	Short: "Index a folder of photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		rescanDeleted, _ := cmd.Flags().GetBool("rescan-deleted")
		rescanTags, _ := cmd.Flags().GetBool("rescan-tags")

		a, err := newApp(cmd, "IndexFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		summary, err := a.Index(cmd.Context(), target, gallery.IndexOptions{
			RescanDeleted: rescanDeleted,
			RescanTags:    rescanTags,
		})
		if err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}

		fmt.Printf("Indexed %d file(s), skipped %d\n", summary.Indexed, summary.Skipped)
		if len(summary.Failures) > 0 {
			fmt.Printf("%d file(s) failed:\n", len(summary.Failures))
			for _, f := range summary.Failures {
				fmt.Printf("  %s: %v\n", f.Path, f.Err)
			}
		}
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search indexed photos by description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		env, _ := cmd.Flags().GetString("env")

		filters := model.SearchFilters{}
		filters.ExcludePeople, _ = cmd.Flags().GetBool("exclude-people")
		filters.ExcludeFaces, _ = cmd.Flags().GetBool("exclude-faces")
		filters.ExcludeText, _ = cmd.Flags().GetBool("exclude-text")
		filters.OnlyDocuments, _ = cmd.Flags().GetBool("documents")
		filters.OnlyScreenshots, _ = cmd.Flags().GetBool("screenshots")

		switch model.Environment(env) {
		case model.EnvAny, model.EnvIndoor, model.EnvOutdoor:
			filters.Environment = model.Environment(env)
		default:
			return fmt.Errorf("invalid --env %q: use Indoor or Outdoor", env)
		}

		a, err := newApp(cmd, "Search")
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Search(cmd.Context(), args[0], limit, filters)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, r := range results {
			missing := ""
			if !imgio.SafeExists(r.Path) {
				missing = "  [missing]"
			}
			fmt.Printf("%.3f  %s%s\n", r.Score, r.Path, missing)
			if r.Caption != "" {
				fmt.Printf("       %s\n", r.Caption)
			}
		}
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm PATH...",
	Short: "Remove photos from the catalog (files on disk are untouched)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "MarkDeleted")
		if err != nil {
			return err
		}
		defer a.Close()

		paths, err := a.Remove(args)
		if err != nil {
			return fmt.Errorf("removing failed: %w", err)
		}

		fmt.Printf("Removed %d path(s) from the catalog\n", len(paths))
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Status")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.Status()
		if err != nil {
			return err
		}

		fmt.Printf("Catalog: %s\n", a.CatalogPath())
		if err := a.CheckSchema(); err != nil {
			fmt.Printf("Schema:  %v\n", err)
		} else {
			fmt.Println("Schema:  up to date")
		}
		fmt.Printf("Indexed: %d\n", counts.Active)
		fmt.Printf("Removed: %d\n", counts.Deleted)
		fmt.Printf("Total:   %d\n", counts.Total)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View indexing run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt != nil {
				d := r.FinishedAt.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %-12s  %s  %-8s  %s\n",
				r.ID[:8],
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
			)
		}
		return nil
	},
}

// thumb command
var thumbCmd = &cobra.Command{
	Use:   "thumb PATH",
	Short: "Write a square thumbnail of a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, _ := cmd.Flags().GetInt("size")
		out, _ := cmd.Flags().GetString("out")

		src := args[0]
		if out == "" {
			ext := filepath.Ext(src)
			out = strings.TrimSuffix(src, ext) + "_thumb.jpg"
		}

		if err := imgio.SaveThumbnail(src, out, size); err != nil {
			return fmt.Errorf("creating thumbnail: %w", err)
		}

		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetKeyCmd)

	// root commands
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("rescan-deleted", false, "Re-process only photos previously removed from the catalog")
	indexCmd.Flags().Bool("rescan-tags", false, "Re-evaluate tags without re-embedding")

	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "n", gallery.DefaultSearchLimit, "Maximum number of results")
	searchCmd.Flags().Bool("exclude-people", false, "Hide photos with people")
	searchCmd.Flags().Bool("exclude-faces", false, "Hide photos with visible faces")
	searchCmd.Flags().Bool("exclude-text", false, "Hide photos containing text")
	searchCmd.Flags().Bool("documents", false, "Only show document photos")
	searchCmd.Flags().Bool("screenshots", false, "Only show screenshots")
	searchCmd.Flags().String("env", "", "Restrict to Indoor or Outdoor scenes")

	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	rootCmd.AddCommand(thumbCmd)
	thumbCmd.Flags().IntP("size", "s", 256, "Thumbnail edge length in pixels")
	thumbCmd.Flags().StringP("out", "o", "", "Output path (default: <name>_thumb.jpg)")
}
