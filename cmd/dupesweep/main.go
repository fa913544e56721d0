package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dupesweep/dupesweep/internal/config"
	"github.com/dupesweep/dupesweep/internal/deleter"
	"github.com/dupesweep/dupesweep/internal/engine"
	"github.com/dupesweep/dupesweep/internal/filter"
	"github.com/dupesweep/dupesweep/internal/index"
	"github.com/dupesweep/dupesweep/internal/progress"
	"github.com/dupesweep/dupesweep/internal/reporter"
	"github.com/dupesweep/dupesweep/internal/ui"
	"github.com/dupesweep/dupesweep/internal/walker"
	"github.com/dupesweep/dupesweep/pkg/utils"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	indexPath  string
	verbose    bool

	excludeFolders []string
	fileTypes      []string
	minSizeStr     string
	includeHidden  bool
	noSubfolders   bool
	includeDirs    bool
	flushEvery     int
	noUI           bool

	outputFmt   string
	outputFile  string
	typeFilter  string
	searchQuery string
	sortBy      string
	reverseSort bool
	groupSort   string

	dryRun bool
	force  bool

	initConfig bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dupesweep",
	Short: "Duplicate file and directory finder",
	Long: `Dupesweep finds duplicate files and directories by content, using size
bucketing and two-stage hashing so unique files are never read in full.
Results persist in a local index across runs.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
}

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a directory tree for duplicates",
	Long: `Scans the given directory, hashes files that could be duplicates, and
records the results in the index. Interrupting the scan keeps partial
results.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		eng, store, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		opts, err := scanOptions(cmd, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if noUI {
			if err := eng.ScanOptimized(ctx, root, opts); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			fmt.Println(progress.Format(eng.Reporter().Latest()))
		} else {
			totalFiles, _ := eng.CountItems(root)
			err := ui.RunScan(ctx, eng.Reporter(), totalFiles, func(ctx context.Context) error {
				return eng.ScanOptimized(ctx, root, opts)
			})
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
		}

		stats := eng.Stats()
		fmt.Printf("Hashed %d files and %d directories", stats.FilesHashed, stats.DirsHashed)
		if stats.Errors > 0 {
			fmt.Printf(" (%d skipped)", stats.Errors)
			if verbose {
				for _, p := range stats.Skipped {
					fmt.Printf("\n  skipped: %s", p)
				}
			}
		}
		fmt.Println()

		return printDuplicates(eng, cfg)
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Hash a file or directory tree and print its content hash",
	Long: `Fully hashes the given path with no pre-filtering. For a directory the
hash covers every file and subdirectory beneath it, so two directories
with identical content get the same hash regardless of file names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		eng, store, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hash, err := eng.RecursiveHash(ctx, path, cfg.Scan.FlushEvery)
		if err != nil {
			return fmt.Errorf("hash failed: %w", err)
		}
		if hash == "" {
			fmt.Println("Cancelled, partial results saved")
			return nil
		}

		fmt.Println(hash)
		return nil
	},
}

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Show duplicates from the index",
	Long:  `Lists duplicate groups recorded by previous scans, with filtering and sorting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		eng, store, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		results, err := collectResults(cmd, eng, cfg)
		if err != nil {
			return err
		}

		format := parseFormat(outputFmt)
		if outputFile != "" {
			if err := reporter.SaveToFile(results, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputFile)
			return nil
		}

		return reporter.New(os.Stdout, format).Report(results)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete duplicate copies, keeping the first-discovered member of each group",
	Long: `Deletes all but the canonical member of every duplicate group matching
the filters. The canonical member is the one discovered first. Deleted
paths are removed from the index immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun = dryRun
		}

		eng, store, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		results, err := collectResults(cmd, eng, cfg)
		if err != nil {
			return err
		}

		groups := append(append([]filter.Group{}, results.Files...), results.Dirs...)
		if len(groups) == 0 {
			fmt.Println("✨ No duplicates found. Nothing to delete.")
			return nil
		}

		recoverable := filter.RecoverableSpace(groups)
		fmt.Printf("%d duplicate groups, %s recoverable\n",
			len(groups), utils.FormatBytes(recoverable))

		if !force && !cfg.DryRun {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete duplicate copies (%s)", utils.FormatBytes(recoverable)),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				if err == promptui.ErrAbort {
					fmt.Println("Deletion cancelled.")
					return nil
				}
				return fmt.Errorf("confirmation failed: %w", err)
			}
		}

		if cfg.DryRun {
			fmt.Println("\n[DRY RUN MODE] No files will be deleted.")
		}

		result := deleter.New(eng, cfg.DryRun).DeleteDuplicates(groups)

		fmt.Printf("\n✅ Deleted: %d items (%s)\n",
			len(result.DeletedPaths), utils.FormatBytes(result.DeletedSize))
		if len(result.SkippedPaths) > 0 {
			fmt.Printf("⚠️  Skipped: %d items\n", len(result.SkippedPaths))
		}
		if len(result.Errors) > 0 {
			fmt.Print(deleter.FormatErrorSummary(result.Errors))
		}

		if !cfg.DryRun {
			if err := eng.Flush(); err != nil {
				return fmt.Errorf("failed to save index: %w", err)
			}
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the hash index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		eng, store, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := eng.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		fmt.Println("Index cleared.")
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count <directory>",
	Short: "Count files and directories under a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		eng, store, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		files, dirs := eng.CountItems(root)
		fmt.Printf("%d files, %d directories\n", files, dirs)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initConfig {
			path, err := config.EnsureConfigExists()
			if err != nil {
				return err
			}
			fmt.Printf("Config file: %s\n", path)
			return nil
		}

		cfgPath := configPath
		if cfgPath == "" {
			var err error
			cfgPath, err = config.GetConfigPath()
			if err != nil {
				return err
			}
		}

		fmt.Printf("Config file: %s\n", cfgPath)

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
			fmt.Println("Config file does not exist. Using default configuration.")
		}
		fmt.Printf("Index: %s\n", cfg.ResolvedIndexPath())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "index database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	scanCmd.Flags().StringSliceVar(&excludeFolders, "exclude", nil, "folder names or glob patterns to skip")
	scanCmd.Flags().StringSliceVar(&fileTypes, "types", nil, "only scan these file extensions (e.g. jpg,png)")
	scanCmd.Flags().StringVar(&minSizeStr, "min-size", "", "skip files smaller than this (e.g. 10KB)")
	scanCmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files and folders")
	scanCmd.Flags().BoolVar(&noSubfolders, "no-subfolders", false, "do not descend into subdirectories")
	scanCmd.Flags().BoolVar(&includeDirs, "include-dirs", false, "also detect duplicate directories (hashes every file)")
	scanCmd.Flags().IntVar(&flushEvery, "flush-every", 0, "persist the index every N hashed items (0 uses config)")
	scanCmd.Flags().BoolVar(&noUI, "no-ui", false, "plain output without the live progress view")

	for _, cmd := range []*cobra.Command{dupesCmd, deleteCmd} {
		cmd.Flags().StringVar(&typeFilter, "type", "all",
			fmt.Sprintf("file type category (%v)", filter.TypeCategories()))
		cmd.Flags().StringVar(&minSizeStr, "min-size", "", "minimum size (e.g. 10MB)")
		cmd.Flags().StringVar(&searchQuery, "search", "", "only paths containing this text")
		cmd.Flags().StringVar(&sortBy, "sort", "", "sort paths within groups (size, name, date, path)")
		cmd.Flags().BoolVar(&reverseSort, "reverse", false, "reverse the sort order")
		cmd.Flags().StringVar(&groupSort, "group-sort", "", "sort groups (group_size, count, hash)")
	}

	configCmd.Flags().BoolVar(&initConfig, "init", false, "write the default config file if none exists")

	dupesCmd.Flags().StringVar(&outputFmt, "output", "text", "output format (text, summary, json, yaml)")
	dupesCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	deleteCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without actually deleting")
	deleteCmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		var cfgPath string
		cfgPath, err = config.GetConfigPath()
		if err == nil {
			cfg, err = config.Load(cfgPath)
		}
	}
	if err != nil {
		return nil, err
	}

	if indexPath != "" {
		cfg.IndexPath = indexPath
	}
	return cfg, nil
}

func openEngine(cfg *config.Config) (*engine.Engine, *index.Store, error) {
	store, err := index.Open(cfg.ResolvedIndexPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}

	eng, err := engine.New(store)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load index: %w", err)
	}
	return eng, store, nil
}

func scanOptions(cmd *cobra.Command, cfg *config.Config) (engine.Options, error) {
	opts := engine.Options{
		Options: walker.Options{
			ExcludeFolders: cfg.Scan.ExcludeFolders,
			FileTypes:      cfg.Scan.FileTypes,
			MinSize:        cfg.MinSizeBytes(),
			ScanSubfolders: cfg.Scan.ScanSubfolders,
			IncludeHidden:  cfg.Scan.IncludeHidden,
		},
		IncludeDirs: cfg.Scan.IncludeDirs,
		FlushEvery:  cfg.Scan.FlushEvery,
	}

	if cmd.Flags().Changed("exclude") {
		opts.ExcludeFolders = excludeFolders
	}
	if cmd.Flags().Changed("types") {
		opts.FileTypes = fileTypes
	}
	if cmd.Flags().Changed("min-size") {
		n, err := utils.ParseSize(minSizeStr)
		if err != nil {
			return opts, fmt.Errorf("invalid --min-size: %w", err)
		}
		opts.MinSize = n
	}
	if cmd.Flags().Changed("hidden") {
		opts.IncludeHidden = includeHidden
	}
	if cmd.Flags().Changed("no-subfolders") {
		opts.ScanSubfolders = !noSubfolders
	}
	if cmd.Flags().Changed("include-dirs") {
		opts.IncludeDirs = includeDirs
	}
	if cmd.Flags().Changed("flush-every") {
		opts.FlushEvery = flushEvery
	}

	return opts, nil
}

// collectResults detects duplicates, applies the shared filter flags,
// and orders the groups.
func collectResults(cmd *cobra.Command, eng *engine.Engine, cfg *config.Config) (*reporter.Results, error) {
	fopts := filter.Options{
		FileType: typeFilter,
		Query:    searchQuery,
		SortBy:   cfg.Output.SortBy,
		Reverse:  cfg.Output.Reverse,
	}
	if cmd.Flags().Changed("sort") {
		fopts.SortBy = sortBy
	}
	if cmd.Flags().Changed("reverse") {
		fopts.Reverse = reverseSort
	}
	if cmd.Flags().Changed("min-size") {
		n, err := utils.ParseSize(minSizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-size: %w", err)
		}
		fopts.MinSize = n
	}

	gsort := cfg.Output.GroupSort
	if cmd.Flags().Changed("group-sort") {
		gsort = groupSort
	}

	dup := filter.Apply(eng.DetectDuplicates(), fopts)
	return &reporter.Results{
		Files: filter.SortGroups(dup.Files, gsort),
		Dirs:  filter.SortGroups(dup.Dirs, gsort),
	}, nil
}

// printDuplicates shows a post-scan summary of what the index now holds.
func printDuplicates(eng *engine.Engine, cfg *config.Config) error {
	dup := eng.DetectDuplicates()
	results := &reporter.Results{
		Files: filter.SortGroups(dup.Files, cfg.Output.GroupSort),
		Dirs:  filter.SortGroups(dup.Dirs, cfg.Output.GroupSort),
	}
	return reporter.New(os.Stdout, reporter.FormatSummary).Report(results)
}

func parseFormat(s string) reporter.OutputFormat {
	switch s {
	case "json":
		return reporter.FormatJSON
	case "yaml":
		return reporter.FormatYAML
	case "summary":
		return reporter.FormatSummary
	default:
		return reporter.FormatText
	}
}
