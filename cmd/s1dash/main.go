package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/studiowebux/s1dash/internal/activity"
	"github.com/studiowebux/s1dash/internal/bookmarks"
	"github.com/studiowebux/s1dash/internal/cli"
	"github.com/studiowebux/s1dash/internal/config"
	"github.com/studiowebux/s1dash/internal/keybinds"
	"github.com/studiowebux/s1dash/internal/logging"
	"github.com/studiowebux/s1dash/internal/registry"
	"github.com/studiowebux/s1dash/internal/store"
	"github.com/studiowebux/s1dash/internal/tui"
	"github.com/studiowebux/s1dash/internal/types"
	"github.com/studiowebux/s1dash/internal/version"
)

var (
	appVersion = "0.1.0"
)

// logCloser holds the log file opened in PersistentPreRunE
var logCloser io.Closer

// activityLog is opened on first use and closed in main
var activityLog *activity.Manager

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if activityLog != nil {
		activityLog.Close()
	}
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "s1dash",
	Short: "s1dash - key/value store dashboard",
	Long: `s1dash is a terminal dashboard for S1 key/value stores.

Run without arguments to start the TUI. The subcommands script the same
saved connections from the shell.

Connections are chosen by the base URL scheme:
  https://...           S1 HTTP API (token is the database token)
  redis://, rediss://   Redis (token is the password or user:password)
  sqlite://path.db      local SQLite file (token selects the bucket)
  mem://name            in-process store, lost on exit

Examples:
  s1dash                                  # Start interactive TUI
  s1dash connections add --name prod --token $S1_TOKEN
  s1dash keys prod                        # List keys
  s1dash get prod config --pretty         # Print a value
  s1dash get prod config -q 'items[].id'  # Query a JSON value
  s1dash activity --stats                 # Operation timings per store
  echo '{"a":1}' | s1dash set prod doc -  # Write a value from stdin
  s1dash export prod -f yaml > dump.yaml  # Dump every key`,
	Version:       appVersion,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if flagLogLevel != "" {
			config.LogLevel = flagLogLevel
		}

		// The TUI owns the terminal, so it logs to a file
		opts := logging.Options{Level: config.LogLevel, Console: true}
		if cmd == cmd.Root() {
			opts.File = config.LogFile
		}
		closer, err := logging.Init(opts)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		kb, err := keybinds.LoadOrDefault(config.KeybindsFile)
		if err != nil {
			return err
		}

		opts := tui.Options{
			Opener:   newOpener(),
			Registry: newRegistry(),
			Keybinds: kb,
			Version:  appVersion,
		}

		// Saved queries are optional; the dashboard works without them
		if manager, err := bookmarks.NewManager(config.DatabasePath); err != nil {
			l := logging.With("main")
			l.Warn().Err(err).Msg("Query bookmarks unavailable")
		} else {
			defer manager.Close()
			opts.Bookmarks = manager
		}

		return tui.Run(cmd.Context(), opts)
	},
}

func newOpener() store.Opener {
	var opener store.Opener = store.NewDispatcher(store.S1Options{
		Timeout:   config.HTTPTimeout,
		UserAgent: "s1dash/" + appVersion,
	}, config.DatabasePath)

	if log := openActivityLog(); log != nil {
		opener = activity.NewOpener(opener, log)
	}
	return opener
}

func openActivityLog() *activity.Manager {
	if activityLog == nil {
		m, err := activity.NewManager(config.DatabasePath)
		if err != nil {
			l := logging.With("main")
			l.Warn().Err(err).Msg("Activity log unavailable")
			return nil
		}
		activityLog = m
	}
	return activityLog
}

func newRegistry() *registry.Registry {
	return registry.New(registry.NewFileStore())
}

func newApp() *cli.App {
	app := cli.New(newRegistry(), newOpener())
	app.ActivityLog = activityLog
	return app
}

var connectionsCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn"},
	Short:   "List saved connections",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().ListConnections()
	},
}

var connectionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := newApp().AddConnection(types.ConnectionForm{
			Name:       flagConnName,
			Credential: flagConnToken,
			BaseURL:    flagConnURL,
		})
		return err
	},
}

var connectionsForgetCmd = &cobra.Command{
	Use:   "forget <connection>",
	Short: "Remove a saved connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().ForgetConnection(args[0])
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys [connection]",
	Short: "List keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().Keys(cmd.Context(), optionalArg(args, 0), flagPattern)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <connection> <key>",
	Short: "Print a value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().Get(cmd.Context(), args[0], args[1], cli.GetOptions{
			Pretty: flagPretty,
			Filter: flagFilter,
			Query:  flagQuery,
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <connection> <key> <value|->",
	Short: "Write a value (- reads stdin)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().Set(cmd.Context(), args[0], args[1], args[2], cli.SetOptions{Compact: flagCompact})
	},
}

var delCmd = &cobra.Command{
	Use:     "del <connection> <key>",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete a key",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().Delete(cmd.Context(), args[0], args[1])
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [connection]",
	Short: "Dump every key and value",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newApp().Export(cmd.Context(), optionalArg(args, 0), cli.ExportOptions{
			Format:      flagFormat,
			Pattern:     flagPattern,
			Concurrency: flagConcurrency,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "s1dash %s\n", appVersion)
		if !flagCheck {
			return nil
		}

		update, err := version.NewChecker().Check(cmd.Context(), appVersion)
		if err != nil {
			return err
		}
		if update.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "A newer version is available: %s (%s)\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "You are up to date")
		}
		return nil
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity [connection]",
	Short: "Show the local log of store operations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		app.ActivityLog = openActivityLog()
		return app.Activity(optionalArg(args, 0), cli.ActivityOptions{
			Limit: flagLimit,
			Stats: flagStats,
			Clear: flagClear,
		})
	},
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// Global flags
var flagLogLevel string

// Flags for connections add
var (
	flagConnName  string
	flagConnToken string
	flagConnURL   string
)

// Flags for key commands
var (
	flagPattern     string
	flagPretty      bool
	flagFilter      string
	flagQuery       string
	flagCompact     bool
	flagFormat      string
	flagConcurrency int
	flagCheck       bool
)

// Flags for activity
var (
	flagLimit int
	flagStats bool
	flagClear bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	connectionsAddCmd.Flags().StringVarP(&flagConnName, "name", "n", "", "Connection name")
	connectionsAddCmd.Flags().StringVarP(&flagConnToken, "token", "t", "", "Database token")
	connectionsAddCmd.Flags().StringVarP(&flagConnURL, "url", "u", "", "Base URL (defaults to "+types.DefaultBaseURL+")")
	connectionsAddCmd.MarkFlagRequired("name")
	connectionsAddCmd.MarkFlagRequired("token")

	keysCmd.Flags().StringVar(&flagPattern, "filter", "", "Fuzzy filter on key names")

	getCmd.Flags().BoolVarP(&flagPretty, "pretty", "p", false, "Indent JSON values")
	getCmd.Flags().StringVar(&flagFilter, "filter", "", "JMESPath filter expression")
	getCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command)")

	setCmd.Flags().BoolVar(&flagCompact, "compact", false, "Strip JSON formatting before writing")

	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "json", "Output format (json/yaml)")
	exportCmd.Flags().StringVar(&flagPattern, "filter", "", "Fuzzy filter on key names")
	exportCmd.Flags().IntVar(&flagConcurrency, "concurrency", cli.DefaultExportConcurrency, "Parallel reads")

	activityCmd.Flags().IntVarP(&flagLimit, "limit", "n", 50, "Newest entries to show (0 for all)")
	activityCmd.Flags().BoolVar(&flagStats, "stats", false, "Aggregate per endpoint and operation")
	activityCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the selected entries")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")

	connectionsCmd.AddCommand(connectionsAddCmd, connectionsForgetCmd)
	rootCmd.AddCommand(connectionsCmd, keysCmd, getCmd, setCmd, delCmd, exportCmd, activityCmd, versionCmd)
}
