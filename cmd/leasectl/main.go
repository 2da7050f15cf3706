package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anuragkhuntia/leasectl/internal/config"
	"github.com/anuragkhuntia/leasectl/internal/lease"
	"github.com/anuragkhuntia/leasectl/internal/logging"
	"github.com/anuragkhuntia/leasectl/internal/maas"
)

const defaultLogLevel = "info"

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)

	logger := logging.NewCLI(os.Stderr, &levelVar)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(logger, &levelVar, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("command interrupted", "error", err)
			os.Exit(130)
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// rootOptions carries the persistent flag values plus the logger the
// subcommands use. The logger is finalized in PersistentPreRunE, after
// flags are parsed, so --log-json and --log-level affect all output.
type rootOptions struct {
	maasURL    string
	apiKey     string
	configPath string
	logLevel   string
	logJSON    bool

	logger *slog.Logger
}

func newRootCommand(logger *slog.Logger, levelVar *slog.LevelVar, logOut io.Writer) *cobra.Command {
	opts := &rootOptions{logLevel: defaultLogLevel, logger: logger}

	root := &cobra.Command{
		Use:           "leasectl",
		Short:         "Manage DHCP leases through the MAAS API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.maasURL, "maas-url", "", "MAAS server URL (e.g. http://maas.example.com:5240)")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "MAAS API key (consumer:token:secret)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", defaultLogLevel, "Log verbosity (debug, info, warning, error)")
	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := parseLogLevel(opts.logLevel)
		if err != nil {
			return err
		}
		levelVar.Set(level)
		if opts.logJSON {
			opts.logger = logging.NewJSON(logOut, levelVar)
			slog.SetDefault(opts.logger)
		}
		return nil
	}

	root.AddCommand(
		newListCommand(opts),
		newDeleteCommand(opts),
		newAppendCommand(opts),
		newUpdateCommand(opts),
		newConfigureCommand(opts),
	)
	return root
}

// newSynchronizer resolves configuration and wires the MAAS client into
// a lease synchronizer. It fails before any network call when the
// credentials are unconfigured or the API key is malformed.
func newSynchronizer(logger *slog.Logger, opts *rootOptions) (*lease.Synchronizer, *config.Config, error) {
	cfg, err := config.Resolve(opts.maasURL, opts.apiKey, opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Configured() {
		logger.Warn("MAAS URL or API key not configured")
		logger.Warn("configure via --maas-url/--api-key flags, " +
			config.EnvMAASURL + "/" + config.EnvAPIKey + " environment variables, " +
			"or 'leasectl configure'")
		return nil, nil, fmt.Errorf("MAAS credentials are not configured")
	}

	timeout := time.Duration(cfg.API.RequestTimeoutSeconds) * time.Second
	client, err := maas.NewClient(cfg.MAASURL, cfg.APIKey, timeout, logger)
	if err != nil {
		return nil, nil, err
	}

	return &lease.Synchronizer{
		Logger: logger.With("component", "synchronizer"),
		Client: client,
		API:    cfg.API,
	}, cfg, nil
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List DHCP leases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := opts.logger.With("command", "list")
			sync, cfg, err := newSynchronizer(cmdLogger, opts)
			if err != nil {
				return err
			}

			cmdLogger.Info("fetching leases", "maas_url", cfg.MAASURL)
			result, err := sync.List(cmd.Context())
			if err != nil {
				return err
			}
			return lease.Render(cmd.OutOrStdout(), lease.Format(format), result)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(lease.FormatTable), "Output format (table, json, raw, detail)")
	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	var (
		ip  string
		mac string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Release a lease by IP or MAC address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (ip == "") == (mac == "") {
				return fmt.Errorf("specify exactly one of --ip or --mac")
			}

			sync, _, err := newSynchronizer(opts.logger.With("command", "delete"), opts)
			if err != nil {
				return err
			}

			identifier, kind := ip, lease.IdentifierIP
			if mac != "" {
				identifier, kind = mac, lease.IdentifierMAC
			}
			if err := sync.Release(cmd.Context(), identifier, kind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Released lease for %s\n", identifier)
			return nil
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "IP address of the lease")
	cmd.Flags().StringVar(&mac, "mac", "", "MAC address of the lease")
	return cmd
}

func newAppendCommand(opts *rootOptions) *cobra.Command {
	var (
		ip       string
		mac      string
		hostname string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "append",
		Short: "Reserve a new lease, or many from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync, _, err := newSynchronizer(opts.logger.With("command", "append"), opts)
			if err != nil {
				return err
			}

			if file != "" {
				result, err := sync.ApplyCSV(cmd.Context(), file, lease.BatchReserve)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed: %s\n", result)
				return nil
			}

			if ip == "" || mac == "" {
				return fmt.Errorf("specify --ip and --mac, or --file with a CSV path")
			}
			if err := sync.Reserve(cmd.Context(), ip, mac, hostname); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added lease for %s (%s)\n", ip, mac)
			return nil
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "IP address for the new lease")
	cmd.Flags().StringVar(&mac, "mac", "", "MAC address for the new lease")
	cmd.Flags().StringVar(&hostname, "hostname", "", "Hostname for the new lease")
	cmd.Flags().StringVar(&file, "file", "", "CSV file with columns: lease_name, ip, mac, hostname")
	return cmd
}

func newUpdateCommand(opts *rootOptions) *cobra.Command {
	var (
		name     string
		ip       string
		mac      string
		hostname string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a named DHCP snippet with a host stanza",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync, _, err := newSynchronizer(opts.logger.With("command", "update"), opts)
			if err != nil {
				return err
			}

			if file != "" {
				result, err := sync.ApplyCSV(cmd.Context(), file, lease.BatchUpdate)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed: %s\n", result)
				return nil
			}

			if name == "" || ip == "" || mac == "" {
				return fmt.Errorf("specify --name, --ip and --mac, or --file with a CSV path")
			}
			if err := sync.Update(cmd.Context(), name, ip, mac, hostname); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated snippet %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the DHCP snippet to replace")
	cmd.Flags().StringVar(&ip, "ip", "", "Fixed IP address for the host stanza")
	cmd.Flags().StringVar(&mac, "mac", "", "Hardware address for the host stanza")
	cmd.Flags().StringVar(&hostname, "hostname", "", "Hostname for the host stanza (defaults to the snippet name)")
	cmd.Flags().StringVar(&file, "file", "", "CSV file with columns: lease_name, ip, mac, hostname")
	return cmd
}

func newConfigureCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save MAAS credentials to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.maasURL == "" || opts.apiKey == "" {
				return fmt.Errorf("both --maas-url and --api-key are required for configure")
			}
			if _, err := maas.ParseAPIKey(opts.apiKey); err != nil {
				return err
			}

			cfg := config.New()
			cfg.MAASURL = opts.maasURL
			cfg.APIKey = opts.apiKey

			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			opts.logger.Info("configuration saved", "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}
	return cmd
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}
