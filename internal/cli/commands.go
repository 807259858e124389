package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dyike/StockPilot/config"
	"github.com/dyike/StockPilot/consts"
	"github.com/dyike/StockPilot/internal/agents"
	"github.com/dyike/StockPilot/internal/debug"
	"github.com/dyike/StockPilot/internal/resolver"
	"github.com/dyike/StockPilot/internal/server"
	"github.com/dyike/StockPilot/pkg/app"
)

// Version is overridden at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

var errAnalysisFailed = errors.New("analysis failed")

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stockpilot",
		Short: "StockPilot - AI-Powered Stock Analysis",
		Long: `StockPilot answers free-text questions about a stock. It resolves the ticker,
fetches a market snapshot and asks three language-model analysts (price, investment
advice and technical) in parallel, then combines their answers.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.debug, cmd.Name() == "serve")
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file path")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newModelsCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (o *rootOptions) manager() (*config.Manager, error) {
	var mgrOpts []config.ManagerOption
	if o.configPath != "" {
		mgrOpts = append(mgrOpts, config.WithConfigPath(o.configPath))
	}
	return config.NewManager(mgrOpts...)
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	mgr, err := o.manager()
	if err != nil {
		return config.Config{}, err
	}
	cfg := mgr.Get()
	if o.debug {
		cfg.Debug = true
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		modelID    string
		apiKey     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [QUERY...]",
		Short: "Analyze a stock from a free-text question",
		Long: `Run the price, investment and technical analysts for the stock named in QUERY.
Example: stockpilot analyze "Is Tesla a good buy right now?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				if !isInteractive() {
					return errors.New("query is required")
				}
				if query, err = PromptForQuery(); err != nil {
					return err
				}
			}

			if modelID == "" {
				modelID = cfg.DefaultModel
				if len(args) == 0 && isInteractive() {
					if modelID, err = PromptForModel(cfg.LLMProvider, cfg.DefaultModel); err != nil {
						return err
					}
				}
			}
			if !consts.IsModelPreset(cfg.LLMProvider, modelID) {
				return fmt.Errorf("unknown model %q, see 'stockpilot models'", modelID)
			}

			if apiKey == "" {
				apiKey = apiKeyFromEnv(cfg.LLMProvider)
			}
			if apiKey == "" && isInteractive() {
				if apiKey, err = PromptForAPIKey(cfg.LLMProvider); err != nil {
					return err
				}
			}
			if err := agents.ValidateCredential(cfg.LLMProvider, apiKey); err != nil {
				return err
			}

			engine, err := app.BuildEngine(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result := engine.Analyze(ctx, query, modelID, apiKey)
			if jsonOutput {
				data, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), RenderResult(result))
			}

			if !result.Success {
				return errAnalysisFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Model identifier (default from config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "LLM provider API key (defaults to GROQ_API_KEY or DEEPSEEK_API_KEY)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON result")

	return cmd
}

func apiKeyFromEnv(provider string) string {
	if provider == config.ProviderDeepSeek {
		return os.Getenv("DEEPSEEK_API_KEY")
	}
	return os.Getenv("GROQ_API_KEY")
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve QUERY...",
		Short: "Print the ticker symbol a query resolves to",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), resolver.Resolve(strings.Join(args, " ")))
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr      string
		einoDebug bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr, err := opts.manager()
			if err != nil {
				return err
			}
			cfg := mgr.Get()
			if cfg.Debug || opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if einoDebug || cfg.EinoDebugEnabled {
				cfg.EinoDebugEnabled = true
				if err := debug.NewEinoDebugger(&cfg).Initialize(ctx); err != nil {
					return err
				}
			}

			rt, err := app.NewRuntime(mgr)
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr == "" {
				addr = cfg.ListenAddr
			}
			srv := server.NewServer(addr, rt)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("HTTP server shutdown error")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&einoDebug, "eino-debug", false, "Start the Eino visual debug server")

	return cmd
}

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported model presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderModels(cfg.LLMProvider, cfg.DefaultModel))
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := opts.manager()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderConfig(mgr.Get(), mgr.Path()))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "StockPilot %s\n", Version)
		},
	}
}
