package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"redmine-upload/pkg/config"
	"redmine-upload/pkg/logger"
	"redmine-upload/pkg/redmine"
)

// rootOptions carries state shared by every subcommand: the raw flag values
// and, once PersistentPreRunE has run, the merged configuration.
type rootOptions struct {
	configPath string
	host       string
	apiKey     string
	username   string
	password   string
	timeout    time.Duration
	logLevel   string
	logFormat  string

	cfg        *config.Config
	configFrom string
	log        *logger.Logger
}

// Execute runs the command tree against os.Args.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "redmine-upload",
		Short: "Upload files to a Redmine project",
		Long: `Upload build artifacts to a Redmine server through its REST API.

A file is first streamed to POST /uploads.json, which returns an upload token.
The token is then bound to a project's Files section with
POST /projects/<project>/files.json.

Settings are read from built-in defaults, then a YAML config file, then
environment variables (REDMINE_HOST, REDMINE_API_KEY, ...), then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default: search "+config.ConfigPathEnv+", ./redmine-upload.yaml, ...)")
	pf.StringVar(&opts.host, "host", "", "Redmine base URL, e.g. https://redmine.example.com (REDMINE_HOST)")
	pf.StringVar(&opts.apiKey, "api-key", "", "Redmine API key; takes precedence over username/password (REDMINE_API_KEY)")
	pf.StringVar(&opts.username, "username", "", "Redmine username for basic auth (REDMINE_USERNAME)")
	pf.StringVar(&opts.password, "password", "", "Redmine password for basic auth (REDMINE_PASSWORD)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout, 0 disables it (REDMINE_HTTP_TIMEOUT)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (LOG_LEVEL)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (LOG_FORMAT)")

	rootCmd.AddCommand(newUploadCmd(opts))
	rootCmd.AddCommand(newAttachCmd(opts))
	rootCmd.AddCommand(newPublishCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// load merges config file, environment and flags, then sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, from, err := config.LoadConfigFrom(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overrideString(flags.Changed("host"), &cfg.Redmine.Host, o.host)
	overrideString(flags.Changed("api-key"), &cfg.Redmine.APIKey, o.apiKey)
	overrideString(flags.Changed("username"), &cfg.Redmine.Username, o.username)
	overrideString(flags.Changed("password"), &cfg.Redmine.Password, o.password)
	overrideString(flags.Changed("log-level"), &cfg.Logging.Level, o.logLevel)
	overrideString(flags.Changed("log-format"), &cfg.Logging.Format, o.logFormat)
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = o.timeout
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	o.log = logger.Configure(logger.Config{
		Level:  level,
		Output: cmd.ErrOrStderr(),
		Format: strings.ToLower(cfg.Logging.Format),
	})
	o.log.Debug("configuration loaded", "source", from)

	o.cfg = cfg
	o.configFrom = from
	return nil
}

// newClient returns a Redmine client for the merged configuration.
func (o *rootOptions) newClient() (*redmine.Client, error) {
	if err := o.cfg.ValidateConnection(); err != nil {
		return nil, err
	}
	return redmine.NewClient(o.cfg.Connection(),
		redmine.WithTimeout(o.cfg.HTTP.Timeout),
		redmine.WithLogger(o.log),
	)
}

func overrideString(changed bool, dst *string, val string) {
	if changed {
		*dst = val
	}
}
