package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fitdesk/gymadmin/internal/dashboard"
	"github.com/fitdesk/gymadmin/internal/pkg/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gymadmin",
	Short: "Terminal dashboard for the gym administration API",
	Long: `gymadmin manages classes, staff, members, enrollments and workout videos
through the gymadmin REST API. Sign in with "gymadmin login" first.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !dashboard.Shown(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gymadmin.yaml)")
	flags.String("api-url", "http://localhost:8080/api", "base URL of the gymadmin API")
	flags.Duration("timeout", 15*time.Second, "request timeout")
	flags.Int("retries", 1, "retries for failed reads (0 disables)")
	flags.Duration("stale-time", 30*time.Second, "how long cached reads stay fresh")
	flags.String("cache", dashboard.CacheMemory, "query cache backend: memory or redis")
	flags.String("redis-addr", "localhost:6379", "redis address for --cache redis")
	flags.String("session", "", "session file (default is $HOME/.gymadmin/session.json)")
	flags.Bool("debug", false, "log requests and cache activity to stderr")

	for _, name := range []string{"api-url", "timeout", "retries", "stale-time", "cache", "redis-addr", "session", "debug"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gymadmin")
	}

	viper.SetEnvPrefix("GYMADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
}

func settings() (dashboard.Config, error) {
	level := logger.WarnLevel
	if viper.GetBool("debug") {
		level = logger.DebugLevel
	}
	log := logger.Configure(logger.Config{
		Level:     level,
		Pretty:    true,
		Output:    os.Stderr,
		Component: "gymadmin",
	})

	cfg := dashboard.Config{
		APIURL:      strings.TrimRight(viper.GetString("api-url"), "/"),
		Timeout:     viper.GetDuration("timeout"),
		Retries:     viper.GetInt("retries"),
		StaleTime:   viper.GetDuration("stale-time"),
		Cache:       strings.ToLower(viper.GetString("cache")),
		RedisAddr:   viper.GetString("redis-addr"),
		SessionPath: viper.GetString("session"),
		Logger:      log,
	}
	if cfg.APIURL == "" {
		return cfg, fmt.Errorf("--api-url is required")
	}
	if cfg.Cache != dashboard.CacheMemory && cfg.Cache != dashboard.CacheRedis {
		return cfg, fmt.Errorf("--cache must be %q or %q, got %q", dashboard.CacheMemory, dashboard.CacheRedis, cfg.Cache)
	}
	if cfg.Retries < 0 {
		return cfg, fmt.Errorf("--retries cannot be negative")
	}
	return cfg, nil
}

// run builds the dashboard for one command and closes it afterwards
func run(fn func(ctx context.Context, app *dashboard.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		app, err := dashboard.New(ctx, cfg, dashboard.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				cfg.Logger.Warn().Err(err).Msg("Failed to close cache")
			}
		}()
		return fn(ctx, app, args)
	}
}
