package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/inkpress"
	"github.com/eringen/inkpress/logger"
)

const envPrefix = "INKPRESS"

// cli carries the state shared by every subcommand once the persistent
// pre-run has resolved configuration.
type cli struct {
	cfgFile string
	envFile string
	v       *viper.Viper
	cfg     inkpress.SiteConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "inkpress",
		Short: "inkpress - a markdown content engine for blogs",
		Long: `inkpress reads posts, pages and reviews from a content directory,
serves them over HTML and a JSON API, and publishes scheduled items
when their date arrives.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initializeConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ./inkpress.yaml)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("content-dir", "", "content root holding posts/, pages/ and reviews/")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = c.v.BindPFlag("content_dir", flags.Lookup("content-dir"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		c.serveCmd(),
		c.publishCmd(),
		c.listCmd(),
		c.searchCmd(),
		c.calendarCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) initializeConfig(_ *cobra.Command) error {
	// A missing dotenv file is fine; the environment may be set directly.
	_ = godotenv.Load(c.envFile)

	setDefaults(c.v)
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigName("inkpress")
		c.v.SetConfigType("yaml")
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || c.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	logger.SetLevel(c.v.GetString("log_level"))
	c.cfg = siteConfig(c.v)
	if used := c.v.ConfigFileUsed(); used != "" {
		logger.Log.Debugf("using config file %s", used)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("content_dir", "content")
	v.SetDefault("static_dir", "public")
	v.SetDefault("database_path", "data/inkpress.db")
	v.SetDefault("admin_key", "")
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("publish_interval", "1m")
	v.SetDefault("sanitize", false)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("words_per_minute", 200)
	v.SetDefault("log_level", "info")
}

func siteConfig(v *viper.Viper) inkpress.SiteConfig {
	return inkpress.SiteConfig{
		Name:            v.GetString("name"),
		URL:             v.GetString("url"),
		Description:     v.GetString("description"),
		Author:          v.GetString("author"),
		Addr:            v.GetString("addr"),
		ContentDir:      v.GetString("content_dir"),
		StaticDir:       v.GetString("static_dir"),
		DatabasePath:    v.GetString("database_path"),
		AdminKey:        v.GetString("admin_key"),
		CacheTTL:        v.GetDuration("cache_ttl"),
		PublishInterval: v.GetDuration("publish_interval"),
		Sanitize:        v.GetBool("sanitize"),
		CORSOrigins:     v.GetStringSlice("cors_origins"),
		WordsPerMinute:  v.GetInt("words_per_minute"),
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inkpress version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkpress %s\n", version)
		},
	}
}
