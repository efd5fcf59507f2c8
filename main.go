package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scrapmd/entities"
	"scrapmd/internal/fetcher"
	"scrapmd/internal/generator"
	"scrapmd/internal/preview"
	"scrapmd/internal/session"
	"scrapmd/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Zenn struct {
		Session string `mapstructure:"session"`
	} `mapstructure:"zenn"`
	Output struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"output"`
}

var (
	cfgFile    string
	cookieFlag string
	anonymous  bool
	skipHeader bool
	styleFlag  string
	outputFlag string
	addrFlag   string
	verbose    bool
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cookieFlag, "cookie", "", "Zenn session token (overrides ZENN_SESSION and config)")
	rootCmd.PersistentFlags().BoolVar(&anonymous, "anonymous", false, "fetch without a session (public scraps only)")
	rootCmd.PersistentFlags().BoolVar(&skipHeader, "skip-header", false, "omit the author/timestamp line above each comment")
	rootCmd.PersistentFlags().StringVar(&styleFlag, "style", string(generator.StyleFlat), "rendering style: flat or quote")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	fetchCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file path (\"-\" for stdout; default derived from title and slug)")
	previewCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "preview server listen address")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(previewCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional unless the operator named one.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			slog.Error("error reading config file", "err", err)
			os.Exit(1)
		}
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

var rootCmd = &cobra.Command{
	Use:           "scrapmd",
	Short:         "Reconstruct a Zenn scrap thread as a Markdown document",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url-or-slug>",
	Short: "Fetch a scrap and write it as a Markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		scrap, slug, markdown, err := run(cmd, input)
		if err != nil {
			return err
		}

		if outputFlag == "-" {
			fmt.Print(markdown)
			return nil
		}

		var config Config
		if err := viper.Unmarshal(&config); err != nil {
			return fmt.Errorf("unable to decode config: %w", err)
		}
		path := outputFlag
		if path == "" {
			path = filepath.Join(config.Output.Dir, generator.Filename(scrap.Title, slug))
		}
		if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		slog.Info("wrote scrap", "path", path)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <url-or-slug>",
	Short: "Fetch a scrap and preview it as HTML in a local server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scrap, _, markdown, err := run(cmd, args[0])
		if err != nil {
			return err
		}
		return preview.Serve(addrFlag, scrap.Title, markdown)
	},
}

// run executes the pipeline: slug extraction, credential resolution, fetch,
// render. Nothing is written anywhere until it returns successfully.
func run(cmd *cobra.Command, input string) (scrap *entities.Scrap, slug, markdown string, err error) {
	ctx := cmd.Context()

	slug, err = utils.ExtractSlug(input)
	if err != nil {
		return nil, "", "", err
	}

	style := generator.Style(styleFlag)
	if style != generator.StyleFlat && style != generator.StyleQuote {
		return nil, "", "", fmt.Errorf("unknown style %q (want flat or quote)", styleFlag)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, "", "", fmt.Errorf("unable to decode config: %w", err)
	}

	// Environment token wins over the config-file one.
	envToken := os.Getenv("ZENN_SESSION")
	if envToken == "" {
		envToken = config.Zenn.Session
	}

	resolver := session.Resolver{
		Explicit:  cookieFlag,
		Env:       envToken,
		Anonymous: anonymous,
	}
	cookie, ok, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, "", "", err
	}
	if !ok {
		slog.Debug("fetching anonymously")
	}

	client := fetcher.NewClient(fetcher.BaseURL)
	fetched, err := client.Fetch(ctx, slug, cookie)
	if err != nil {
		return nil, "", "", err
	}

	gen := generator.NewGenerator(generator.Options{
		Style:      style,
		SkipHeader: skipHeader,
	})
	return fetched, slug, gen.Render(fetched, input), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
