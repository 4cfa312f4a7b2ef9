package cmd

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"moviegate/config"
	"moviegate/internal/logger"
	"moviegate/services/metadata"
)

// Version is stamped at build time with -ldflags "-X moviegate/cmd.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "moviegate",
		Short: "Wallet-gated movie discovery backed by TMDB",
		Long: `moviegate lets a user browse, search and page through popular movies from
TMDB once a wallet account has been connected.

The wallet gate is presentation-only: an address returned by the wallet
provider is taken as access. Nothing is signed or verified.

Without TMDB_API_KEY every command works against a bundled sample set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if err := logger.Setup(logger.Options{
				Level:      cfg.Log.Level,
				Verbose:    opts.verbose,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAgeDays,
			}); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newBrowseCmd(opts))

	return cmd
}

// newMetadataClient builds the TMDB client described by cfg.
func newMetadataClient(cfg *config.Config, fs afero.Fs) (*metadata.Client, error) {
	opts := []metadata.Option{
		metadata.WithBaseURL(cfg.Metadata.BaseURL),
		metadata.WithLanguage(cfg.Metadata.Language),
	}
	if cfg.Metadata.Timeout > 0 {
		opts = append(opts, metadata.WithHTTPClient(&http.Client{Timeout: cfg.Metadata.Timeout}))
	}
	if cfg.Metadata.SampleFile != "" {
		samples, err := metadata.LoadSampleSet(fs, cfg.Metadata.SampleFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, metadata.WithSamples(samples))
	}

	client := metadata.NewClient(cfg.Metadata.APIKey, opts...)
	if !client.IsConfigured() {
		log.Warnf("%s is not set; serving the bundled sample set", config.EnvAPIKey)
	}
	return client, nil
}
