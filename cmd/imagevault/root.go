package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"imagevault/internal/client"
	"imagevault/internal/config"
	"imagevault/internal/logging"
)

// cliOptions are shared by every subcommand.
type cliOptions struct {
	cfg      *config.ClientConfig
	logLevel string
}

func (o *cliOptions) client() (*client.Client, error) {
	if o.cfg.Token == "" {
		return nil, errors.New("a token is required: pass --token or set IMAGEVAULT_TOKEN")
	}
	return client.New(o.cfg.APIURL, o.cfg.Token, time.Duration(o.cfg.TimeoutSec)*time.Second), nil
}

func (o *cliOptions) logger() *slog.Logger {
	return logging.New(os.Stderr, time.Local, logging.LevelFromString(o.logLevel))
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{cfg: config.LoadClient()}

	root := &cobra.Command{
		Use:          "imagevault",
		Short:        "Upload, list and delete images stored behind an imagevault server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfg.APIURL, "api-url", opts.cfg.APIURL, "server base URL (IMAGEVAULT_API_URL)")
	root.PersistentFlags().StringVar(&opts.cfg.Token, "token", opts.cfg.Token, "bearer token (IMAGEVAULT_TOKEN)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	root.AddCommand(
		newUploadCmd(opts),
		newListCmd(opts),
		newDownloadCmd(opts),
		newDeleteCmd(opts),
		newTokenCmd(),
	)
	return root
}
