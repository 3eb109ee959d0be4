package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"imagevault/internal/auth"
	"imagevault/internal/policy"
	"imagevault/internal/thumbnail"
	"imagevault/internal/upload"
)

func newUploadCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload images with their thumbnails and register them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			// Keys are derived from the caller's id; the server re-checks it against the signed token.
			userID, err := auth.SubjectUnverified(opts.cfg.Token)
			if err != nil {
				return err
			}

			files := make([]upload.File, 0, len(args))
			for _, p := range args {
				f, err := upload.FromPath(p)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			log := opts.logger()
			pol := policy.New(opts.cfg.MaxSizeBytes, policy.DefaultAllowedTypes...)
			coord := upload.NewCoordinator(c, upload.NewHTTPTransfer(nil), c, thumbnail.New(opts.cfg.ThumbnailMaxWidth), upload.Options{
				Concurrency: opts.cfg.Concurrency,
				Policy:      &pol,
				OnUpdate: func(st upload.TaskState) {
					log.Debug("upload_progress", "file", st.Name, "state", string(st.State), "progress", st.Progress)
				},
			})

			states := coord.Start(cmd.Context(), userID, files).Wait()
			return printUploadResults(cmd, states)
		},
	}
	cmd.Flags().IntVar(&opts.cfg.Concurrency, "concurrency", opts.cfg.Concurrency, "simultaneous uploads, 0 for unbounded (UPLOAD_CONCURRENCY)")
	cmd.Flags().IntVar(&opts.cfg.ThumbnailMaxWidth, "thumbnail-width", opts.cfg.ThumbnailMaxWidth, "thumbnail width in pixels (THUMBNAIL_MAX_WIDTH)")
	return cmd
}

func printUploadResults(cmd *cobra.Command, states []upload.TaskState) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tSTATE\tDETAIL")
	failed := 0
	for _, st := range states {
		detail := ""
		if st.Err != nil {
			failed++
			detail = st.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", st.Name, st.Size, st.State, detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(states))
	}
	return nil
}
