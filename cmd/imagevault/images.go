package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"imagevault/internal/model"
)

func newListCmd(opts *cliOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			res, err := c.ListImages(cmd.Context(), page)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFILENAME\tSIZE\tTYPE\tCREATED")
			for _, img := range res.Images {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", img.ID, img.Filename, img.Size, img.MimeType, img.CreatedAt.Format(time.RFC3339))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d\n", res.CurrentPage, res.TotalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newDownloadCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "url KEY",
		Short: "Print a presigned download URL for an object key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			u, err := c.DownloadURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func newDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete images by id, metadata first and then both objects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			records := make([]model.ImageRecord, len(args))
			for i, id := range args {
				records[i] = model.ImageRecord{ID: id}
			}

			res, err := c.DeleteImages(cmd.Context(), records)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Message)
			for _, k := range res.UnconfirmedObjects {
				fmt.Fprintf(out, "unconfirmed: %s\n", k)
			}
			return nil
		},
	}
}
