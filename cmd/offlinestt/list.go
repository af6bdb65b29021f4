package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/offlinestt/audiofile"
	"github.com/kbukum/offlinestt/dispatch"
	"github.com/kbukum/offlinestt/util"
)

func (c *cli) listCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recordings, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load(cmd)
			if err != nil {
				return err
			}
			if _, err := dispatch.EnsureDir("recordings", app.Cfg.RecordingsDir, false); err != nil {
				return err
			}
			entries, err := audiofile.List(app.Cfg.RecordingsDir, audiofile.Extensions, limit)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", audiofile.DefaultListLimit, "maximum number of recordings")
	return cmd
}

func printEntries(w io.Writer, entries []audiofile.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODIFIED\tSIZE\tNAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ModTime.Format(time.DateTime), util.FormatSize(e.Size), e.Name)
	}
	return tw.Flush()
}
