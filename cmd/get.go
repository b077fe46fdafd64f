package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/ddaumiller/psa-update/internal/download"
	"github.com/ddaumiller/psa-update/internal/output"
	"github.com/ddaumiller/psa-update/internal/scheduler"
)

var noResume bool

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [URL]...",
		Short: "Download one or more URLs directly, resuming partial files",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var requests []download.Request
			for _, arg := range args {
				if _, err := url.ParseRequestURI(arg); err != nil {
					output.PrintError(fmt.Sprintf("Invalid URL: %s", arg))
					os.Exit(1)
				}
				requests = append(requests, download.Request{URL: arg, Resume: !noResume})
			}
			results, err := scheduler.Run(context.Background(), requests, workers, buildClientConfig(), output.NewManager())
			if err != nil {
				output.PrintError("Encountered failed download(s)")
				os.Exit(1)
			}
			for _, result := range results {
				output.PrintSuccess(fmt.Sprintf("Downloaded %s", result.Filename))
			}
		},
	}
	cmd.Flags().BoolVar(&noResume, "no-resume", false, "Always download from scratch, overwriting partial files")
	return cmd
}

func init() {
	rootCmd.AddCommand(newGetCmd())
}
