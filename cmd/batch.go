package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ddaumiller/psa-update/internal/download"
	"github.com/ddaumiller/psa-update/internal/output"
	"github.com/ddaumiller/psa-update/internal/scheduler"
	"github.com/ddaumiller/psa-update/internal/utils"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download multiple URLs listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := utils.ReadDownloadList(args[0])
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			var requests []download.Request
			for _, entry := range entries {
				resume := true
				if entry.Resume != nil {
					resume = *entry.Resume
				}
				requests = append(requests, download.Request{URL: entry.URL, Resume: resume})
			}
			if _, err := scheduler.Run(context.Background(), requests, workers, buildClientConfig(), output.NewManager()); err != nil {
				output.PrintError("Encountered failed download(s)")
				os.Exit(1)
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(newBatchCmd())
}
