package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddaumiller/psa-update/internal/download"
	"github.com/ddaumiller/psa-update/internal/extract"
	"github.com/ddaumiller/psa-update/internal/host"
	"github.com/ddaumiller/psa-update/internal/output"
	"github.com/ddaumiller/psa-update/internal/psa"
	"github.com/ddaumiller/psa-update/internal/scheduler"
	"github.com/ddaumiller/psa-update/internal/utils"
)

var (
	mapCode       string
	workers       int
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	debug         bool
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "psa-update [VIN]",
	Short:   "CLI alternative to the vendor updater for NAC/RCC firmware, with resumable downloads",
	Version: Version,
	Args:    cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
	},
	Run: func(cmd *cobra.Command, args []string) {
		vin := args[0]
		ctx := context.Background()
		clientConfig := buildClientConfig()
		catalog := psa.NewClient(utils.NewUpdateHTTPClient(clientConfig))

		response, err := catalog.RequestAvailableUpdates(ctx, vin, mapCode)
		if err != nil {
			output.PrintError(fmt.Sprintf("Failed to check for updates: %v", err))
			os.Exit(1)
		}
		if len(response.Software) == 0 {
			output.PrintInfo("No update found")
			return
		}

		var selected []download.Request
		for _, software := range response.Software {
			for _, update := range software.Updates {
				// The server sends a placeholder entry when there is no update
				if update.Empty() {
					continue
				}
				psa.Print(&software, &update)
				if confirm("Download update?") {
					selected = append(selected, download.Request{URL: update.UpdateURL, Resume: true})
				}
			}
		}
		if len(selected) == 0 {
			return
		}

		results, err := scheduler.Run(ctx, selected, workers, clientConfig, output.NewManager())
		if err != nil {
			output.PrintError(fmt.Sprintf("Failed to download update: %v", err))
			os.Exit(1)
		}

		if !confirm("To proceed to extraction of update(s), please insert an empty USB disk formatted as FAT32. Continue?") {
			return
		}
		if disks, err := host.ListDisks(); err == nil {
			host.PrintDisks(disks)
		}
		destination := prompt("Location where to extract the update files (IMPORTANT: Should be the root of an EMPTY USB device formatted as FAT32): ")
		if destination == "" {
			output.PrintInfo("No location, skipping extraction")
			return
		}
		info, err := os.Stat(destination)
		if err != nil || !info.IsDir() {
			output.PrintError(fmt.Sprintf("Destination does not exist or is not a directory: %s", destination))
			os.Exit(1)
		}
		for _, result := range results {
			if err := extract.Extract(result.Filename, destination); err != nil {
				output.PrintError(fmt.Sprintf("Failed to extract update: %v", err))
				os.Exit(1)
			}
		}
		output.PrintSuccess("Extraction complete")
	},
}

func buildClientConfig() utils.HTTPClientConfig {
	return utils.HTTPClientConfig{
		Timeout:       timeout,
		KATimeout:     kaTimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     userAgent,
		Headers:       utils.ParseHeaderArgs(headers),
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent downloads (0 = number of CPUs)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Whole-request timeout, disabled by default (eg. 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 60*time.Second, "Keep-alive timeout for client (eg. 10s, 1m)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers; can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVar(&mapCode, "map", "", "Map to check for update (one of: afr, alg, asia, eur, isr, latam, latam-chile, mea, oce, russia, taiwan)")
}
