package probe

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-relayer/internal/config"
)

const probeTimeout = 5 * time.Second

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks the liveness endpoint of a running server",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runProbe("/-/healthy", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "print the probe response body")

	return cmd
}

func runProbe(path string, verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	client := &http.Client{Timeout: probeTimeout}

	resp, err := client.Get(fmt.Sprintf("http://localhost%s%s", cfg.Echo.ListenAddress, path)) //nolint:noctx
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Probe request failed")
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read probe response")
		os.Exit(1)
	}

	if verbose {
		fmt.Println(string(body))
	}

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
