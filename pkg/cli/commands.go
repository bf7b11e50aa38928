package cli

import (
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/aurtool/aurctl/pkg/config"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "aurctl",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "A helper for building and installing AUR packages",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := clog.New(slog.NewTextHandler(os.Stderr, nil))
			cmd.SetContext(clog.WithLogger(cmd.Context(), log))
		},
	}

	cmd.PersistentFlags().String("config", config.DefaultPath(), "path to the config file")

	cmd.AddCommand(
		cmdInstall(),
		cmdSearch(),
		cmdInfo(),
		cmdCache(),
		version.Version(),
	)

	return cmd
}

// loadConfig reads the config file named by the persistent --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}
