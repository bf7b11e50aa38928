package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aurtool/aurctl/pkg/cache"
)

func cmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cache <substring>",
		Short:         "Search the local package cache",
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			idx, err := cache.Read(cfg.CacheDir)
			if err != nil {
				return fmt.Errorf("failed to read package cache %s: %w", cfg.CacheDir, err)
			}

			for _, path := range idx.Search(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	return cmd
}
