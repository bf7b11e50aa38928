package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aurtool/aurctl/pkg/aur"
)

func cmdInfo() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "info <package>...",
		Short:         "Show AUR package metadata",
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client := aur.NewClient()
			if cfg.AURURL != "" {
				client.BaseURL = cfg.AURURL
			}

			records, err := client.Info(cmd.Context(), args)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no packages found for: %s", strings.Join(args, ", "))
			}

			out := cmd.OutOrStdout()
			for _, r := range records {
				field := func(k, v string) {
					fmt.Fprintf(out, "%-16s: %s\n", color.New(color.Bold).Sprint(k), v)
				}
				field("Name", r.Name)
				field("Base", r.PackageBase)
				field("Version", r.Version)
				field("Description", r.Description)
				field("URL", r.URL)
				field("Votes", fmt.Sprint(r.NumVotes))
				field("Popularity", fmt.Sprintf("%.2f", r.Popularity))
				field("Maintainer", r.Maintainer)
				field("Depends", strings.Join(r.Depends, " "))
				field("Make Depends", strings.Join(r.MakeDepends, " "))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	return cmd
}
