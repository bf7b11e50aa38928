package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aurtool/aurctl/pkg/aur"
)

func cmdSearch() *cobra.Command {
	p := &searchParams{}
	cmd := &cobra.Command{
		Use:           "search <term>",
		Short:         "Search the AUR",
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client := aur.NewClient()
			if cfg.AURURL != "" {
				client.BaseURL = cfg.AURURL
			}

			records, err := client.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			mode := aur.Alphabetical
			if p.byVotes || cfg.SortByVotes {
				mode = aur.ByVotes
			}
			aur.Sort(records, mode)

			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d votes)\n    %s\n",
					color.New(color.Bold).Sprint(r.Name),
					color.GreenString(r.Version),
					r.NumVotes,
					r.Description,
				)
			}
			return nil
		},
	}

	p.addFlagsTo(cmd)
	return cmd
}

type searchParams struct {
	byVotes bool
}

func (p *searchParams) addFlagsTo(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.byVotes, "votes", false, "sort results by vote count instead of name")
}
