package cli

import (
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/aurtool/aurctl/pkg/aur"
	"github.com/aurtool/aurctl/pkg/build"
	"github.com/aurtool/aurctl/pkg/cache"
	"github.com/aurtool/aurctl/pkg/git"
	"github.com/aurtool/aurctl/pkg/makepkg"
	"github.com/aurtool/aurctl/pkg/packages"
	"github.com/aurtool/aurctl/pkg/pacman"
	"github.com/aurtool/aurctl/pkg/prompt"
	"github.com/aurtool/aurctl/pkg/repository"
)

func cmdInstall() *cobra.Command {
	p := &installParams{}
	cmd := &cobra.Command{
		Use:           "install <package>...",
		Short:         "Resolve, build, and install packages",
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := clog.FromContext(ctx)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("builder") {
				cfg.Builder = p.builder
			}
			if cmd.Flags().Changed("hotedit") {
				cfg.Hotedit = p.hotedit
			}
			if cmd.Flags().Changed("clean") {
				cfg.Clean = p.clean
			}

			pac := pacman.New()
			client := aur.NewClient()
			if cfg.AURURL != "" {
				client.BaseURL = cfg.AURURL
			}

			// the sync databases win; only what they miss goes to the archive
			repos := repository.Compose(
				&pacman.SyncRepository{Pacman: pac},
				&aur.Resolver{Client: client, Explicit: true},
			)

			res, err := repos.Lookup(ctx, args)
			if err != nil {
				return err
			}
			if len(res.NotFound) > 0 {
				return fmt.Errorf("unknown packages: %s", strings.Join(res.NotFound, ", "))
			}

			repoNames, builds := packages.Partition(res.Found)
			log.Infof("resolved %d repo packages, %d to build", len(repoNames), len(builds))

			if idx, err := cache.Read(cfg.CacheDir); err == nil {
				names := lo.Map(builds, func(b *packages.Buildable, _ int) string { return b.Name })
				if cached := idx.Lookup(names); len(cached) > 0 {
					log.Infof("cached artifacts already exist for: %s", strings.Join(cached, ", "))
				}
			}

			ask := prompt.New()

			var results []build.Result
			if len(builds) > 0 {
				ident, err := git.LookupIdentity(cfg.Builder)
				if err != nil {
					return err
				}

				opts := &build.Options{
					CacheDir:    cfg.CacheDir,
					SourceStore: cfg.SourceStore,
					VCSStore:    cfg.VCSStore,
					ScratchDir:  cfg.ScratchDir,
					Builder:     ident,
					CloneURL:    client.CloneURL,
					SCM:         build.GitSourceControl{},
					Runner:      makepkg.New(),
					Prompt:      ask,
					Hotedit:     cfg.Hotedit,
					Editor:      cfg.Editor,
					SourceOnly:  p.sourceOnly,
					Clean:       cfg.Clean,
				}

				results, err = build.All(ctx, opts, builds)
				if err != nil {
					return err
				}
			}

			var artifacts []string
			for _, r := range results {
				if !r.AllSourced {
					artifacts = append(artifacts, r.Artifacts...)
				}
			}

			if len(repoNames) == 0 && len(artifacts) == 0 {
				// source-only runs end here; the tarballs are already stored
				return nil
			}

			// never touch the package database while something else holds it
			if err := pacman.WaitForLock(cfg.LockFile, ask); err != nil {
				return err
			}

			if len(repoNames) > 0 {
				if err := pac.InstallFromRepos(ctx, nil, repoNames); err != nil {
					return err
				}
			}
			if len(artifacts) > 0 {
				if err := pac.InstallFromTarballs(ctx, nil, artifacts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	p.addFlagsTo(cmd)
	return cmd
}

type installParams struct {
	builder    string
	hotedit    bool
	clean      bool
	sourceOnly bool
}

func (p *installParams) addFlagsTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.builder, "builder", "", "unprivileged user to fetch and build as")
	cmd.Flags().BoolVar(&p.hotedit, "hotedit", false, "offer to edit build files before building")
	cmd.Flags().BoolVar(&p.clean, "clean", false, "remove ephemeral build directories afterwards")
	cmd.Flags().BoolVar(&p.sourceOnly, "source-only", false, "produce source tarballs instead of installing")
}
