package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bulletin/src-server/model"
	"bulletin/src-server/route"
	"bulletin/src-server/utils"
)

// SeedFile is the YAML layout read by `bulletin seed`.
type SeedFile struct {
	Users   []SeedUser   `yaml:"users"`
	Posters []SeedPoster `yaml:"posters"`
}

type SeedUser struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	Email     string `yaml:"email"`
}

type SeedPoster struct {
	// generated when blank; reusing an id updates the poster
	ID                  string `yaml:"id"`
	UploadedBy          string `yaml:"uploadedBy"`
	route.PosterReqBody `yaml:",inline"`
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load users and posters from a YAML file",
		Long: `Load users and posters from a YAML file.

Posters go through the same checks as posters uploaded over HTTP; the
first invalid poster stops the import.

Example:
  bulletin seed ./testdata/posters.yaml`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer f.Close()

			as, err := rootOpts.OpenAppState()
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			users, posters, err := runSeed(cmd.Context(), as, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d posters.\n", users, posters)
			return nil
		},
	}
}

func runSeed(ctx context.Context, as *utils.AppState, r io.Reader) (int, int, error) {
	var seed SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return 0, 0, fmt.Errorf("seed: can't decode yaml: %w", err)
	}

	for _, u := range seed.Users {
		userModel := &model.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		if err := userModel.Upsert(ctx, as.BunDB); err != nil {
			return 0, 0, fmt.Errorf("seed: user %q: %w", u.ID, err)
		}
	}

	for i, p := range seed.Posters {
		posterModel := &model.Poster{ID: p.ID, UploadedBy: p.UploadedBy}
		if posterModel.ID == "" {
			posterModel.ID = uuid.NewString()
		}
		if err := p.Apply(as, posterModel); err != nil {
			return len(seed.Users), i, fmt.Errorf("seed: poster %d (%q): %w", i+1, p.Title, err)
		}
		if err := posterModel.Upsert(ctx, as.BunDB); err != nil {
			return len(seed.Users), i, fmt.Errorf("seed: poster %d (%q): %w", i+1, p.Title, err)
		}
	}
	return len(seed.Users), len(seed.Posters), nil
}
