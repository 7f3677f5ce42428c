package cli

import (
	"github.com/spf13/cobra"

	"bulletin/src-server/utils"
)

// RootOptions holds what every command shares.
type RootOptions struct {
	// opens the app state, swapped for an in-memory one in tests
	OpenAppState func() (*utils.AppState, error)
}

func openAppState() (*utils.AppState, error) {
	return utils.NewAppState(utils.NewConfig())
}

// NewRootCommand creates the bulletin command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{OpenAppState: openAppState})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulletin",
		Short: "Campus event bulletin board",
		Long: `A bulletin board of campus event posters.

Serves the filtered event feed over HTTP, prints it from the command line
and posts a daily digest of today's events to Discord.`,
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFeedCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
