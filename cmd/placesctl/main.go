// Command placesctl operates a places-review store from the shell.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zatekoja/placesreview/internal/bootstrap"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	"github.com/zatekoja/placesreview/pkg/config"
)

// openRuntime is swapped by tests
var openRuntime = func(ctx context.Context) (*bootstrap.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	observability.InitLogger("placesctl", cfg.Env, cfg.LogLevel)
	return bootstrap.Open(ctx, cfg, nil)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "placesctl",
		Short: "Administer the places review store",
		Long: `placesctl works directly against the configured store.

Available commands:
  reset    - Remove every record
  seed     - Load a small demo data set
  status   - Show the opening status of a place
  distance - Great-circle distance between two coordinates`,
		SilenceUsage: true,
	}
	root.AddCommand(newResetCmd(), newSeedCmd(), newStatusCmd(), newDistanceCmd())
	return root
}

// withRuntime opens the backends for the duration of one command
func withRuntime(cmd *cobra.Command, fn func(rt *bootstrap.Runtime) error) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
