package main

import (
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev" // set via ldflags during build

type rootOptions struct {
	catalogPath string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:                        "setupctl",
		Short:                      "Automated setup for the Root board game",
		Version:                    version,
		SilenceUsage:               true,
		SuggestionsMinimumDistance: 2,
	}
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "component catalog file (default: embedded catalog)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every setup step")

	cmd.AddCommand(
		newRunCmd(opts),
		newCatalogCmd(opts),
		newReplayCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(o.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	if !o.verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
