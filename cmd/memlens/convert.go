package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"memlens/internal/snapshot"
)

var convertCmd = &cobra.Command{
	Use:   "convert <manifest.toml>...",
	Short: "Compile TOML manifests into binary snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	setupColor(cmd)

	outputs := make([]string, len(args))
	g, _ := errgroup.WithContext(cmd.Context())
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			snap, err := snapshot.LoadManifest(path)
			if err != nil {
				return err
			}
			out := strings.TrimSuffix(path, ".toml") + ".mls"
			if err := snap.WriteFile(out); err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, out := range outputs {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	}
	return nil
}
