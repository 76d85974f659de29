package main

import (
	"fmt"
	"strings"

	"github.com/MHostile/root-automated-setup/internal/setup"
	"github.com/spf13/cobra"
)

func newReplayCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay FILE",
		Short: "Print the steps recorded in a setup replay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup.LoadReplay(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Session %s, %d states\n", r.SessionID, len(r.States))
			for i, snap := range r.States {
				fmt.Fprintf(w, "%3d  %-20s%s\n", i, snap.Flow.CurrentStep, describe(snap))
			}
			return nil
		},
	}
}

// describe summarizes what a snapshot has settled so far
func describe(snap setup.Snapshot) string {
	p := snap.Parameters
	var parts []string
	if p.ErrorMessage != setup.ErrorNone {
		parts = append(parts, "error="+string(p.ErrorMessage))
	}
	if p.Map != "" {
		parts = append(parts, "map="+p.Map)
	}
	if p.Deck != "" {
		parts = append(parts, "deck="+p.Deck)
	}
	if p.Landmark1 != "" {
		parts = append(parts, "landmarks="+strings.TrimSuffix(p.Landmark1+","+p.Landmark2, ","))
	}
	if n := len(p.Hirelings); n > 0 {
		parts = append(parts, fmt.Sprintf("hirelings=%d", n))
	}
	claimed := 0
	for _, entry := range snap.Flow.FactionPool {
		if entry.Claimed {
			claimed++
		}
	}
	if claimed > 0 {
		parts = append(parts, fmt.Sprintf("seated=%d", claimed))
	}
	return strings.Join(parts, " ")
}
