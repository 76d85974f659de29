package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/setup"
	"github.com/MHostile/root-automated-setup/internal/setup/random"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

type parameter struct {
	name  setup.Parameter
	value any
}

type runOptions struct {
	players          int
	landmarks        int
	expansions       []string
	hirelings        bool
	bots             bool
	fixedFirstPlayer bool
	seed             int64
	asJSON           bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Complete a setup with random choices and print the result",
		Example: "setupctl run --players 3 --expansions riverfolk,underworld --seed 42",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := root.loadCatalog()
			if err != nil {
				return err
			}
			logger, err := root.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if opts.seed == 0 {
				if opts.seed, err = random.NewSeed(); err != nil {
					return err
				}
			}
			engine := setup.NewEngine(cat, random.NewSeeded(opts.seed), logger,
				setup.WithStateOptions(setup.StateOptions{
					PlayerCount:      opts.players,
					LandmarkCount:    opts.landmarks,
					FixedFirstPlayer: opts.fixedFirstPlayer,
				}),
			)

			s, err := prepare(engine, opts, cmd.Flags().Changed("players"))
			if err != nil {
				return err
			}
			if err := engine.AutoComplete(s); err != nil {
				var blocked *setup.BlockedError
				if errors.As(err, &blocked) {
					return fmt.Errorf("%w (seed %d)", err, opts.seed)
				}
				return err
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(engine.View(s, language.English))
			}
			printResult(cmd.OutOrStdout(), s, opts.seed)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.players, "players", "p", 4, "number of players")
	f.IntVarP(&opts.landmarks, "landmarks", "l", 1, "number of landmarks to place (0-2)")
	f.StringSliceVarP(&opts.expansions, "expansions", "e", nil, "expansions to enable besides the base game")
	f.BoolVar(&opts.hirelings, "hirelings", false, "draw hirelings")
	f.BoolVar(&opts.bots, "bots", false, "include bot setup")
	f.BoolVar(&opts.fixedFirstPlayer, "fixed-first-player", false, "seat one always goes first")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (default: random)")
	f.BoolVar(&opts.asJSON, "json", false, "print the final view as JSON")
	return cmd
}

// prepare builds a state with the requested expansions and parameters. An
// unset player count is left for the engine to fit to the enabled factions.
func prepare(engine *setup.Engine, opts *runOptions, setPlayers bool) (*setup.State, error) {
	cat := engine.Catalog()
	s := engine.NewState()

	on := true
	for _, code := range opts.expansions {
		code = strings.TrimSpace(code)
		if _, ok := cat.Expansion(code); !ok {
			if suggestion, found := cat.Suggest(catalog.KindExpansion, code); found {
				return nil, fmt.Errorf("unknown expansion %q, did you mean %q?", code, suggestion)
			}
			return nil, fmt.Errorf("unknown expansion %q", code)
		}
		if err := engine.Toggle(s, catalog.KindExpansion, code, &on); err != nil {
			return nil, err
		}
	}

	params := []parameter{
		{setup.ParamUseBots, opts.bots},
		{setup.ParamUseHirelings, opts.hirelings},
		{setup.ParamLandmarkCount, opts.landmarks},
	}
	if setPlayers {
		params = append(params, parameter{setup.ParamPlayerCount, opts.players})
	}
	for _, p := range params {
		if err := engine.SetParameter(s, p.name, p.value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func printResult(w io.Writer, s *setup.State, seed int64) {
	p := s.Parameters
	fmt.Fprintf(w, "Seed:         %d\n", seed)
	fmt.Fprintf(w, "Players:      %d\n", p.PlayerCount)
	fmt.Fprintf(w, "First player: seat %d\n", p.FirstPlayer)
	fmt.Fprintf(w, "Map:          %s\n", p.Map)
	fmt.Fprintf(w, "Deck:         %s\n", p.Deck)

	var landmarks []string
	for _, l := range []string{p.Landmark1, p.Landmark2} {
		if l != "" {
			landmarks = append(landmarks, l)
		}
	}
	if len(landmarks) > 0 {
		fmt.Fprintf(w, "Landmarks:    %s\n", strings.Join(landmarks, ", "))
	}

	if len(p.Hirelings) > 0 {
		fmt.Fprintln(w, "Hirelings:")
		for _, h := range p.Hirelings {
			side := "promoted"
			if h.Limited {
				side = "demoted"
			}
			fmt.Fprintf(w, "  %s (%s)\n", h.Code, side)
		}
	}

	// faction seats count in turn order from the first player
	fmt.Fprintln(w, "Factions:")
	for _, entry := range s.Flow.FactionPool {
		if !entry.Claimed {
			continue
		}
		line := entry.Faction
		if entry.Vagabond != "" {
			line += " / " + entry.Vagabond
		}
		fmt.Fprintf(w, "  %d. %s\n", entry.Seat+1, line)
	}
}
