package main

import (
	"fmt"
	"strings"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:     "catalog [kind]",
		Short:   "List the component codes in the catalog",
		Example: "setupctl catalog faction --lang de",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog()
			if err != nil {
				return err
			}
			tag, err := language.Parse(lang)
			if err != nil {
				return fmt.Errorf("invalid language %q: %w", lang, err)
			}

			kinds := catalog.Kinds
			if len(args) == 1 {
				kind, err := catalog.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []catalog.Kind{kind}
			}

			w := cmd.OutOrStdout()
			for _, kind := range kinds {
				codes := cat.Codes(kind)
				catalog.SortCodes(codes, tag)
				fmt.Fprintf(w, "%s (%d): %s\n", kind, len(codes), strings.Join(codes, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "language used to order codes")
	return cmd
}
