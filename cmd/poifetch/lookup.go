package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/poi-address-fetch/internal/aggregator"
)

func newLookupCmd() *cobra.Command {
	var (
		coords  coordFlags
		asJSON  bool
		showAll bool
	)
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print address candidates for a coordinate, grouped by service",
		Long: `Queries every configured service at once and prints each group as soon as
its service answers. Groups with more than two candidates are collapsed unless
--all is given. Low-confidence candidates (no street or house number) are
marked with "?".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := coords.coordinate()
			if err != nil {
				return err
			}
			s, err := newSession()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s.aggregator.Collect(cmd.Context(), coord))
			}
			for section := range s.aggregator.Stream(cmd.Context(), coord) {
				printSection(out, section, showAll)
			}
			return nil
		},
	}
	coords.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print all sections as JSON once every service has answered")
	cmd.Flags().BoolVar(&showAll, "all", false, "expand collapsed groups")
	return cmd
}

// printSection renders one group. Failed and empty groups print only their
// legend so the user can see the service was asked.
func printSection(w io.Writer, s aggregator.Section, expand bool) {
	g := s.Group
	if expand && g.Collapsed {
		g.Toggle()
	}
	fmt.Fprintf(w, "%s", g.Legend())
	if s.Error != "" {
		fmt.Fprintf(w, "  (failed)")
	}
	fmt.Fprintln(w)
	if g.Collapsed {
		fmt.Fprintln(w, "  … collapsed, use --all")
		return
	}
	for _, item := range g.Items {
		mark := " "
		if item.LowConfidence {
			mark = "?"
		}
		fmt.Fprintf(w, "  %s %s  (%.0fm)\n", mark, item.Label, item.Distance)
		if item.Title != "" && item.Title != item.Label {
			fmt.Fprintf(w, "      %s\n", item.Title)
		}
	}
}
