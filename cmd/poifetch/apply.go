package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/poi-address-fetch/internal/adapter/kafka"
	"github.com/couchcryptid/poi-address-fetch/internal/aggregator"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/merge"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

var errNoCandidates = errors.New("no candidates found")

type targetFlags struct {
	file        string
	id          string
	name        string
	city        string
	street      string
	houseNumber string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "target-file", "", "read the target place from a JSON file")
	cmd.Flags().StringVar(&f.id, "id", "", "target place id")
	cmd.Flags().StringVar(&f.name, "name", "", "current place name")
	cmd.Flags().StringVar(&f.city, "city", "", "current city")
	cmd.Flags().StringVar(&f.street, "street", "", "current street")
	cmd.Flags().StringVar(&f.houseNumber, "house-number", "", "current house number")
}

func (f *targetFlags) target(coord domain.Coordinate) (domain.Target, error) {
	var t domain.Target
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return t, fmt.Errorf("read target file: %w", err)
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return t, fmt.Errorf("parse target file: %w", err)
		}
	} else {
		t = domain.Target{
			ID:   f.id,
			Name: f.name,
			Address: domain.Address{
				City:        f.city,
				Street:      f.street,
				HouseNumber: f.houseNumber,
			},
		}
	}
	if t.ID == "" {
		return t, errors.New("target id is required (--id or target-file)")
	}
	if t.Location == (domain.Coordinate{}) {
		t.Location = coord
	}
	return t, nil
}

func newApplyCmd() *cobra.Command {
	var (
		coords coordFlags
		target targetFlags
		pick   int
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Choose a candidate for a coordinate and merge it into a place",
		Long: `Looks up candidates like "lookup", then merges the chosen one into the target
place. Empty target fields are filled silently. Conflicting fields are asked
about one at a time; without a terminal every conflict is declined.

The resulting field updates are published to the mutation topic when Kafka is
enabled and logged otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := coords.coordinate()
			if err != nil {
				return err
			}
			t, err := target.target(coord)
			if err != nil {
				return err
			}
			s, err := newSession()
			if err != nil {
				return err
			}
			return runApply(cmd.Context(), s, cmd.OutOrStdout(), coord, t, pick)
		},
	}
	coords.register(cmd)
	target.register(cmd)
	cmd.Flags().IntVar(&pick, "pick", 0, "1-based candidate number to apply without prompting")
	return cmd
}

func runApply(ctx context.Context, s *session, out io.Writer, coord domain.Coordinate, t domain.Target, pick int) error {
	confirmer := merge.NewTerminalConfirmer(os.Stdin, out)

	sections := s.aggregator.Collect(ctx, coord)
	items := aggregator.Candidates(sections)
	if len(items) == 0 {
		return errNoCandidates
	}

	if pick == 0 {
		listCandidates(out, sections)
		var err error
		pick, err = askPick(ctx, confirmer, len(items))
		if err != nil {
			return err
		}
	}
	if pick < 1 || pick > len(items) {
		return fmt.Errorf("pick %d out of range 1..%d", pick, len(items))
	}
	chosen := items[pick-1]

	var submitter merge.Submitter = merge.LogSubmitter{Logger: s.logger}
	if s.cfg.KafkaEnabled {
		w := kafka.NewWriter(s.cfg.KafkaBrokers, s.cfg.KafkaMutationTopic, s.logger)
		defer func() {
			if err := w.Close(); err != nil {
				s.logger.Error("kafka writer close error", "error", err)
			}
		}()
		submitter = w
	}

	engine := merge.NewEngine(confirmer, submitter, s.logger, s.metrics,
		merge.WithRefresher(merge.RefreshFunc(func(_ context.Context, updated domain.Target) {
			printTarget(out, updated)
		})),
	)
	report := engine.Merge(ctx, t, chosen.Candidate)

	for _, u := range report.Updates {
		fmt.Fprintf(out, "%-12s %-9s %q\n", u.Field, u.Decision, u.New)
	}
	if !report.Refreshed {
		fmt.Fprintln(out, "nothing changed")
	}
	return nil
}

// listCandidates numbers items across groups in the same order as
// aggregator.Candidates.
func listCandidates(out io.Writer, sections []aggregator.Section) {
	n := 0
	for _, s := range sections {
		if s.Group.Empty() {
			continue
		}
		fmt.Fprintln(out, s.Group.Legend())
		for _, item := range s.Group.Items {
			n++
			fmt.Fprintf(out, "  %2d. %s%s\n", n, item.Label, confidenceMark(item))
		}
	}
}

func confidenceMark(item provider.Item) string {
	if item.LowConfidence {
		return " (?)"
	}
	return ""
}

func askPick(ctx context.Context, c *merge.TerminalConfirmer, n int) (int, error) {
	if !c.Interactive() {
		return 0, errors.New("stdin is not a terminal, use --pick")
	}
	answer, ok := c.Ask(ctx, fmt.Sprintf("Apply which candidate? [1-%d]: ", n))
	if !ok || answer == "" {
		return 0, errors.New("no candidate chosen")
	}
	pick, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("parse candidate number %q: %w", answer, err)
	}
	return pick, nil
}

func printTarget(out io.Writer, t domain.Target) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(t)
}
