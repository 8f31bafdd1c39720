package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
	"github.com/noah-isme/uni-timetable-api/pkg/storage"
)

var errInvariantsBroken = errors.New("timetable breaks scheduling invariants")

type simulateOptions struct {
	input           string
	csv             bool
	outDir          string
	lunchBreakStart string
	maxDays         int
	streamExclusive bool
}

func newSimulateCommand(defaults scheduler.Options, lunch string) *cobra.Command {
	opts := simulateOptions{
		lunchBreakStart: lunch,
		maxDays:         defaults.MaxDays,
		streamExclusive: defaults.StreamExclusive,
	}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the engine in memory against a JSON dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := os.Open(opts.input)
			if err != nil {
				return err
			}
			defer file.Close() //nolint:errcheck
			return runSimulate(file, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "dataset JSON file")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "print placements as CSV")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "also write one CSV per stream into this directory")
	cmd.Flags().StringVar(&opts.lunchBreakStart, "lunch", opts.lunchBreakStart, "HH:MM start of the lunch slot, empty to disable")
	cmd.Flags().IntVar(&opts.maxDays, "max-days", opts.maxDays, "upper bound on teaching days per stream")
	cmd.Flags().BoolVar(&opts.streamExclusive, "stream-exclusive", opts.streamExclusive, "forbid two lectures of one stream in the same cell")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runSimulate(in io.Reader, out io.Writer, opts simulateOptions) error {
	snapshot, err := decodeDataset(in)
	if err != nil {
		return err
	}
	engineOpts, err := scheduler.ParseOptions(opts.lunchBreakStart, opts.maxDays, opts.streamExclusive)
	if err != nil {
		return err
	}

	result, err := scheduler.NewEngine(engineOpts).Run(snapshot)
	if err != nil {
		return err
	}

	dataset := placementDataset(snapshot, result.Placements)
	if opts.csv {
		body, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return err
		}
		if _, err := out.Write(body); err != nil {
			return err
		}
	} else {
		printTable(out, dataset)
		fmt.Fprintf(out, "\n%d placements across %d streams\n", len(result.Placements), len(result.StreamCounts))
	}

	if opts.outDir != "" {
		if err := writeStreamFiles(opts.outDir, snapshot, result.Placements); err != nil {
			return err
		}
	}

	violations := scheduler.CheckInvariants(snapshot, engineOpts, result.Placements)
	for _, v := range violations {
		fmt.Fprintf(out, "violation %s: %s\n", v.Rule, v.Message)
	}
	if len(violations) > 0 {
		return fmt.Errorf("%w: %d found", errInvariantsBroken, len(violations))
	}
	return nil
}

var placementHeaders = []string{"Stream", "Day", "Time", "Subject", "Professor", "Location"}

func placementDataset(snapshot scheduler.Snapshot, placements []scheduler.Placement) export.Dataset {
	streams := lo.KeyBy(snapshot.Streams, func(s scheduler.Stream) string { return s.ID })
	slots := lo.KeyBy(snapshot.TimeSlots, func(s scheduler.TimeSlot) string { return s.ID })
	professors := lo.KeyBy(snapshot.Professors, func(p scheduler.Professor) string { return p.ID })
	locations := lo.KeyBy(snapshot.Locations, func(l scheduler.Location) string { return l.ID })
	subjects := make(map[string]scheduler.Subject)
	for _, stream := range snapshot.Streams {
		for _, subject := range stream.Subjects {
			subjects[subject.ID] = subject
		}
	}

	dataset := export.Dataset{Headers: placementHeaders}
	for _, p := range placements {
		dataset.Append(
			streams[p.StreamID].Name,
			p.Day.DisplayName(),
			slots[p.TimeSlotID].Label(),
			subjects[p.SubjectID].Name,
			professors[p.ProfessorID].Name,
			locations[p.LocationID].Name,
		)
	}
	return dataset
}

func printTable(out io.Writer, dataset export.Dataset) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(dataset.Headers, "\t"))
	for _, row := range dataset.Rows {
		values := lo.Map(dataset.Headers, func(h string, _ int) string { return row[h] })
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}
	_ = w.Flush()
}

func writeStreamFiles(dir string, snapshot scheduler.Snapshot, placements []scheduler.Placement) error {
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return err
	}
	exporter := export.NewCSVExporter()
	byStream := lo.GroupBy(placements, func(p scheduler.Placement) string { return p.StreamID })
	for _, stream := range snapshot.Streams {
		body, err := exporter.Render(placementDataset(snapshot, byStream[stream.ID]))
		if err != nil {
			return err
		}
		if _, err := store.Save(streamFileName(stream), body); err != nil {
			return err
		}
	}
	return nil
}

func streamFileName(stream scheduler.Stream) string {
	name := strings.ToLower(strings.TrimSpace(stream.Name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" {
		name = stream.ID
	}
	return "timetable-" + name + ".csv"
}
