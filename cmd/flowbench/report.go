package main

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

type queueReport struct {
	Stage    string `yaml:"stage"`
	Capacity int    `yaml:"capacity"`
	Peak     int    `yaml:"peak"`
}

type report struct {
	Scenario  string        `yaml:"scenario"`
	Execution string        `yaml:"execution"`
	Items     int           `yaml:"items"`
	Sum       int           `yaml:"sum"`
	Elapsed   string        `yaml:"elapsed"`
	Queues    []queueReport `yaml:"queues"`
}

func newReport(r launched, elapsed time.Duration) report {
	rep := report{
		Scenario:  r.scenario,
		Execution: r.exec.ID(),
		Items:     r.tally.items,
		Sum:       r.tally.sum,
		Elapsed:   elapsed.Round(time.Microsecond).String(),
	}
	for _, q := range r.exec.Queues() {
		rep.Queues = append(rep.Queues, queueReport{Stage: q.Stage, Capacity: q.Capacity, Peak: q.Peak})
	}
	return rep
}

func writeReports(w io.Writer, format string, reports []report) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, r := range reports {
			fmt.Fprintf(w, "%s %s items=%d sum=%d elapsed=%s\n", r.Scenario, r.Execution, r.Items, r.Sum, r.Elapsed)
			for _, q := range r.Queues {
				fmt.Fprintf(w, "  %-10s peak %d/%d\n", q.Stage, q.Peak, q.Capacity)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
