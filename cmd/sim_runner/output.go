package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/miretskiy/mlqsim/simulator"
)

// outputGantt prints one cell per Gantt block with the block boundaries below
func outputGantt(w io.Writer, gantt []simulator.TraceEntry) {
	_, _ = fmt.Fprintln(w, "Gantt schedule")
	_, _ = fmt.Fprint(w, "|")
	for _, block := range gantt {
		label := "idle"
		if !block.IsIdle() {
			label = "P" + strconv.Itoa(*block.ProcessID)
		}
		padding := strings.Repeat(" ", max(8-len(label), 0)/2)
		_, _ = fmt.Fprint(w, padding, label, padding, "|")
	}
	_, _ = fmt.Fprintln(w)
	for i, block := range gantt {
		_, _ = fmt.Fprint(w, block.Start, "\t")
		if i == len(gantt)-1 {
			_, _ = fmt.Fprint(w, block.Start+block.Duration)
		}
	}
	_, _ = fmt.Fprintf(w, "\n\n")
}

// outputSchedule prints the per-process results with averages in the footer
func outputSchedule(w io.Writer, report *simulator.Report) {
	_, _ = fmt.Fprintln(w, "Schedule table")
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			strconv.Itoa(r.FinalPriority),
			strconv.Itoa(r.OriginalBurst),
			strconv.Itoa(r.ArrivalTime),
			strconv.Itoa(r.WaitingTime),
			strconv.Itoa(r.TurnaroundTime),
			strconv.Itoa(r.CompletedTime),
		})
	}

	var stats simulator.AggregateStats
	if report.Stats != nil {
		stats = *report.Stats
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"ID", "Priority", "Burst", "Arrival", "Wait", "Turnaround", "Exit"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "",
		fmt.Sprintf("Average\n%.2f", stats.AvgWaiting),
		fmt.Sprintf("Average\n%.2f", stats.AvgTurnaround),
		fmt.Sprintf("Throughput\n%.2f/t", stats.Throughput)})
	table.Render()
}
