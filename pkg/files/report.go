package files

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/manzanit0/tourplanner/pkg/routing"
	"github.com/manzanit0/tourplanner/pkg/tours"
)

func newMarkdownTable(b *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(b)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	return table
}

// TourReport renders a single tour and its logs as markdown.
func (s *Service) TourReport(ctx context.Context, id int64) (string, error) {
	t, err := s.tours.Get(ctx, id)
	if err != nil {
		return "", err
	}

	logs, err := s.logs.List(ctx, id)
	if err != nil {
		return "", fmt.Errorf("list logs of tour %d: %w", id, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Tour Report: %s\n\n", t.Name))
	if t.Description != "" {
		sb.WriteString(t.Description + "\n\n")
	}

	info := bytes.NewBuffer([]byte{})
	table := newMarkdownTable(info, []string{"From", "To", "Transport", "Distance", "Est. Time"})
	table.Append([]string{
		t.StartLocation,
		t.EndLocation,
		t.TransportType,
		fmt.Sprintf("%.2f km", t.Distance),
		t.EstimatedTime,
	})
	table.Render()
	sb.WriteString(info.String())

	sb.WriteString(fmt.Sprintf("\nPopularity: %d  \n", t.Popularity))
	sb.WriteString(fmt.Sprintf("Child-friendliness: %s\n", formatChildFriendliness(t.ChildFriendliness)))

	sb.WriteString("\n## Logs\n\n")
	if len(logs) == 0 {
		sb.WriteString("No logs yet.\n")
		return sb.String(), nil
	}

	lb := bytes.NewBuffer([]byte{})
	table = newMarkdownTable(lb, []string{"Date", "Diff", "Km", "Time", "Rating", "Comment"})
	for _, l := range logs {
		table.Append([]string{
			l.LogTime.Format("2006-01-02"),
			strconv.Itoa(l.Difficulty),
			fmt.Sprintf("%.2f", l.TotalDistance),
			l.TotalTime,
			strconv.Itoa(l.Rating),
			l.Comment,
		})
	}
	table.Render()
	sb.WriteString(lb.String())

	return sb.String(), nil
}

// SummaryReport renders one row per tour with the averages of its logs.
func (s *Service) SummaryReport(ctx context.Context) (string, error) {
	all, err := s.loadAll(ctx)
	if err != nil {
		return "", err
	}

	b := bytes.NewBuffer([]byte{})
	table := newMarkdownTable(b, []string{"Tour", "Logs", "Ø Km", "Ø Time", "Ø Rating"})

	for _, tl := range all {
		var km, rating float64
		var seconds int64
		for _, l := range tl.logs {
			km += l.TotalDistance
			rating += float64(l.Rating)
			seconds += int64(tours.TotalSeconds(l.TotalTime))
		}

		n := len(tl.logs)
		if n > 0 {
			km /= float64(n)
			rating /= float64(n)
			seconds /= int64(n)
		}

		table.Append([]string{
			tl.tour.Name,
			strconv.Itoa(n),
			fmt.Sprintf("%.2f", km),
			routing.FormatDuration(seconds),
			fmt.Sprintf("%.1f", rating),
		})
	}
	table.Render()

	return "# Tour Summary Report\n\n" + b.String(), nil
}

func formatChildFriendliness(cf *float64) string {
	if cf == nil {
		return "n/a"
	}

	return fmt.Sprintf("%.1f", *cf)
}
