package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/thebartekbanach/tinyrelay/pkg/uploader"
)

func renderSummary(batch *uploader.Batch) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Status", "Original", "Processed", "Saved", "Ratio", "Output"})

	for _, item := range batch.Items {
		if item.Result == nil {
			tw.AppendRow(table.Row{item.File.Name, item.Status, humanize.IBytes(uint64(item.File.Size)), "", "", "", item.Error})
			continue
		}

		result := item.Result
		tw.AppendRow(table.Row{
			item.File.Name,
			item.Status,
			humanize.IBytes(uint64(result.OriginalSize)),
			humanize.IBytes(uint64(result.ProcessedSize)),
			formatSaved(result.OriginalSize - result.ProcessedSize),
			fmt.Sprintf("%.1f%%", result.SavedRatio()),
			item.Output,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	return tw.Render()
}

// a processed file can be bigger than the original
func formatSaved(saved int64) string {
	if saved < 0 {
		return "-" + humanize.IBytes(uint64(-saved))
	}

	return humanize.IBytes(uint64(saved))
}
