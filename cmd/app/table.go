package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/starford/srtbspeeds/internal/models"
)

// renderChartTable lists one row per chart difficulty. Charts without speed
// triggers get a single row with an empty difficulty column.
func renderChartTable(charts []models.Chart) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Chart", "Difficulty", "Triggers", "First", "Last"})

	for _, c := range charts {
		if len(c.Speeds) == 0 {
			tw.AppendRow(table.Row{c.Path, "-", "", "", ""})
			continue
		}
		for i, s := range c.Speeds {
			path := c.Path
			if i > 0 {
				path = ""
			}
			tw.AppendRow(table.Row{path, s.Difficulty, triggerCount(s.TriggerCount), seconds(s.FirstTime), seconds(s.LastTime)})
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return strings.TrimRight(tw.Render(), "\n")
}

func triggerCount(n int) string {
	if n < 0 {
		return "invalid"
	}
	return fmt.Sprint(n)
}

func seconds(f float32) string {
	return fmt.Sprintf("%.2f", f)
}
