package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"socialstorm/internal/matcher"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderResolutions(resolutions []matcher.Resolution) string {
	rows := make([][]string, 0, len(resolutions))
	for i, res := range resolutions {
		rows = append(rows, []string{
			strconv.Itoa(i),
			res.Subject,
			string(res.Provider),
			resolutionKind(res),
			fmt.Sprintf("%.0f", res.Score),
			res.Locator,
		})
	}
	return renderTable(
		[]string{"Scene", "Subject", "Provider", "Kind", "Score", "Locator"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func resolutionKind(res matcher.Resolution) string {
	switch {
	case res.CaptionCard:
		return "caption"
	case res.Synthesized:
		return "synth"
	case res.IsVideo:
		return "video"
	case res.Locator != "":
		return "image"
	default:
		return "none"
	}
}
