package main

import (
	"io"
	"strconv"
	"strings"

	"gncollector/internal/glassnode/metrics"
	"gncollector/pkg/glassnode"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var faint = color.New(color.Faint).SprintFunc()

var endpointHeaders = []string{"Endpoint", "Path", "Tier", "Assets", "Resolutions"}

func renderEndpoints(w io.Writer, endpoints []glassnode.Endpoint) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	headers := make([]string, len(endpointHeaders))
	for i, hdr := range endpointHeaders {
		headers[i] = color.YellowString(hdr)
	}
	table.SetHeader(headers)
	table.SetCenterSeparator(faint("+"))
	table.SetColumnSeparator(faint("|"))
	table.SetRowSeparator(faint("-"))

	for _, e := range endpoints {
		symbols := make([]string, 0, len(e.Assets))
		for _, asset := range e.Assets {
			symbols = append(symbols, asset.Symbol)
		}
		table.Append([]string{
			metrics.EndpointName(e.Path),
			e.Path,
			glassnode.Tier(e.Tier).String(),
			summarize(symbols, 5),
			strings.Join(e.Resolutions, ","),
		})
	}

	table.SetFooter([]string{"", "", "", "total", strconv.Itoa(len(endpoints))})
	table.Render()
}

// summarize joins at most limit items and counts the rest.
func summarize(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ",")
	}
	return strings.Join(items[:limit], ",") + ",+" + strconv.Itoa(len(items)-limit)
}
