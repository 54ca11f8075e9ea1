package cmd

import (
	"context"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Macros lists the macros available to scripts.
type Macros struct {
	Group string `help:"Only list macros in this group." short:"g"`

	Match string `arg:"" help:"Only list macros whose name contains this text." name:"match" optional:""`
}

// Run executes the macros command.
func (m *Macros) Run(ctx context.Context) error {
	var rows [][]string

	for _, spec := range interpreterFrom(ctx).Registry().All() {
		if m.Group != "" && spec.Group != m.Group {
			continue
		}

		if !strings.Contains(spec.Name, m.Match) {
			continue
		}

		rows = append(rows, []string{spec.Name, spec.Group, spec.Signature(), spec.Description})
	}

	tw := tablewriter.NewWriter(streamsFrom(ctx).Out)
	tw.SetHeader([]string{"name", "group", "signature", "description"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	tw.SetColumnSeparator("")
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.AppendBulk(rows)
	tw.Render()

	return nil
}
