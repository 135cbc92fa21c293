package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

const minDescriptionWidth = 10

type styles struct {
	header  lipgloss.Style
	app     lipgloss.Style
	dim     lipgloss.Style
	cell    lipgloss.Style
	sources map[string]lipgloss.Style
}

func (c *Console) styles() styles {
	r := lipgloss.NewRenderer(c.out)
	if !c.color {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		app:    r.NewStyle().Bold(true),
		dim:    r.NewStyle().Faint(true),
		cell:   r.NewStyle().Padding(0, 1),
		sources: map[string]lipgloss.Style{
			"uv":      r.NewStyle().Foreground(lipgloss.Color("2")),
			"cask":    r.NewStyle().Foreground(lipgloss.Color("5")),
			"formula": r.NewStyle().Foreground(lipgloss.Color("3")),
			"mas":     r.NewStyle().Foreground(lipgloss.Color("4")),
		},
	}
}

// encode writes v as JSON or YAML
func (c *Console) encode(v interface{}, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(c.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(c.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
		}
		return encoder.Close()
	default:
		return errors.Newf(errors.ErrInvalidInput, "%s is not an encoding format", format)
	}
}

// RenderRecords prints the manifest grouped by section. Tables share column
// widths so every group lines up.
func (c *Console) RenderRecords(groups []types.Group, format Format) error {
	if format != FormatTable {
		if groups == nil {
			groups = []types.Group{}
		}
		return c.encode(groups, format)
	}

	appWidth, sourceWidth, total := 0, runewidth.StringWidth("Source"), 0
	for _, g := range groups {
		if len(g.Apps) == 0 {
			continue
		}
		appWidth = max(appWidth, runewidth.StringWidth(g.Name))
		for _, a := range g.Apps {
			appWidth = max(appWidth, runewidth.StringWidth(a.Key))
			sourceWidth = max(sourceWidth, runewidth.StringWidth(a.Source))
			total++
		}
	}
	if total == 0 {
		c.Println("No apps found.")
		return nil
	}

	// each column carries one cell of padding on both sides plus a separator
	descWidth := max(minDescriptionWidth, c.width-appWidth-sourceWidth-8)
	widths := []int{appWidth + 2, sourceWidth + 2, descWidth + 2}
	st := c.styles()

	for _, g := range groups {
		if len(g.Apps) == 0 {
			continue
		}

		rows := make([][]string, 0, len(g.Apps))
		for _, a := range g.Apps {
			rows = append(rows, []string{a.Key, a.Source, runewidth.Truncate(a.Description, descWidth, "…")})
		}
		apps := g.Apps

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderStyle(st.dim).
			Headers(g.Name, "Source", "Description").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				base := st.cell.Width(widths[col])
				switch {
				case row == table.HeaderRow:
					return base.Inherit(st.header)
				case col == 0:
					return base.Inherit(st.app)
				case col == 1:
					if s, ok := st.sources[apps[row].Source]; ok {
						return base.Inherit(s)
					}
				case col == 2:
					return base.Inherit(st.dim)
				}
				return base
			})

		fmt.Fprintln(c.out, t.Render())
		fmt.Fprintln(c.out)
	}
	return nil
}

// infoFields lists the labelled values shown for an app
func infoFields(info types.AppInfo) [][2]string {
	installed := "no"
	if info.Installed {
		installed = "yes"
		if info.Version != "" {
			installed = "yes (" + info.Version + ")"
		}
	}

	fields := [][2]string{
		{"Name", info.Name},
		{"Source", info.Source},
		{"Description", info.Description},
		{"Website", info.Website},
		{"Installed", installed},
	}
	if info.LatestVersion != "" {
		latest := info.LatestVersion
		if info.Outdated {
			latest += " (update available)"
		}
		fields = append(fields, [2]string{"Latest", latest})
	}
	return fields
}

func infoMarkdown(info types.AppInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", info.Name)
	if info.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", info.Description)
	}
	b.WriteString("| | |\n|---|---|\n")
	for _, f := range infoFields(info)[1:] {
		if f[0] == "Description" || f[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "| **%s** | %s |\n", f[0], f[1])
	}
	return b.String()
}

func renderMarkdown(content string, width int) (string, error) {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

// RenderInfo prints what an installer reports about an app. Color terminals
// get rendered markdown, everything else plain "Key: value" lines.
func (c *Console) RenderInfo(info types.AppInfo, format Format) error {
	if format != FormatTable {
		return c.encode(info, format)
	}

	if c.color {
		rendered, err := renderMarkdown(infoMarkdown(info), c.width)
		if err == nil {
			fmt.Fprint(c.out, rendered)
			return nil
		}
		c.logger.Debug().Err(err).Msg("Markdown rendering failed, printing plain text")
	}

	for _, f := range infoFields(info) {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(c.out, "%-12s %s\n", f[0]+":", f[1])
	}
	return nil
}

// RenderUnmanaged lists packages missing from the manifest
func (c *Console) RenderUnmanaged(apps []types.UnmanagedApp) {
	st := c.styles()
	for _, a := range apps {
		source := a.Source
		if s, ok := st.sources[a.Source]; ok {
			source = s.Render(a.Source)
		}
		fmt.Fprintf(c.out, "  - %s [%s]\n", a.Label(), source)
	}
}
