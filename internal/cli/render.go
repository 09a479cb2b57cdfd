package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/terraincognita07/kpitracker/internal/services"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Align(lipgloss.Center)

	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)

	statusStyles = map[string]lipgloss.Style{
		services.StatusOnTrack: lipgloss.NewStyle().Foreground(colorGreen),
		services.StatusWarning: lipgloss.NewStyle().Foreground(colorOrange),
		services.StatusDanger:  lipgloss.NewStyle().Foreground(colorRed),
	}
)

func renderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(52).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func renderStatus(status string) string {
	label := strings.ReplaceAll(status, "_", " ")
	style, ok := statusStyles[status]
	if !ok {
		return label
	}
	return style.Render(label)
}

func renderMetric(label string, stat services.MetricStat, format func(float64) string) string {
	return fmt.Sprintf("  %-14s %s / %s  %5.1f%%  %s",
		labelStyle.Render(label),
		format(stat.Total),
		format(stat.Goal),
		stat.ProgressPercent,
		renderStatus(stat.Status),
	)
}

func formatUSD(value float64) string {
	return "$" + humanize.FormatFloat("#,###.##", value)
}

func formatLocal(value float64) string {
	return humanize.FormatFloat("#,###.##", value)
}

func formatCount(value float64) string {
	return humanize.Comma(int64(value))
}

func formatMinutes(value float64) string {
	return fmt.Sprintf("%.1f min", value)
}
