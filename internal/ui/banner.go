// Package ui renders the studio banner and the interactive menu.
package ui

import "github.com/charmbracelet/lipgloss"

const banner = `
 █████╗ ██████╗  █████╗ ██████╗ ████████╗███████╗██████╗
██╔══██╗██╔══██╗██╔══██╗██╔══██╗╚══██╔══╝██╔════╝██╔══██╗
███████║██║  ██║███████║██████╔╝   ██║   █████╗  ██████╔╝
██╔══██║██║  ██║██╔══██║██╔═══╝    ██║   ██╔══╝  ██╔══██╗
██║  ██║██████╔╝██║  ██║██║        ██║   ███████╗██║  ██║
╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝        ╚═╝   ╚══════╝╚═╝  ╚═╝

███████╗████████╗██╗   ██╗██████╗ ██╗ ██████╗
██╔════╝╚══██╔══╝██║   ██║██╔══██╗██║██╔═══██╗
███████╗   ██║   ██║   ██║██║  ██║██║██║   ██║
╚════██║   ██║   ██║   ██║██║  ██║██║██║   ██║
███████║   ██║   ╚██████╔╝██████╔╝██║╚██████╔╝
╚══════╝   ╚═╝    ╚═════╝ ╚═════╝ ╚═╝ ╚═════╝
`

var (
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Banner returns the styled ASCII banner.
func Banner() string {
	return bannerStyle.Render(banner)
}

// Rule returns a styled horizontal rule of the given width.
func Rule(width int) string {
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	return ruleStyle.Render(string(line))
}
