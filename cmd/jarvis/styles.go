package main

import "github.com/charmbracelet/lipgloss"

var (
	bannerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	idStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
)
