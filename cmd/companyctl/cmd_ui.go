package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gartstein/companydir/internal/dashboard"
	"github.com/spf13/cobra"
)

var searchDelay = dashboard.DefaultSearchDelay

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive dashboard",
	Long: `Opens a terminal dashboard listing all companies.

Keys:
  /        search (re-fetches after a short pause in typing)
  n        new company
  e/enter  edit the selected company
  d        delete the selected company
  esc      cancel editing
  q        quit`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().DurationVar(&searchDelay, "search-delay", dashboard.DefaultSearchDelay, "Quiet period before a search is sent")
}

func runUI(_ *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	model := dashboard.NewModel(c, logger,
		dashboard.WithSearchDelay(searchDelay),
		dashboard.WithRequestTimeout(timeout),
	)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
