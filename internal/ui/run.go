package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"minic/internal/buildpipeline"
)

// RunProgress renders build progress to out until events is closed.
func RunProgress(out io.Writer, title string, files []string, events <-chan buildpipeline.Event) error {
	p := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out))
	_, err := p.Run()
	return err
}
