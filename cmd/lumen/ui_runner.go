package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lumen/internal/pipeline"
	"lumen/internal/ui"
)

type runOutcome struct {
	results []pipeline.Result
	err     error
}

// runWithUI runs the units while a progress view consumes pipeline events.
func runWithUI(ctx context.Context, title string, units []string, p *pipeline.Pipeline, inputs []pipeline.Input) ([]pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		results, err := p.WithProgress(pipeline.ChannelSink{Ch: events}).RunAll(ctx, inputs)
		outcomeCh <- runOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
