package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"kwarg/internal/pipeline"
	"kwarg/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// enabled resolves auto against whether out is a terminal.
func (m uiMode) enabled(out *os.File) bool {
	if m == uiModeAuto {
		return isTerminal(out)
	}
	return m == uiModeOn
}

func shouldUseTUI(mode uiMode) bool { return mode.enabled(os.Stderr) }

// runWithUI runs work in the background and renders its progress events on
// stderr until work returns. A failing view does not hide work's result.
func runWithUI[T any](title string, files []string, work func(pipeline.ProgressSink) (T, error)) (T, error) {
	events := make(chan pipeline.Event, 256)
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer close(events)
		val, err := work(pipeline.ChannelSink{Ch: events})
		done <- outcome{val, err}
	}()

	_, viewErr := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stderr)).Run()
	// the view may quit before work does; drain so work never blocks
	for range events {
	}
	res := <-done
	if res.err == nil && viewErr != nil {
		res.err = fmt.Errorf("progress view: %w", viewErr)
	}
	return res.val, res.err
}
