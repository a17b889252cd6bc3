// Package main is the terminal dashboard for a running qdash server.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/aristath/qdash/internal/tui"
	"github.com/aristath/qdash/pkg/logger"
)

func main() {
	apiURL := pflag.StringP("api-url", "u", "http://localhost:8080", "qdash API URL")
	refresh := pflag.Duration("refresh", time.Second, "poll interval")
	logFile := pflag.String("log-file", "", "write logs to this file (default: discarded)")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	pflag.Parse()

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := logger.NewWithWriter(logger.Config{Level: *logLevel}, out)
	log.Info().Str("api_url", *apiURL).Dur("refresh", *refresh).Msg("Starting terminal dashboard")

	m := tui.NewModel(tui.NewClient(*apiURL), *refresh)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("Terminal dashboard failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
