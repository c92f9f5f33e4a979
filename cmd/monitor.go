// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/negevsat/groundlink/pkg/groundlink"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive dashboard of live telemetry with a command prompt",
	Long: `Show the latest satellite status, temperature and energy samples together
with link statistics and recent events.

Type a command at the prompt and press Enter to frame and send it.
Press Ctrl+C to quit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type tickMsg time.Time
type recordMsg struct{ rec groundlink.Record }
type logLineMsg string
type linkDoneMsg struct{ err error }

// commandQueue accepts outbound commands without blocking the UI
type commandQueue interface {
	TryPut(cmd groundlink.OutboundCommand) bool
}

// TUI model
type monitorModel struct {
	connInfo      string
	stats         *groundlink.Statistics
	outbound      commandQueue
	input         textinput.Model
	static        *groundlink.StaticStatusRecord
	temperature   *groundlink.TemperatureSampleRecord
	energy        *groundlink.EnergySampleRecord
	events        []eventLogEntry
	maxLogEntries int
	width         int
	height        int
	quitting      bool
	linkErr       error
}

func newMonitorModel(connInfo string, stats *groundlink.Statistics, outbound commandQueue) monitorModel {
	ti := textinput.New()
	ti.Placeholder = "<upstreamPacket>...</upstreamPacket>"
	ti.Prompt = "cmd> "
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()

	return monitorModel{
		connInfo:      connInfo,
		stats:         stats,
		outbound:      outbound,
		input:         ti,
		events:        make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(monitorTick(), textinput.Blink)
}

func monitorTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyEsc:
			m.input.Reset()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-10, 10)

	case tickMsg:
		m.stats.CalculateRates()
		return m, monitorTick()

	case recordMsg:
		m.applyRecord(msg.rec)
		return m, nil

	case logLineMsg:
		line := strings.TrimSpace(string(msg))
		m.addLogEntry(line, strings.Contains(line, "ERR") || strings.Contains(line, "WRN"))
		return m, nil

	case linkDoneMsg:
		m.linkErr = msg.err
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("link stopped: %v", msg.err), true)
		} else {
			m.addLogEntry("link stopped", false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *monitorModel) submit() {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return
	}
	if m.outbound.TryPut(groundlink.OutboundCommand(text)) {
		m.addLogEntry("queued: "+text, false)
		m.input.Reset()
	} else {
		m.addLogEntry("outbound queue full, command not sent", true)
	}
}

func (m *monitorModel) applyRecord(rec groundlink.Record) {
	switch r := rec.(type) {
	case groundlink.StaticStatusRecord:
		m.static = &r
		if r.SatelliteState == groundlink.StateSafeMode {
			m.addLogEntry("satellite entered SAFE_MODE", true)
		}
	case groundlink.TemperatureSampleRecord:
		m.temperature = &r
	case groundlink.EnergySampleRecord:
		m.energy = &r
	}
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.events = append(m.events, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.events) > m.maxLogEntries {
		m.events = m.events[len(m.events)-m.maxLogEntries:]
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var statusStyleFor = map[groundlink.Status]lipgloss.Style{
	groundlink.StatusOn:             valueStyle,
	groundlink.StatusStandby:        warningStyle,
	groundlink.StatusMalfunction:    errorStyle,
	groundlink.StatusNonOperational: errorStyle,
	groundlink.StatusUnknown:        headerStyle,
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("GROUNDLINK - MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Ctrl+C to quit", m.connInfo)))
	s.WriteString("\n\n")

	snap := m.stats.Snapshot()
	var stats strings.Builder
	fmt.Fprintf(&stats, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", snap.Frames)),
		labelStyle.Render("Records:"), valueStyle.Render(fmt.Sprintf("%d", snap.Records())),
		labelStyle.Render("Errors:"), m.countStyle(snap.Errors()).Render(fmt.Sprintf("%d", snap.Errors())))
	fmt.Fprintf(&stats, "%s %s   %s %s   %s %s",
		labelStyle.Render("Echoes:"), valueStyle.Render(fmt.Sprintf("%d", snap.EchoPackets)),
		labelStyle.Render("Sent:"), valueStyle.Render(fmt.Sprintf("%d", snap.CommandsSent)),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", snap.FrameRate)))
	s.WriteString(boxStyle.Render(stats.String()))
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Satellite:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(m.staticView()))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(m.samplesView()))
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	logHeight := max(m.height-28, 3)
	var events strings.Builder
	if len(m.events) == 0 {
		events.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, e := range m.events[max(len(m.events)-logHeight, 0):] {
		style, mark := warningStyle, "ℹ "
		if e.isError {
			style, mark = errorStyle, "✗ "
		}
		fmt.Fprintf(&events, "%s %s\n", headerStyle.Render(e.timestamp.Format("15:04:05.000")), style.Render(mark+e.message))
	}
	s.WriteString(boxStyle.Width(max(m.width-4, 20)).Render(events.String()))
	s.WriteString("\n")
	s.WriteString(m.input.View())

	return s.String()
}

func (m monitorModel) countStyle(n uint64) lipgloss.Style {
	if n > 0 {
		return errorStyle
	}
	return valueStyle
}

func (m monitorModel) staticView() string {
	if m.static == nil {
		return headerStyle.Render("waiting for static status...")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("State:"), valueStyle.Render(m.static.SatelliteState.String()))
	for _, mod := range groundlink.Modules() {
		ms := m.static.Module(mod)
		at := "-"
		if ms.Timestamp != nil {
			at = ms.Timestamp.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(&b, "%-16s %s %s\n", mod.String()+":", statusStyleFor[ms.Status].Render(fmt.Sprintf("%-16s", ms.Status)), headerStyle.Render(at))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m monitorModel) samplesView() string {
	var b strings.Builder
	if t := m.temperature; t != nil {
		fmt.Fprintf(&b, "%s %s  %s\n", labelStyle.Render("Temperature:"),
			valueStyle.Render(fmt.Sprintf("%.2f / %.2f / %.2f °C", t.Sensor1, t.Sensor2, t.Sensor3)),
			headerStyle.Render(t.Timestamp.Format("15:04:05")))
	} else {
		b.WriteString(headerStyle.Render("waiting for temperature samples...") + "\n")
	}
	if e := m.energy; e != nil {
		for i, batt := range []groundlink.BatteryReading{e.Battery1, e.Battery2, e.Battery3} {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("Battery %d:", i+1)),
				valueStyle.Render(fmt.Sprintf("%.3f V  %.3f A", batt.Voltage, batt.Current)))
		}
	} else {
		b.WriteString(headerStyle.Render("waiting for energy samples..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

// programLogWriter turns log lines into UI events
type programLogWriter struct {
	p *tea.Program
}

func (w programLogWriter) Write(p []byte) (int, error) {
	w.p.Send(logLineMsg(string(p)))
	return len(p), nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	conn, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}

	var p *tea.Program
	stats := groundlink.NewStatistics()
	gw := groundlink.RecordFunc(func(_ context.Context, rec groundlink.Record) error {
		p.Send(recordMsg{rec: rec})
		return nil
	})

	lc := linkConfig()
	lc.Logger = zerolog.Nop()
	lc.Observer = stats
	link := groundlink.NewLink(lc, gw, conn)

	m := newMonitorModel(connInfo, stats, link.Outbound)
	p = tea.NewProgram(m, tea.WithAltScreen())

	// The alternate screen owns the terminal, so warnings become events
	uiLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:          programLogWriter{p},
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}).Level(zerolog.WarnLevel)
	link.Parser.SetLogger(uiLogger)
	link.Writer.SetLogger(uiLogger)

	linkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	linkDone := make(chan struct{})
	go func() {
		defer close(linkDone)
		err := link.Run(linkCtx, conn)
		p.Send(linkDoneMsg{err: err})
	}()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	<-linkDone
	if runErr != nil {
		return fmt.Errorf("monitor: %w", runErr)
	}
	return nil
}
