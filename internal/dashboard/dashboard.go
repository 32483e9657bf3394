package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/metrics"
)

// RunInfo holds run parameters for the summary panel.
type RunInfo struct {
	Target     string
	Profile    string
	Protocol   string
	Method     string
	Rate       int
	Timeout    time.Duration
	ConfigFile string
}

// Dashboard renders a live terminal UI for a running test. Phase
// transitions swap the polled accumulator, so stepped profiles show
// per-phase numbers.
type Dashboard struct {
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	acc   *metrics.Accumulator
	sched *actor.Scheduler
	phase string

	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	throughputG    *widgets.Gauge
	errorList      *widgets.List
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	info           RunInfo
}

// New initializes termui and builds the widget grid. The shutdown
// function is invoked when the user presses q or Ctrl-C.
func New(info RunInfo, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		info:           info,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// PhaseStarted points the dashboard at the phase's accumulator.
func (d *Dashboard) PhaseStarted(name string, acc *metrics.Accumulator, sched *actor.Scheduler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.phase = name
	d.acc = acc
	d.sched = sched
	d.latencyHistory = d.latencyHistory[:0]
}

// PhaseEnded detaches the finished phase's accumulator.
func (d *Dashboard) PhaseEnded(name string, stats metrics.Stats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == name {
		d.acc = nil
		d.sched = nil
	}
}

func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.throughputG = widgets.NewGauge()
	d.throughputG.Title = "Calls Per Second"
	d.throughputG.Percent = 0
	d.throughputG.BarColor = ui.ColorBlue
	d.throughputG.BorderStyle.Fg = ui.ColorCyan
	d.throughputG.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.errorList = widgets.NewList()
	d.errorList.Title = "Errors"
	d.errorList.Rows = []string{"No failures"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.16,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.20,
			ui.NewCol(0.5, d.throughputG),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.34,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.30,
			ui.NewCol(1.0, d.errorList),
		),
	)
}

// Start begins the update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give the terminal time to restore.
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Stop() cancels the context; keep looping until then.
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.acc == nil {
		return
	}
	stats := d.acc.Snapshot()
	elapsed := time.Since(d.startTime)

	if stats.MeanLatency > 0 {
		d.latencyHistory = append(d.latencyHistory, stats.MeanLatencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | Current: %.2fms | Min: %.2fms | Max: %.2fms",
			stats.MeanLatencyMs,
			stats.MinLatencyMs,
			stats.MaxLatencyMs,
		)
	}

	throughput := stats.Throughput
	maxThroughput := 100.0
	if throughput > maxThroughput {
		maxThroughput = throughput
	}
	percent := int((throughput / maxThroughput) * 100)
	if percent > 100 {
		percent = 100
	}
	d.throughputG.Percent = percent
	d.throughputG.Label = fmt.Sprintf("%.1f calls/s", throughput)

	active := 0
	if d.sched != nil {
		active = d.sched.Active()
	}

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nPhase: %s | Elapsed: %s | Total: %d | Errors: %.1f%%",
		d.info.Target,
		d.formatRunParams(),
		d.phase,
		elapsed.Round(time.Second),
		stats.Total,
		stats.ErrorRate,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Total Calls:       %d\nSuccessful:        %d\nFailed:            %d\nActive Actors:     %d\nThroughput:        %.2f/s\nMin Latency:       %.2fms\nMean Latency:      %.2fms\nP50/P90/P99:       %.2f / %.2f / %.2f ms",
		stats.Total,
		stats.Successes,
		stats.Failures,
		active,
		throughput,
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.errorList.Rows = formatErrorRows(stats.Errors)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func formatErrorRows(errs map[string]int) []string {
	if len(errs) == 0 {
		return []string{"[No failures](fg:green)"}
	}

	type errorRow struct {
		kind  string
		count int
	}
	rows := make([]errorRow, 0, len(errs))
	for kind, count := range errs {
		rows = append(rows, errorRow{kind: kind, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count == rows[j].count {
			return rows[i].kind < rows[j].kind
		}
		return rows[i].count > rows[j].count
	})

	maxRows := len(rows)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		formatted = append(formatted, fmt.Sprintf("[%s](fg:red) %d", rows[i].kind, rows[i].count))
	}
	return formatted
}

func (d *Dashboard) formatRunParams() string {
	var parts []string

	if d.info.Profile != "" {
		parts = append(parts, fmt.Sprintf("Profile: %s", d.info.Profile))
	}
	if d.info.Protocol != "" && d.info.Protocol != "http" {
		parts = append(parts, fmt.Sprintf("Protocol: %s", d.info.Protocol))
	}
	if d.info.Method != "" && d.info.Method != "GET" {
		parts = append(parts, fmt.Sprintf("Method: %s", d.info.Method))
	}
	if d.info.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", d.info.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}
	if d.info.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", d.info.Timeout))
	}
	if d.info.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.info.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
