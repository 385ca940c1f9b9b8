// Package dash renders a terminal dashboard over the telemetry HTTP API.
// It is a plain API consumer with no broker or database handles, so it can
// point at any running server.
package dash

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// Run draws the dashboard and blocks until the user quits with q or Ctrl-C.
func Run(addr string, refresh time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer ui.Close()

	d := newDashboard(NewClient(addr))
	d.refresh()

	grid := ui.NewGrid()
	w, h := ui.TerminalDimensions()
	grid.SetRect(0, 0, w, h)
	grid.Set(
		ui.NewRow(0.5,
			ui.NewCol(0.6, d.hours),
			ui.NewCol(0.4, d.status),
		),
		ui.NewRow(0.5, d.recent),
	)
	ui.Render(grid)

	events := ui.PollEvents()
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				ui.Render(grid)
			}
		case <-ticker.C:
			d.refresh()
			ui.Render(grid)
		}
	}
}

type dashboard struct {
	client *Client

	hours  *widgets.BarChart
	status *widgets.Paragraph
	recent *widgets.List
}

func newDashboard(client *Client) *dashboard {
	hours := widgets.NewBarChart()
	hours.Title = "Events by hour (UTC)"
	hours.BarWidth = 3
	hours.Labels = hourLabels()
	hours.Data = make([]float64, 24)

	status := widgets.NewParagraph()
	status.Title = "Lift status"
	status.Text = "waiting for data..."

	recent := widgets.NewList()
	recent.Title = "Recent events"

	return &dashboard{client: client, hours: hours, status: status, recent: recent}
}

// refresh pulls fresh data, keeping the previous render when a fetch fails.
func (d *dashboard) refresh() {
	summary, err := d.client.Summary()
	if err != nil {
		d.status.Text = fmt.Sprintf("summary unavailable: %v", err)
	} else {
		d.status.Text = statusText(summary)
		d.hours.Data = hourData(summary.TimeAnalysis.EventsByHour)
	}

	msgs, err := d.client.Messages()
	if err != nil {
		d.recent.Rows = []string{fmt.Sprintf("history unavailable: %v", err)}
		return
	}
	rows := make([]string, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, fmt.Sprintf("[#%d] %s  %s", m.ID, m.Timestamp, m.Payload))
	}
	if len(rows) == 0 {
		rows = []string{"no events yet"}
	}
	d.recent.Rows = rows
}

func statusText(s model.Summary) string {
	floor := "n/a"
	if s.MostRequestedFloor.Floor != nil {
		floor = fmt.Sprintf("%d (%d requests)", *s.MostRequestedFloor.Floor, s.MostRequestedFloor.Count)
	}
	return fmt.Sprintf(
		"Trips: %d\nMost requested floor: %s\nEmergency stops: %d\nConnection rate: %.2f%% (%d up / %d down)",
		s.Trips.Total,
		floor,
		s.Emergency.Activations,
		s.ConnectionHealth.ConnectionRate,
		s.ConnectionHealth.Connections,
		s.ConnectionHealth.Disconnections,
	)
}

func hourLabels() []string {
	labels := make([]string, 24)
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d", i)
	}
	return labels
}

func hourData(hist map[int]int) []float64 {
	data := make([]float64, 24)
	for hour, count := range hist {
		if hour >= 0 && hour < 24 {
			data[hour] = float64(count)
		}
	}
	return data
}
