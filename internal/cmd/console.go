package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/coldhawk/coldhawk/internal/event"
)

// console renders lifecycle events from the bus as level-colored terminal
// lines. It is the CLI's only view into running workers; everything it
// prints comes off the bus, never from the workers directly.
type console struct {
	mu  sync.Mutex
	out io.Writer
	bus *event.Bus

	levels map[event.Level]lipgloss.Style
	muted  lipgloss.Style

	subs []string
}

func newConsole(bus *event.Bus, out io.Writer) *console {
	c := &console{
		out: out,
		bus: bus,
		levels: map[event.Level]lipgloss.Style{
			event.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			event.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			event.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			event.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			event.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		},
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}

	c.subs = append(c.subs,
		bus.Subscribe("session.log", c.onLog),
		bus.Subscribe("session.state_changed", c.onState),
		bus.Subscribe("session.progress", c.onProgress),
		bus.Subscribe("session.post_created", c.onPostCreated),
	)
	return c
}

// Close detaches the console from the bus.
func (c *console) Close() {
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
	c.subs = nil
}

func (c *console) onLog(e event.Event) {
	le, ok := e.(event.LogEvent)
	if !ok {
		return
	}
	c.println(c.renderLog(le))
}

func (c *console) onState(e event.Event) {
	se, ok := e.(event.StateChangedEvent)
	if !ok {
		return
	}
	c.println(c.muted.Render(fmt.Sprintf("%s session %d -> %s",
		se.Timestamp().Format("15:04:05"), se.SessionID, se.State)))
}

func (c *console) onProgress(e event.Event) {
	pe, ok := e.(event.ProgressEvent)
	if !ok {
		return
	}
	c.println(c.muted.Render(fmt.Sprintf("%s session %d progress %d/%d (%d ok)",
		pe.Timestamp().Format("15:04:05"), pe.SessionID, pe.Current, pe.Total, pe.SuccessCount)))
}

func (c *console) onPostCreated(e event.Event) {
	pc, ok := e.(event.PostCreatedEvent)
	if !ok {
		return
	}
	c.println(c.muted.Render(fmt.Sprintf("%s session %d wrote %s",
		pc.Timestamp().Format("15:04:05"), pc.SessionID, pc.Post)))
}

// renderLog produces a "[HH:MM:SS] LEVEL message" line with the level badge
// colored by severity.
func (c *console) renderLog(le event.LogEvent) string {
	style, ok := c.levels[le.Level]
	if !ok {
		style = c.levels[event.LevelInfo]
	}
	stamp := c.muted.Render("[" + le.Timestamp().Format("15:04:05") + "]")
	badge := style.Render(string(le.Level))
	return fmt.Sprintf("%s %s %s", stamp, badge, le.Message)
}

func (c *console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}
