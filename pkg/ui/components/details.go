package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DetailsComponent renders labelled values in insertion order.
type DetailsComponent struct {
	keys   []string
	values map[string]string
}

// NewDetailsComponent creates an empty details panel.
func NewDetailsComponent() *DetailsComponent {
	return &DetailsComponent{values: make(map[string]string)}
}

// Set adds or replaces a value.
func (d *DetailsComponent) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value for key.
func (d *DetailsComponent) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// View renders the details panel.
func (d *DetailsComponent) View() string {
	if len(d.keys) == 0 {
		return ""
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	width := 0
	for _, k := range d.keys {
		if len(k) > width {
			width = len(k)
		}
	}

	var sb strings.Builder
	for _, k := range d.keys {
		sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-*s", width, k)), value.Render(d.values[k])))
	}
	return strings.TrimRight(sb.String(), "\n")
}
