package components

import (
	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PortTable lists discovered ports and lets the user pick one
type PortTable struct {
	table table.Model
	ports []serial.PortMetadata
}

func NewPortTable(width, height int) *PortTable {
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithColumns(portColumns(width)),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	return &PortTable{table: t}
}

func portColumns(width int) []table.Column {
	pathWidth := 22
	typeWidth := 4
	idWidth := 10
	serialWidth := 20

	// Column padding takes two characters per column
	nameWidth := width - pathWidth - typeWidth - idWidth - serialWidth - 10
	if nameWidth < 20 {
		nameWidth = 20
	}

	return []table.Column{
		{Title: "Port", Width: pathWidth},
		{Title: "Type", Width: typeWidth},
		{Title: "VID:PID", Width: idWidth},
		{Title: "Description", Width: nameWidth},
		{Title: "Serial", Width: serialWidth},
	}
}

// PortRow renders one port as table cells
func PortRow(p serial.PortMetadata) table.Row {
	kind := "tty"
	ids := ""
	if p.HasUSBController {
		kind = "usb"
		ids = deref(p.VendorID, "?") + ":" + deref(p.ProductID, "?")
	}
	return table.Row{p.Path, kind, ids, p.Description(), deref(p.SerialNumber, "")}
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func (pt *PortTable) SetPorts(ports []serial.PortMetadata) {
	pt.ports = ports
	rows := make([]table.Row, len(ports))
	for i, p := range ports {
		rows[i] = PortRow(p)
	}
	pt.table.SetRows(rows)
	if pt.table.Cursor() >= len(rows) {
		pt.table.SetCursor(0)
	}
}

func (pt *PortTable) SetSize(width, height int) {
	pt.table.SetColumns(portColumns(width))
	pt.table.SetWidth(width)
	pt.table.SetHeight(height)
}

// Selected returns the port under the cursor
func (pt *PortTable) Selected() (serial.PortMetadata, bool) {
	i := pt.table.Cursor()
	if i < 0 || i >= len(pt.ports) {
		return serial.PortMetadata{}, false
	}
	return pt.ports[i], true
}

func (pt *PortTable) Len() int {
	return len(pt.ports)
}

func (pt *PortTable) Update(msg tea.Msg) (*PortTable, tea.Cmd) {
	var cmd tea.Cmd
	pt.table, cmd = pt.table.Update(msg)
	return pt, cmd
}

func (pt *PortTable) View() string {
	return pt.table.View()
}
