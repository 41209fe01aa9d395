package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOnceModel is a Bubble Tea model that renders once and exits.
type RunOnceModel struct {
	content string
	width   int
	height  int
}

// NewRunOnceModel creates a model that will render the given content and exit
func NewRunOnceModel(content string) RunOnceModel {
	width, height := GetTerminalSize()
	return RunOnceModel{
		content: content,
		width:   width,
		height:  height,
	}
}

// Init implements tea.Model
func (m RunOnceModel) Init() tea.Cmd {
	return tea.Quit
}

// Update implements tea.Model
func (m RunOnceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}
	return m, nil
}

// View implements tea.Model
func (m RunOnceModel) View() string {
	return m.content
}

// RenderOnce renders content using Bubble Tea's renderer and exits
// immediately. Input is not read.
func RenderOnce(w io.Writer, content string) error {
	p := tea.NewProgram(NewRunOnceModel(content), tea.WithOutput(w), tea.WithInput(nil))
	_, err := p.Run()
	return err
}

// Printer prints UI components to a writer.
type Printer struct {
	out         io.Writer
	width       int
	interactive bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used and Bubble Tea rendering is enabled when
// stdout is a terminal.
func NewPrinter(w io.Writer) *Printer {
	interactive := false
	if w == nil {
		w = os.Stdout
		interactive = IsInteractive()
	}
	return &Printer{
		out:         w,
		width:       GetTerminalWidth(),
		interactive: interactive,
	}
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// Render prints a finished screen. On a terminal it goes through
// RenderOnce when it fits the window; taller content is printed directly
// since the renderer clips to the terminal height.
func (p *Printer) Render(content string) {
	if p.interactive {
		_, height := GetTerminalSize()
		if strings.Count(content, "\n")+1 < height {
			if err := RenderOnce(p.out, content+"\n"); err == nil {
				return
			}
		}
	}
	p.Println(content)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params []Field) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Field) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Field) {
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintFailure prints an error result box with troubleshooting tips
func (p *Printer) PrintFailure(title string, err error, troubleshooting []string) {
	p.Newline()
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintContents prints the defaults payload box
func (p *Printer) PrintContents(title string, data []byte, hexDump bool, base int) {
	p.Println(RenderContents(title, data, hexDump, base, p.width))
}
