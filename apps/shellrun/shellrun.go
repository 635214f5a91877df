// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/shellrun/shellrun.go
// Summary: Runs a shell command in a pty and shows its output as plain text.
// Usage: Open with props {"command": "htop"}; PgUp/PgDn scroll the output.

package shellrun

import (
	"bytes"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/ui"
)

const (
	maxScrollback = 2000
	defaultCols   = 80
	defaultRows   = 24
)

// Escape sequences stripped from command output. The viewer renders plain
// text only, so color and cursor control sequences are dropped wholesale.
var (
	reOSC = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	reCSI = regexp.MustCompile(`\x1b\[[0-9;?]*[@-~]`)
	reESC = regexp.MustCompile(`\x1b[@-_]`)
)

type shellRun struct {
	command string
	theme   *theming.Theme

	mu            sync.RWMutex
	lines         []string
	pending       []byte
	scrollOffset  int // lines back from the bottom
	width, height int
	ptmx          *os.File
	cmd           *exec.Cmd
	exited        bool

	stop        chan struct{}
	wg          sync.WaitGroup
	refreshChan chan<- bool
}

// New creates a shell runner. Props must carry "command", the shell
// command line to execute.
func New(props map[string]any) ui.App {
	a := &shellRun{
		theme:  theming.Default(),
		width:  defaultCols,
		height: defaultRows,
		stop:   make(chan struct{}),
	}
	if c, ok := props["command"].(string); ok {
		a.command = c
	}
	return a
}

// Run starts the command on a pty and blocks until it exits.
func (a *shellRun) Run() error {
	if a.command == "" {
		a.appendLine("no command given")
		ui.Notify(a.refreshChan)
		<-a.stop
		return nil
	}

	a.mu.RLock()
	cols, rows := a.width, a.height
	a.mu.RUnlock()

	cmd := exec.Command("/bin/sh", "-c", a.command)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		log.Printf("ShellRun: Failed to start pty for %q: %v", a.command, err)
		a.appendLine("failed to start: " + err.Error())
		ui.Notify(a.refreshChan)
		<-a.stop
		return err
	}

	a.mu.Lock()
	a.ptmx = ptmx
	a.cmd = cmd
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer ptmx.Close()

		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				a.consume(buf[:n])
				ui.Notify(a.refreshChan)
			}
			if err != nil {
				a.mu.Lock()
				a.exited = true
				a.mu.Unlock()
				ui.Notify(a.refreshChan)
				return
			}
		}
	}()

	err = cmd.Wait()
	a.wg.Wait()
	return err
}

// Stop terminates the command and unblocks Run.
func (a *shellRun) Stop() {
	close(a.stop)

	a.mu.Lock()
	ptmx := a.ptmx
	cmd := a.cmd
	a.mu.Unlock()

	if ptmx != nil {
		ptmx.Close()
	}
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGTERM)
	}
}

func (a *shellRun) SetRefreshNotifier(refreshChan chan<- bool) {
	a.refreshChan = refreshChan
}

// consume folds a chunk of pty output into the scrollback.
func (a *shellRun) consume(chunk []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = append(a.pending, chunk...)
	for {
		idx := bytes.IndexByte(a.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(a.pending[:idx])
		a.pending = a.pending[idx+1:]
		a.appendLineLocked(stripEscapes(line))
	}
}

func (a *shellRun) appendLine(line string) {
	a.mu.Lock()
	a.appendLineLocked(line)
	a.mu.Unlock()
}

// appendLineLocked adds a line, trimming the scrollback cap. Assumes a.mu is locked.
func (a *shellRun) appendLineLocked(line string) {
	a.lines = append(a.lines, line)
	if len(a.lines) > maxScrollback {
		a.lines = a.lines[len(a.lines)-maxScrollback:]
	}
}

// stripEscapes removes ANSI escape sequences and carriage returns.
func stripEscapes(s string) string {
	s = reOSC.ReplaceAllString(s, "")
	s = reCSI.ReplaceAllString(s, "")
	s = reESC.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "\r", "")
}

// HandleKey forwards input to the pty; PgUp/PgDn scroll the scrollback.
func (a *shellRun) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyPgUp:
		a.mu.Lock()
		a.scrollOffset += a.height
		if limit := len(a.lines); a.scrollOffset > limit {
			a.scrollOffset = limit
		}
		a.mu.Unlock()
		ui.Notify(a.refreshChan)
		return

	case tcell.KeyPgDn:
		a.mu.Lock()
		a.scrollOffset -= a.height
		if a.scrollOffset < 0 {
			a.scrollOffset = 0
		}
		a.mu.Unlock()
		ui.Notify(a.refreshChan)
		return
	}

	var keyBytes []byte
	switch ev.Key() {
	case tcell.KeyEnter:
		keyBytes = []byte("\r")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		keyBytes = []byte{'\b'}
	case tcell.KeyTab:
		keyBytes = []byte("\t")
	case tcell.KeyEsc:
		keyBytes = []byte("\x1b")
	case tcell.KeyCtrlC:
		keyBytes = []byte{0x03}
	case tcell.KeyCtrlD:
		keyBytes = []byte{0x04}
	default:
		keyBytes = []byte(string(ev.Rune()))
	}

	a.mu.RLock()
	ptmx := a.ptmx
	a.mu.RUnlock()
	if ptmx != nil && keyBytes != nil {
		ptmx.Write(keyBytes)
	}
}

// Resize stores the new dimensions and informs the pty.
func (a *shellRun) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.width, a.height = cols, rows

	if a.ptmx != nil {
		pty.Setsize(a.ptmx, &pty.Winsize{
			Rows: uint16(rows),
			Cols: uint16(cols),
		})
	}
}

// Render paints the tail of the scrollback plus any partial line.
func (a *shellRun) Render() [][]ui.Cell {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.width <= 0 || a.height <= 0 {
		return [][]ui.Cell{}
	}

	style := a.theme.Style("text.primary", "bg.surface")
	muted := a.theme.Style("text.muted", "bg.surface")

	buf := make([][]ui.Cell, a.height)
	for y := range buf {
		buf[y] = make([]ui.Cell, a.width)
		for x := range buf[y] {
			buf[y][x] = ui.Cell{Ch: ' ', Style: style}
		}
	}

	visible := append([]string(nil), a.lines...)
	if partial := stripEscapes(string(a.pending)); partial != "" {
		visible = append(visible, partial)
	}
	if a.exited {
		visible = append(visible, "[process exited]")
	}

	end := len(visible) - a.scrollOffset
	if end < 0 {
		end = 0
	}
	start := end - a.height
	if start < 0 {
		start = 0
	}

	for y, i := 0, start; i < end && y < a.height; y, i = y+1, i+1 {
		lineStyle := style
		if visible[i] == "[process exited]" {
			lineStyle = muted
		}
		x := 0
		for _, ch := range visible[i] {
			if x >= a.width {
				break
			}
			buf[y][x] = ui.Cell{Ch: ch, Style: lineStyle}
			x++
		}
	}

	return buf
}

// GetTitle returns the command line being run.
func (a *shellRun) GetTitle() string {
	if a.command == "" {
		return "Shell"
	}
	return a.command
}
