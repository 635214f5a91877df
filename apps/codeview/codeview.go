// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/codeview/codeview.go
// Summary: Read-only source viewer with syntax highlighting.
// Usage: Open with props {"path": "/some/file.go"}; arrows and PgUp/PgDn scroll.

package codeview

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"

	"github.com/framegrace/skylight/internal/theming"
	"github.com/framegrace/skylight/ui"
)

const (
	defaultStyleName = "catppuccin-mocha"
	tabWidth         = 4
	hScrollStep      = 4
)

type codeView struct {
	path      string
	language  string
	styleName string
	theme     *theming.Theme

	mu            sync.RWMutex
	lines         [][]ui.Cell
	contentStyle  tcell.Style
	status        string
	offsetX       int
	offsetY       int
	width, height int

	stop        chan struct{}
	refreshChan chan<- bool
}

// New creates a code viewer. Props: "path" names the file to show,
// "language" pins the lexer and "style" picks the Chroma style.
func New(props map[string]any) ui.App {
	v := &codeView{
		styleName: defaultStyleName,
		theme:     theming.Default(),
		status:    "loading",
		stop:      make(chan struct{}),
	}
	if p, ok := props["path"].(string); ok {
		v.path = p
	}
	if lang, ok := props["language"].(string); ok {
		v.language = lang
	}
	if s, ok := props["style"].(string); ok && s != "" {
		v.styleName = s
	}
	v.contentStyle = v.theme.Style("text.primary", "bg.surface")
	return v
}

// Run loads and highlights the file, then blocks until Stop.
func (v *codeView) Run() error {
	v.load()
	ui.Notify(v.refreshChan)
	<-v.stop
	return nil
}

// Stop signals the Run loop to terminate.
func (v *codeView) Stop() {
	close(v.stop)
}

func (v *codeView) SetRefreshNotifier(refreshChan chan<- bool) {
	v.refreshChan = refreshChan
}

// load reads the file and builds the highlighted cell lines.
func (v *codeView) load() {
	if v.path == "" {
		v.setStatus("no path given")
		return
	}

	data, err := os.ReadFile(v.path)
	if err != nil {
		log.Printf("CodeView: Failed to read %s: %v", v.path, err)
		v.setStatus(fmt.Sprintf("cannot read %s", v.path))
		return
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	lang := v.language
	if lang == "" {
		lang = enry.GetLanguage(filepath.Base(v.path), data)
	}

	style := styles.Get(v.styleName)
	lexer := getLexer(lang, text)
	lexer = chroma.Coalesce(lexer)

	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		log.Printf("CodeView: Tokenise failed for %s: %v", v.path, err)
		v.setStatus("highlighting failed")
		return
	}

	contentStyle := v.contentStyle
	if bg := style.Get(chroma.Background).Background; bg.IsSet() {
		contentStyle = contentStyle.Background(rgb(bg))
	}

	lines := buildLines(tokens, style, contentStyle)

	v.mu.Lock()
	v.lines = lines
	v.contentStyle = contentStyle
	v.status = ""
	v.mu.Unlock()
}

func (v *codeView) setStatus(msg string) {
	v.mu.Lock()
	v.status = msg
	v.mu.Unlock()
}

// getLexer returns a Chroma lexer by language name, or auto-detects from content.
func getLexer(name, text string) chroma.Lexer {
	if name != "" {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// buildLines converts a token stream into cell rows, expanding tabs.
func buildLines(tokens []chroma.Token, style *chroma.Style, base tcell.Style) [][]ui.Cell {
	baseColour := style.Get(chroma.Text).Colour

	lines := make([][]ui.Cell, 0, 256)
	current := make([]ui.Cell, 0, 80)

	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		cellStyle := tokenStyle(style.Get(tok.Type), baseColour, base)

		for _, ch := range tok.Value {
			switch ch {
			case '\n':
				lines = append(lines, current)
				current = make([]ui.Cell, 0, 80)
			case '\t':
				pad := tabWidth - len(current)%tabWidth
				for i := 0; i < pad; i++ {
					current = append(current, ui.Cell{Ch: ' ', Style: cellStyle})
				}
			default:
				current = append(current, ui.Cell{Ch: ch, Style: cellStyle})
			}
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// tokenStyle maps a Chroma style entry onto the base cell style.
// Tokens matching the style's base text color keep the theme foreground.
func tokenStyle(entry chroma.StyleEntry, baseColour chroma.Colour, base tcell.Style) tcell.Style {
	s := base
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		s = s.Foreground(rgb(entry.Colour))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		s = s.Underline(true)
	}
	return s
}

func rgb(c chroma.Colour) tcell.Color {
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}

// HandleKey scrolls the view.
func (v *codeView) HandleKey(ev *tcell.EventKey) {
	v.mu.Lock()

	switch ev.Key() {
	case tcell.KeyUp:
		v.offsetY--
	case tcell.KeyDown:
		v.offsetY++
	case tcell.KeyPgUp:
		v.offsetY -= v.height
	case tcell.KeyPgDn:
		v.offsetY += v.height
	case tcell.KeyHome:
		v.offsetY = 0
		v.offsetX = 0
	case tcell.KeyEnd:
		v.offsetY = len(v.lines)
	case tcell.KeyLeft:
		v.offsetX -= hScrollStep
	case tcell.KeyRight:
		v.offsetX += hScrollStep
	default:
		v.mu.Unlock()
		return
	}

	v.clampOffsets()
	v.mu.Unlock()
	ui.Notify(v.refreshChan)
}

// clampOffsets keeps the viewport inside the document. Assumes v.mu is locked.
func (v *codeView) clampOffsets() {
	maxY := len(v.lines) - v.height
	if maxY < 0 {
		maxY = 0
	}
	if v.offsetY > maxY {
		v.offsetY = maxY
	}
	if v.offsetY < 0 {
		v.offsetY = 0
	}
	if v.offsetX < 0 {
		v.offsetX = 0
	}
}

// Resize stores the new dimensions of the window interior.
func (v *codeView) Resize(cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = cols, rows
	v.clampOffsets()
}

// Render paints the visible slice of the highlighted document.
func (v *codeView) Render() [][]ui.Cell {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.width <= 0 || v.height <= 0 {
		return [][]ui.Cell{}
	}

	buf := make([][]ui.Cell, v.height)
	for y := range buf {
		buf[y] = make([]ui.Cell, v.width)
		for x := range buf[y] {
			buf[y][x] = ui.Cell{Ch: ' ', Style: v.contentStyle}
		}
	}

	if v.status != "" {
		style := v.theme.Style("text.muted", "bg.surface")
		y := v.height / 2
		x := (v.width - len(v.status)) / 2
		if x < 0 {
			x = 0
		}
		for i, ch := range v.status {
			if x+i >= v.width {
				break
			}
			buf[y][x+i] = ui.Cell{Ch: ch, Style: style}
		}
		return buf
	}

	for y := 0; y < v.height; y++ {
		srcY := v.offsetY + y
		if srcY >= len(v.lines) {
			break
		}
		line := v.lines[srcY]
		for x := 0; x < v.width; x++ {
			srcX := v.offsetX + x
			if srcX >= len(line) {
				break
			}
			buf[y][x] = line[srcX]
		}
	}

	return buf
}

// GetTitle returns the file name being viewed.
func (v *codeView) GetTitle() string {
	if v.path == "" {
		return "Code"
	}
	return filepath.Base(v.path)
}
