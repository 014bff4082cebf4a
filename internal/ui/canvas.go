package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellStyle selects the lipgloss style a canvas cell is drawn with.
type cellStyle int

const (
	styleBlank cellStyle = iota
	styleFaint
	styleBox
	styleLabel
	styleSelectedBox
	styleSelectedLabel
	styleButton
)

type cell struct {
	r     rune
	style cellStyle
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Corner and edge runes, in the order: top-left, top-right, bottom-left,
// bottom-right, horizontal, vertical.
type borderRunes [6]rune

var (
	roundedBorder = borderRunes{'╭', '╮', '╰', '╯', '─', '│'}
	heavyBorder   = borderRunes{'┏', '┓', '┗', '┛', '━', '┃'}
)

// canvas is a fixed grid of single-width cells. Writes outside the clip
// rectangle are dropped.
type canvas struct {
	w, h  int
	cells []cell
	clip  rect
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	c.resetClip()
	return c
}

func (c *canvas) setClip(r rect) { c.clip = r }

func (c *canvas) resetClip() { c.clip = rect{0, 0, c.w, c.h} }

func (c *canvas) set(x, y int, r rune, style cellStyle) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h || !c.clip.contains(x, y) {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, style: style}
}

func (c *canvas) text(x, y int, s string, style cellStyle) {
	for _, r := range s {
		c.set(x, y, r, style)
		x++
	}
}

// centered writes s centered within [x, x+width) on row y.
func (c *canvas) centered(x, y, width int, s string, style cellStyle) {
	s = fit(s, width)
	c.text(x+centerIn(width, lipgloss.Width(s)), y, s, style)
}

func (c *canvas) box(b rect, border borderRunes, edge, fill cellStyle) {
	if b.w < 2 || b.h < 2 {
		return
	}
	right, bottom := b.x+b.w-1, b.y+b.h-1
	for x := b.x + 1; x < right; x++ {
		c.set(x, b.y, border[4], edge)
		c.set(x, bottom, border[4], edge)
	}
	for y := b.y + 1; y < bottom; y++ {
		c.set(b.x, y, border[5], edge)
		c.set(right, y, border[5], edge)
		for x := b.x + 1; x < right; x++ {
			c.set(x, y, ' ', fill)
		}
	}
	c.set(b.x, b.y, border[0], edge)
	c.set(right, b.y, border[1], edge)
	c.set(b.x, bottom, border[2], edge)
	c.set(right, bottom, border[3], edge)
}

// plain returns the canvas rows without styling.
func (c *canvas) plain() []string {
	lines := make([]string, c.h)
	var b strings.Builder
	for y := range c.h {
		b.Reset()
		for _, cl := range c.cells[y*c.w : (y+1)*c.w] {
			b.WriteRune(cl.r)
		}
		lines[y] = b.String()
	}
	return lines
}

// render styles runs of equally styled cells and returns one string per row.
func (c *canvas) render(styles map[cellStyle]lipgloss.Style) []string {
	lines := make([]string, c.h)
	var line, run strings.Builder
	for y := range c.h {
		line.Reset()
		row := c.cells[y*c.w : (y+1)*c.w]
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].style == row[start].style {
				continue
			}
			run.Reset()
			for _, cl := range row[start:x] {
				run.WriteRune(cl.r)
			}
			line.WriteString(styles[row[start].style].Render(run.String()))
			start = x
		}
		lines[y] = line.String()
	}
	return lines
}
