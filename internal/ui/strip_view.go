package ui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/imagestrip/internal/carousel"
)

// stripLayout is the cell area the strip is drawn into and the pixel size of
// one cell.
type stripLayout struct {
	cols, rows   int
	pxCol, pxRow int
}

// extent returns the container size in pixels along the alignment axis.
func (l stripLayout) extent(vertical bool) int {
	if vertical {
		return l.rows * l.pxRow
	}
	return l.cols * l.pxCol
}

// drawStrip projects the carousel onto a canvas. Boxes are clipped to the
// picture area, so the buffers stay hidden until an animation slides them in.
func drawStrip(c *carousel.Carousel, l stripLayout) *canvas {
	cv := newCanvas(l.cols, l.rows)
	if l.cols == 0 || l.rows == 0 || l.pxCol <= 0 || l.pxRow <= 0 {
		return cv
	}

	vertical := c.Vertical()
	boxW, boxH := c.Box()
	boxCols := max(ceilDiv(boxW, l.pxCol), 3)
	boxRows := max(ceilDiv(boxH, l.pxRow), 3)

	axisPx, axisBox := l.pxCol, boxCols
	crossCells, crossBox := l.rows, boxRows
	if vertical {
		axisPx, axisBox = l.pxRow, boxRows
		crossCells, crossBox = l.cols, boxCols
	}
	cross := centerIn(crossCells, crossBox)
	drawButtons(cv, vertical, cross+min(crossBox, crossCells)/2)

	items := c.Items()
	if len(items) == 0 {
		cv.centered(0, l.rows/2, l.cols, "no images", styleFaint)
		return cv
	}

	offset := c.Offset(l.extent(vertical))
	lo := floorDiv(offset, axisPx)
	hi := lo
	if visible := len(items) - 2; visible > 0 {
		hi = floorDiv(offset+(visible-1)*c.Step(), axisPx) + axisBox
	}
	if vertical {
		cv.setClip(rect{0, lo, l.cols, hi - lo})
	} else {
		cv.setClip(rect{lo, 0, hi - lo, l.rows})
	}

	for _, it := range items {
		start := floorDiv(offset+it.Pos, axisPx)
		b := rect{start, cross, boxCols, boxRows}
		if vertical {
			b = rect{cross, start, boxCols, boxRows}
		}
		drawItem(cv, b, it)
	}
	cv.resetClip()
	return cv
}

func drawButtons(cv *canvas, vertical bool, mid int) {
	if vertical {
		cv.set(mid, 0, '▲', styleButton)
		cv.set(mid, cv.h-1, '▼', styleButton)
		return
	}
	cv.set(0, mid, '◀', styleButton)
	cv.set(cv.w-1, mid, '▶', styleButton)
}

func drawItem(cv *canvas, b rect, it carousel.Item) {
	edge, label, border := styleBox, styleLabel, roundedBorder
	if it.Selected {
		edge, label, border = styleSelectedBox, styleSelectedLabel, heavyBorder
	}
	cv.box(b, border, edge, label)

	lines := []string{
		fmt.Sprintf("#%d", it.Index),
		fmt.Sprintf("%d×%d", it.Width, it.Height),
		path.Base(it.Resource),
	}
	inner := b.h - 2
	shown := min(len(lines), inner)
	top := b.y + 1 + centerIn(inner, shown)
	for i := range shown {
		cv.centered(b.x+1, top+i, b.w-2, lines[i], label)
	}
}

// renderStrip draws the strip region of the screen.
func (m Model) renderStrip() string {
	l := m.stripLayout()
	cv := drawStrip(m.carousel, l)
	styles := m.theme.Styles()
	lines := cv.render(map[cellStyle]lipgloss.Style{
		styleBlank:         styles.Background,
		styleFaint:         styles.FaintText.Background(lipgloss.Color(m.theme.Background)),
		styleBox:           styles.Box,
		styleLabel:         styles.BoxLabel,
		styleSelectedBox:   styles.BoxSelected,
		styleSelectedLabel: styles.BoxSelectedLabel,
		styleButton:        styles.Button,
	})
	return strings.Join(lines, "\n")
}
