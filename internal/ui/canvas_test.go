package ui

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/imagestrip/internal/carousel"
	"github.com/five82/imagestrip/internal/protocol"
)

func TestCanvasBox(t *testing.T) {
	cv := newCanvas(6, 3)
	cv.box(rect{1, 0, 4, 3}, roundedBorder, styleBox, styleLabel)
	want := []string{" ╭──╮ ", " │  │ ", " ╰──╯ "}
	if got := cv.plain(); !reflect.DeepEqual(got, want) {
		t.Fatalf("plain = %q, want %q", got, want)
	}
}

func TestCanvasClipDropsOutsideWrites(t *testing.T) {
	cv := newCanvas(5, 1)
	cv.setClip(rect{1, 0, 3, 1})
	cv.text(-2, 0, "abcdefgh", styleLabel)
	if got := cv.plain()[0]; got != " def " {
		t.Fatalf("clipped row = %q, want %q", got, " def ")
	}
	cv.resetClip()
	cv.set(0, 0, '<', styleButton)
	if got := cv.plain()[0]; got != "<def " {
		t.Fatalf("row after resetClip = %q", got)
	}
}

func TestCanvasRenderKeepsWidth(t *testing.T) {
	cv := newCanvas(7, 2)
	cv.text(2, 0, "ab", styleLabel)
	cv.set(6, 1, '▶', styleButton)
	styles := GetTheme("Slate").Styles()
	lines := cv.render(map[cellStyle]lipgloss.Style{
		styleBlank:  styles.Background,
		styleLabel:  styles.BoxLabel,
		styleButton: styles.Button,
	})
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 7 {
			t.Fatalf("line %d width = %d, want 7 (%q)", i, w, line)
		}
	}
}

func testDirectives(window []int, images ...int) protocol.Directives {
	d := protocol.Directives{
		Animated:      true,
		BoxWidth:      120,
		BoxHeight:     120,
		Selectable:    true,
		SelectedImage: protocol.NoSelection,
		Window:        window,
	}
	for _, i := range images {
		d.Images = append(d.Images, protocol.ImagePayload{
			Resource: fmt.Sprintf("/assets/%d.png", i),
			Index:    i,
			Width:    110,
			Height:   55,
		})
	}
	return d
}

func runeAt(line string, x int) rune {
	r := []rune(line)
	if x < 0 || x >= len(r) {
		return 0
	}
	return r[x]
}

func TestDrawStripHorizontal(t *testing.T) {
	c := carousel.New()
	if err := c.Apply(testDirectives([]int{3, 0, 1, 2}, 0, 1, 2, 3)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	lines := drawStrip(c, stripLayout{cols: 50, rows: 10, pxCol: 8, pxRow: 16}).plain()

	if strings.TrimSpace(lines[0]) != "" {
		t.Fatalf("row 0 should be empty, got %q", lines[0])
	}
	if got := runeAt(lines[1], 8); got != '╭' {
		t.Fatalf("first visible box corner = %q, want ╭\n%s", got, strings.Join(lines, "\n"))
	}
	if got := runeAt(lines[1], 24); got != '╭' {
		t.Fatalf("second visible box corner = %q, want ╭", got)
	}
	if !strings.Contains(lines[3], "#0") || !strings.Contains(lines[3], "#1") {
		t.Fatalf("labels missing from %q", lines[3])
	}
	for _, hidden := range []string{"#2", "#3"} {
		for _, line := range lines {
			if strings.Contains(line, hidden) {
				t.Fatalf("buffer %s should be clipped: %q", hidden, line)
			}
		}
	}
	if !strings.Contains(lines[4], "110×55") || !strings.Contains(lines[5], "0.png") {
		t.Fatalf("size or name label missing:\n%s", strings.Join(lines, "\n"))
	}
	if runeAt(lines[5], 0) != '◀' || runeAt(lines[5], 49) != '▶' {
		t.Fatalf("buttons missing from %q", lines[5])
	}
}

func TestDrawStripSelectedUsesHeavyBorder(t *testing.T) {
	c := carousel.New()
	if err := c.Apply(testDirectives([]int{3, 0, 1, 2}, 0, 1, 2, 3)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := c.Select(1, false); !ok {
		t.Fatalf("Select on selectable strip failed")
	}
	lines := drawStrip(c, stripLayout{cols: 50, rows: 10, pxCol: 8, pxRow: 16}).plain()
	if got := runeAt(lines[1], 8); got != '╭' {
		t.Fatalf("unselected corner = %q, want ╭", got)
	}
	if got := runeAt(lines[1], 24); got != '┏' {
		t.Fatalf("selected corner = %q, want ┏", got)
	}
}

func TestDrawStripVertical(t *testing.T) {
	c := carousel.New()
	d := testDirectives([]int{2, 0, 1, 2, 0}, 0, 1, 2)
	d.Alignment = protocol.AlignVertical
	if err := c.Apply(d); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// 30 rows of 16px = 480px; area = 3*130+10 = 400, offset 40 → row 2.
	lines := drawStrip(c, stripLayout{cols: 30, rows: 30, pxCol: 8, pxRow: 16}).plain()
	// Box is 15 columns wide, centred in 30.
	if got := runeAt(lines[2], 7); got != '╭' {
		t.Fatalf("first box corner = %q, want ╭\n%s", got, strings.Join(lines, "\n"))
	}
	if runeAt(lines[0], 14) != '▲' || runeAt(lines[29], 14) != '▼' {
		t.Fatalf("vertical buttons missing")
	}
}

func TestDrawStripEmpty(t *testing.T) {
	lines := drawStrip(carousel.New(), stripLayout{cols: 30, rows: 5, pxCol: 8, pxRow: 16}).plain()
	if !strings.Contains(lines[2], "no images") {
		t.Fatalf("empty strip placeholder missing: %q", lines)
	}
}
