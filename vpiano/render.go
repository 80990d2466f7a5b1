package vpiano

import (
	"strings"

	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/styles"
)

const (
	// Terminal columns per white key.
	cellWidth = 4
	// Marker drawn on pressed keys.
	Marker = "●"
)

// Render draws the layout as a text keyboard with a marker on every highlighted
// pitch. Pitches outside the window are ignored. C3 and D#3 on [C3, E3]:
//
//	│  ███ ███  │
//	│  ███ █●█  │
//	│ ● │   │   │
//	└───┴───┴───┘
//	 C3
func Render(l KeyLayout, highlighted []pitch.Pitch) string {
	if l.WhiteCount == 0 {
		return ""
	}
	on := make(map[pitch.Pitch]bool, len(highlighted))
	for _, p := range highlighted {
		on[p] = true
	}
	marker := styles.KeyMarker.Render(Marker)
	width := l.WhiteCount*cellWidth + 1

	grid := make([][]string, 4)
	for r := range grid {
		grid[r] = make([]string, width)
		for c := range grid[r] {
			grid[r][c] = " "
			if c%cellWidth == 0 {
				grid[r][c] = "│"
			}
		}
	}
	for c := range grid[3] {
		switch {
		case c == 0:
			grid[3][c] = "└"
		case c == width-1:
			grid[3][c] = "┘"
		case c%cellWidth == 0:
			grid[3][c] = "┴"
		default:
			grid[3][c] = "─"
		}
	}

	for p, after := range l.Blacks {
		center := (after + 1) * cellWidth
		for c := center - 1; c <= center+1; c++ {
			if c < 0 || c >= width {
				continue
			}
			grid[0][c] = "█"
			grid[1][c] = "█"
		}
		if on[p] && center >= 0 && center < width {
			grid[1][center] = marker
		}
	}

	labels := make([]string, width)
	for c := range labels {
		labels[c] = " "
	}
	for p, ord := range l.Whites {
		if on[p] {
			grid[2][ord*cellWidth+2] = marker
		}
		if p.Class() == pitch.C {
			for i, r := range p.String() {
				if c := ord*cellWidth + 1 + i; c < width {
					labels[c] = string(r)
				}
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimRight(strings.Join(labels, ""), " "))
	return b.String()
}
