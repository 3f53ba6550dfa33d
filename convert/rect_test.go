package convert

import (
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/stretchr/testify/assert"
)

func polygon(points ...[2]float32) []ir.PathElement {
	out := []ir.PathElement{ir.MoveTo{X: points[0][0], Y: points[0][1]}}
	for _, p := range points[1:] {
		out = append(out, ir.LineTo{X: p[0], Y: p[1]})
	}
	return append(out, ir.ClosePath{})
}

func TestRecognizeRectangle(t *testing.T) {
	want := ir.Rectangle{X: 10, Y: 20, W: 30, H: 40}
	corners := [][2]float32{{10, 20}, {40, 20}, {40, 60}, {10, 60}}
	for start := 0; start < 4; start++ {
		for _, reverse := range []bool{false, true} {
			var pts [][2]float32
			for i := 0; i < 4; i++ {
				j := (start + i) % 4
				if reverse {
					j = (start - i + 4) % 4
				}
				pts = append(pts, corners[j])
			}
			rect, ok := RecognizeRectangle(polygon(pts...))
			assert.True(t, ok, "start %d reverse %v", start, reverse)
			assert.Equal(t, want, rect)
		}
	}
}

func TestRecognizeRectangleRejects(t *testing.T) {
	tests := []struct {
		name     string
		elements []ir.PathElement
	}{
		{"diagonal", polygon([2]float32{0, 0}, [2]float32{10, 0}, [2]float32{10, 10}, [2]float32{1, 9})},
		{"crossed", polygon([2]float32{0, 0}, [2]float32{10, 0}, [2]float32{0, 10}, [2]float32{10, 10})},
		{"not closed", polygon([2]float32{0, 0}, [2]float32{10, 0}, [2]float32{10, 10}, [2]float32{0, 10})[:4]},
		{"triangle", polygon([2]float32{0, 0}, [2]float32{10, 0}, [2]float32{10, 10})},
		{"flat", polygon([2]float32{0, 0}, [2]float32{10, 0}, [2]float32{10, 0}, [2]float32{0, 0})},
		{"thin", polygon([2]float32{5, 0}, [2]float32{5, 10}, [2]float32{5, 10}, [2]float32{5, 0})},
		{"point", polygon([2]float32{3, 3}, [2]float32{3, 3}, [2]float32{3, 3}, [2]float32{3, 3})},
		{"curve", []ir.PathElement{
			ir.MoveTo{}, ir.LineTo{X: 10}, ir.QuadTo{CX: 10, CY: 5, X: 10, Y: 10}, ir.LineTo{Y: 10}, ir.ClosePath{},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := RecognizeRectangle(tt.elements)
			assert.False(t, ok)
		})
	}
}
