package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// swatchWidth is the length of a legend line sample.
	swatchWidth = 20
	// legendGap separates legend entries and the swatch from its label.
	legendGap = 6
	// legendRow is the height of one legend row.
	legendRow = 16
	// dotRadius is the radius of the legend point sample.
	dotRadius = 3
)

//nolint:gochecknoglobals // Immutable palette.
var (
	textColor   = color.RGBA{A: 0xff}
	legendFill  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe6}
	legendFrame = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
)

// drawLegend draws entries in rows starting at origin, wrapping at maxWidth.
func drawLegend(img draw.Image, origin image.Point, maxWidth int, entries []LegendEntry, dash []float64) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}

	type slot struct {
		entry LegendEntry
		at    image.Point
	}

	var (
		slots  []slot
		x, y   = 0, 0
		right  = 0
		bottom = legendRow
	)

	for _, e := range entries {
		w := swatchWidth + legendGap + d.MeasureString(e.Label).Ceil()
		if x > 0 && x+w > maxWidth {
			x = 0
			y += legendRow
			bottom += legendRow
		}

		slots = append(slots, slot{entry: e, at: image.Pt(x, y)})
		x += w + 2*legendGap
		right = max(right, x-legendGap)
	}

	box := image.Rect(origin.X, origin.Y, origin.X+right+legendGap, origin.Y+bottom+legendGap)
	draw.Draw(img, box, image.NewUniform(legendFill), image.Point{}, draw.Over)
	strokeRect(img, box, legendFrame)

	ascent := face.Metrics().Ascent.Ceil()

	for _, s := range slots {
		at := origin.Add(s.at).Add(image.Pt(legendGap, legendGap/2))
		mid := at.Y + legendRow/2
		c := opaque(s.entry.Color)

		if s.entry.Point {
			fillDisc(img, image.Pt(at.X+swatchWidth/2, mid), dotRadius, c)
		} else {
			dashLine(img, at.X, at.X+swatchWidth, mid, dash, c)
		}

		drawText(img, at.X+swatchWidth+legendGap, mid+ascent/2, s.entry.Label)
	}
}

// drawFooter writes left-aligned and right-aligned text on the bottom strip.
func drawFooter(img draw.Image, left, right int, leftText, rightText string) {
	b := img.Bounds()
	baseline := b.Max.Y - (textBand-basicfont.Face7x13.Metrics().Ascent.Ceil())/2
	d := &font.Drawer{Face: basicfont.Face7x13}

	drawText(img, b.Min.X+left, baseline, leftText)
	drawText(img, b.Max.X-right-d.MeasureString(rightText).Ceil(), baseline, rightText)
}

func drawText(img draw.Image, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// dashLine draws a two pixel thick horizontal line from x0 to x1 using the
// on/off pattern; an empty pattern draws a solid line.
func dashLine(img draw.Image, x0, x1, y int, pattern []float64, c color.Color) {
	on, idx, left := true, 0, 0.0
	if len(pattern) > 0 {
		left = pattern[0]
	}

	for x := x0; x < x1; x++ {
		if on {
			img.Set(x, y, c)
			img.Set(x, y+1, c)
		}

		if len(pattern) == 0 {
			continue
		}

		if left--; left <= 0 {
			idx = (idx + 1) % len(pattern)
			left += pattern[idx]
			on = !on
		}
	}
}

func fillDisc(img draw.Image, center image.Point, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

func strokeRect(img draw.Image, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
