// Package mapcard draws the PNG card shown in map mode: a disc colored by
// the temporal mean's bucket, the value, the region and a legend strip.
package mapcard

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/climateviz/internal/colorscale"
	"github.com/lox/climateviz/internal/models"
	"github.com/lox/climateviz/internal/series"
)

const (
	Width  = 640
	Height = 360
)

var (
	goFont     *opentype.Font
	goFontOnce sync.Once
	goFontErr  error
)

// faces holds the sizes one card is drawn with. opentype faces keep glyph
// buffers, so each Render gets its own set over the shared parsed font.
type faces struct {
	large, medium, small font.Face
}

func newFaces() (*faces, error) {
	goFontOnce.Do(func() {
		goFont, goFontErr = opentype.Parse(goregular.TTF)
		if goFontErr != nil {
			goFontErr = fmt.Errorf("parse goregular: %w", goFontErr)
		}
	})
	if goFontErr != nil {
		return nil, goFontErr
	}

	var fs faces
	for _, fc := range []struct {
		face *font.Face
		size float64
	}{
		{&fs.large, 56},
		{&fs.medium, 24},
		{&fs.small, 14},
	} {
		face, err := opentype.NewFace(goFont, &opentype.FaceOptions{
			Size:    fc.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create %.0fpt face: %w", fc.size, err)
		}
		*fc.face = face
	}
	return &fs, nil
}

// Card is what the map card shows. Mean is nil when the API had no value.
type Card struct {
	Region   string
	Variable series.Variable
	Label    string
	Mean     *float64
	Unit     string
	Lat, Lon float64
}

// FromResponse builds a card from a map aggregate response for v.
func FromResponse(resp *models.MapDataResponse, v series.Variable) Card {
	label := resp.Variable
	if label == "" {
		label = string(v)
	}
	return Card{
		Region:   resp.Region,
		Variable: v,
		Label:    label,
		Mean:     resp.TemporalMean,
		Unit:     resp.Unit,
		Lat:      resp.Coordinates.Lat,
		Lon:      resp.Coordinates.Lon,
	}
}

// Bucket returns the color bucket of the card's mean, if it has one.
func (c Card) Bucket() (colorscale.Bucket, bool) {
	if c.Mean == nil {
		return colorscale.Bucket{}, false
	}
	return colorscale.Classify(c.Variable, *c.Mean), true
}

var (
	noData    = color.RGBA{156, 163, 175, 255}
	white     = color.RGBA{255, 255, 255, 255}
	lightGray = color.RGBA{200, 200, 210, 255}
)

// Render draws the card and encodes it as PNG. It is safe for concurrent use.
func Render(c Card) ([]byte, error) {
	fs, err := newFaces()
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	drawBackground(img)

	fill := color.Color(noData)
	value := "Aucune donnée"
	if b, ok := c.Bucket(); ok {
		fill = parseHex(b.Color)
		value = strconv.FormatFloat(*c.Mean, 'f', 2, 64) + " " + c.Unit
	}

	drawDisc(img, 130, 150, 80, fill)
	drawText(img, c.Region, 250, 95, white, fs.medium)
	drawText(img, value, 250, 165, white, fs.large)
	drawText(img, c.Label+" · moyenne temporelle", 250, 200, lightGray, fs.small)
	drawText(img, fmt.Sprintf("%.3f, %.3f", c.Lat, c.Lon), 250, 222, lightGray, fs.small)
	drawLegend(img, c.Variable, fs.small)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode map card: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBackground(img *image.RGBA) {
	for y := 0; y < Height; y++ {
		progress := float64(y) / float64(Height)
		r := uint8(20 + progress*10)
		g := uint8(20 + progress*15)
		b := uint8(40 + progress*20)
		for x := 0; x < Width; x++ {
			img.SetRGBA(x, y, color.RGBA{r, g, b, 255})
		}
	}
}

func drawDisc(img *image.RGBA, cx, cy, radius int, col color.Color) {
	r2 := radius * radius
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				img.Set(x, y, col)
			}
		}
	}
}

// drawLegend draws the variable's five buckets as swatches along the bottom.
func drawLegend(img *image.RGBA, v series.Variable, face font.Face) {
	buckets := colorscale.Legend(v)
	if len(buckets) == 0 {
		return
	}
	slot := (Width - 40) / len(buckets)
	for i, b := range buckets {
		x0 := 20 + i*slot
		col := parseHex(b.Color)
		for y := Height - 70; y < Height-54; y++ {
			for x := x0; x < x0+slot-8; x++ {
				img.Set(x, y, col)
			}
		}
		drawText(img, b.Label, x0, Height-32, lightGray, face)
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// parseHex parses "#rrggbb". Malformed input yields the no-data gray.
func parseHex(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return noData
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return noData
	}
	return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}
}
