package services

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LabelRenderer composes a device label image: model and color headline,
// two Code128 barcodes with captions, a D/N line, an IMEI QR code and the
// circled "A" conformity mark.
type LabelRenderer struct {
	layout  LabelLayout
	regular *opentype.Font
	bold    *opentype.Font
}

// renderInput is one fully resolved label: column mapping, color
// extraction and IMEI2 selection have already happened.
type renderInput struct {
	IMEI        string
	SecondValue string // IMEI2 or Box ID, may be empty
	SecondLabel string // caption prefix for the second barcode
	Model       string
	Color       string
	DN          string
}

// NewLabelRenderer parses the embedded fonts once and validates the layout
func NewLabelRenderer(layout LabelLayout) (*LabelRenderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	return &LabelRenderer{layout: layout, regular: regular, bold: bold}, nil
}

// Render draws the label and returns it as an RGBA image
func (lr *LabelRenderer) Render(in renderInput) (*image.RGBA, error) {
	l := lr.layout

	img := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	headline, err := lr.face(lr.bold, l.HeadlineSize)
	if err != nil {
		return nil, err
	}
	defer headline.Close()

	// Model top-left, color top-right
	drawString(img, headline, in.Model, l.MarginX, l.HeadlineBaseline)
	colorText := strings.ToUpper(in.Color)
	colorWidth := textWidth(headline, colorText)
	drawString(img, headline, colorText, l.Width-colorWidth-l.ColorRightInset, l.HeadlineBaseline)

	// First barcode: IMEI
	y := l.FirstBarcodeY
	if err := lr.drawCode128(img, in.IMEI, l.MarginX, y); err != nil {
		return nil, fmt.Errorf("failed to encode IMEI barcode: %w", err)
	}
	y += l.BarcodeHeight + l.CaptionGap
	if err := lr.drawCaption(img, "IMEI", in.IMEI, l.MarginX, y); err != nil {
		return nil, err
	}

	// Second barcode: IMEI2 or Box ID
	if in.SecondValue != "" {
		y += l.SecondBarcodeGap
		if err := lr.drawCode128(img, in.SecondValue, l.MarginX, y); err != nil {
			return nil, fmt.Errorf("failed to encode second barcode: %w", err)
		}
		y += l.BarcodeHeight + l.CaptionGap
		if err := lr.drawCaption(img, in.SecondLabel, in.SecondValue, l.MarginX, y); err != nil {
			return nil, err
		}

		// D/N line below the second caption
		y += l.DNGap
		caption, err := lr.face(lr.bold, l.CaptionSize)
		if err != nil {
			return nil, err
		}
		value, err := lr.face(lr.regular, l.CaptionSize)
		if err != nil {
			caption.Close()
			return nil, err
		}
		dnLabel := "D/N:"
		drawString(img, caption, dnLabel, l.MarginX, y)
		drawString(img, value, in.DN, l.MarginX+textWidth(caption, dnLabel)+5, y)
		caption.Close()
		value.Close()
	}

	// QR code on the right, IMEI payload only
	qrCode, err := qr.Encode(in.IMEI, qr.L, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	scaledQR, err := barcode.Scale(qrCode, l.QRSize, l.QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR: %w", err)
	}
	qrPos := image.Pt(l.Width-l.QRSize, l.QRY)
	draw.Draw(img, image.Rectangle{Min: qrPos, Max: qrPos.Add(image.Pt(l.QRSize, l.QRSize))},
		scaledQR, scaledQR.Bounds().Min, draw.Src)

	// Circled "A" mark under the QR code
	cx := l.Width - l.QRSize/2
	cy := l.CircleCenterY
	drawRing(img, cx, cy, l.CircleDiameter/2, l.CircleStroke)

	mark, err := lr.face(lr.bold, l.MarkSize)
	if err != nil {
		return nil, err
	}
	defer mark.Close()
	markWidth := textWidth(mark, "A")
	metrics := mark.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	drawString(img, mark, "A", cx-markWidth/2, cy+(ascent-descent)/2)

	return img, nil
}

// RenderToFile renders the label and writes it as a PNG
func (lr *LabelRenderer) RenderToFile(in renderInput, path string) (int64, error) {
	img, err := lr.Render(in)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create label file: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return 0, fmt.Errorf("failed to encode label: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// drawCode128 encodes value and pastes it scaled to the layout's barcode box
func (lr *LabelRenderer) drawCode128(img *image.RGBA, value string, x, y int) error {
	bc, err := code128.Encode(value)
	if err != nil {
		return err
	}
	scaled, err := barcode.Scale(bc, lr.layout.BarcodeWidth, lr.layout.BarcodeHeight)
	if err != nil {
		return err
	}
	pos := image.Pt(x, y)
	draw.Draw(img, image.Rectangle{Min: pos, Max: pos.Add(image.Pt(lr.layout.BarcodeWidth, lr.layout.BarcodeHeight))},
		scaled, scaled.Bounds().Min, draw.Src)
	return nil
}

// drawCaption writes "<label> <value>" under a barcode, sized so the text
// spans roughly the barcode width (bold label, regular value)
func (lr *LabelRenderer) drawCaption(img *image.RGBA, label, value string, x, baseline int) error {
	size := lr.fitCaptionSize(label + " " + value)

	boldFace, err := lr.face(lr.bold, size)
	if err != nil {
		return err
	}
	defer boldFace.Close()
	regularFace, err := lr.face(lr.regular, size)
	if err != nil {
		return err
	}
	defer regularFace.Close()

	drawString(img, boldFace, label, x, baseline)
	drawString(img, regularFace, value, x+textWidth(boldFace, label)+5, baseline)
	return nil
}

// fitCaptionSize scales the caption font so the text fills the barcode width
func (lr *LabelRenderer) fitCaptionSize(text string) float64 {
	base := lr.layout.CaptionSize
	probe, err := lr.face(lr.bold, base)
	if err != nil {
		return base
	}
	defer probe.Close()

	w := textWidth(probe, text)
	if w <= 0 {
		return base
	}
	size := base * float64(lr.layout.BarcodeWidth) / float64(w)
	if size > lr.layout.CaptionMaxSize {
		size = lr.layout.CaptionMaxSize
	}
	if size < base {
		size = base
	}
	return size
}

func (lr *LabelRenderer) face(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func drawString(dst *image.RGBA, face font.Face, s string, x, baseline int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawRing paints a circle outline of the given stroke width
func drawRing(img *image.RGBA, cx, cy, radius, stroke int) {
	outer := radius * radius
	inner := (radius - stroke) * (radius - stroke)
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			d := (x-cx)*(x-cx) + (y-cy)*(y-cy)
			if d <= outer && d >= inner {
				img.Set(x, y, color.Black)
			}
		}
	}
}
