package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LabelLayout describes the label geometry. Every field has a default that
// matches the reference label; a YAML file can override any subset.
type LabelLayout struct {
	Brand  string `yaml:"brand"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	MarginX          int     `yaml:"margin_x"`
	HeadlineSize     float64 `yaml:"headline_size"`
	HeadlineBaseline int     `yaml:"headline_baseline"`
	ColorRightInset  int     `yaml:"color_right_inset"`

	BarcodeWidth     int     `yaml:"barcode_width"`
	BarcodeHeight    int     `yaml:"barcode_height"`
	FirstBarcodeY    int     `yaml:"first_barcode_y"`
	SecondBarcodeGap int     `yaml:"second_barcode_gap"`
	CaptionGap       int     `yaml:"caption_gap"`
	CaptionSize      float64 `yaml:"caption_size"`
	CaptionMaxSize   float64 `yaml:"caption_max_size"`
	DNGap            int     `yaml:"dn_gap"`

	QRSize         int     `yaml:"qr_size"`
	QRY            int     `yaml:"qr_y"`
	CircleDiameter int     `yaml:"circle_diameter"`
	CircleStroke   int     `yaml:"circle_stroke"`
	CircleCenterY  int     `yaml:"circle_center_y"`
	MarkSize       float64 `yaml:"mark_size"`
}

// DefaultLabelLayout returns the reference label geometry
func DefaultLabelLayout() LabelLayout {
	return LabelLayout{
		Brand:  "Infinix",
		Width:  650,
		Height: 350,

		MarginX:          30,
		HeadlineSize:     40,
		HeadlineBaseline: 50,
		ColorRightInset:  60,

		BarcodeWidth:     460,
		BarcodeHeight:    60,
		FirstBarcodeY:    70,
		SecondBarcodeGap: 35,
		CaptionGap:       26,
		CaptionSize:      16,
		CaptionMaxSize:   22,
		DNGap:            30,

		QRSize:         150,
		QRY:            65,
		CircleDiameter: 60,
		CircleStroke:   5,
		CircleCenterY:  280,
		MarkSize:       40,
	}
}

// LoadLabelLayout reads YAML overrides on top of the defaults. An empty
// path returns the defaults unchanged.
func LoadLabelLayout(path string) (LabelLayout, error) {
	layout := DefaultLabelLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return layout, fmt.Errorf("failed to read label config: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return layout, fmt.Errorf("failed to parse label config: %w", err)
	}
	return layout, nil
}
