package services

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLabelLayout_EmptyPathReturnsDefaults(t *testing.T) {
	layout, err := LoadLabelLayout("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLabelLayout(), layout)
}

func TestLoadLabelLayout_YAMLOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brand: Tecno\nwidth: 800\nqr_size: 200\n"), 0o644))

	layout, err := LoadLabelLayout(path)
	require.NoError(t, err)

	assert.Equal(t, "Tecno", layout.Brand)
	assert.Equal(t, 800, layout.Width)
	assert.Equal(t, 200, layout.QRSize)
	// Untouched fields keep their defaults
	assert.Equal(t, 350, layout.Height)
	assert.Equal(t, 460, layout.BarcodeWidth)
}

func TestLoadLabelLayout_MissingFile(t *testing.T) {
	_, err := LoadLabelLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLabelRenderer_RenderToFile(t *testing.T) {
	renderer, err := NewLabelRenderer(DefaultLabelLayout())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "label.png")
	size, err := renderer.RenderToFile(renderInput{
		IMEI:        "123456789012345",
		SecondValue: "123456781234567",
		SecondLabel: "IMEI",
		Model:       "SMART 8",
		Color:       "SHINY GOLD",
		DN:          "M8N7",
	}, path)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)

	layout := DefaultLabelLayout()
	bounds := img.Bounds()
	assert.Equal(t, layout.Width, bounds.Dx())
	assert.Equal(t, layout.Height, bounds.Dy())
}
