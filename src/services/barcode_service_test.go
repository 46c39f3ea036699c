package services

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ericytex/barcode-gene-backend/src/models"
)

func TestExtractColorFromProduct(t *testing.T) {
	tests := []struct {
		name    string
		product string
		want    string
	}{
		{"storage token", "SMART 8 64+3 SHINY GOLD", "SHINY GOLD"},
		{"storage token single word color", "HOT 40i 128+8 BLACK", "BLACK"},
		{"no storage token falls back to last two words", "GALAXY TIMBER BLUE", "TIMBER BLUE"},
		{"storage token at end falls back to last two words", "SMART 8 64+3", "8 64+3"},
		{"two words ending in storage token", "SMART 64+3", "SMART 64+3"},
		{"lowercase input is uppercased", "smart 8 64+3 shiny gold", "SHINY GOLD"},
		{"single word", "BLACK", "Unknown Color"},
		{"empty", "", "Unknown Color"},
		{"plus without digits is not storage", "A+B CHERRY RED", "CHERRY RED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractColorFromProduct(tt.product))
		})
	}
}

func TestGenerateUniqueIMEI(t *testing.T) {
	used := make(map[string]struct{})

	first := generateUniqueIMEI("123456789012345", used)
	assert.Len(t, first, 15)
	assert.True(t, strings.HasPrefix(first, "12345678"))
	assert.Contains(t, used, first)

	// Collisions against the used set must never repeat
	seen := map[string]struct{}{first: {}}
	for i := 0; i < 200; i++ {
		imei := generateUniqueIMEI("123456789012345", used)
		_, dup := seen[imei]
		assert.False(t, dup, "duplicate second IMEI %s", imei)
		seen[imei] = struct{}{}
	}
}

func TestGenerateUniqueIMEI_ShortBase(t *testing.T) {
	used := make(map[string]struct{})
	imei := generateUniqueIMEI("12345", used)
	assert.True(t, strings.HasPrefix(imei, "12345"))
	assert.Len(t, imei, 12)
}

func TestResolveItems(t *testing.T) {
	bs := &BarcodeService{logger: zerolog.Nop()}

	items := []models.BarcodeItem{
		{IMEI: "123456789012345", Model: "Test Model", BoxID: "BOX001"},
		{IMEI: ""},                       // skipped: empty
		{IMEI: "nan"},                    // skipped: placeholder
		{IMEI: "1234"},                   // skipped: too short
		{IMEI: "223456789012345", Product: "SMART 8 64+3 SHINY GOLD"},
	}

	resolved := bs.resolveItems(items, false, map[string]struct{}{})
	assert.Len(t, resolved, 2)

	first := resolved[0]
	assert.Equal(t, 0, first.index)
	assert.Equal(t, "123456789012345", first.input.IMEI)
	assert.Equal(t, "BOX001", first.input.SecondValue)
	assert.Equal(t, "Box ID", first.input.SecondLabel)
	assert.Equal(t, "Unknown Color", first.input.Color)
	assert.Equal(t, "M8N7", first.input.DN)

	second := resolved[1]
	assert.Equal(t, 4, second.index)
	assert.Equal(t, "Unknown", second.input.Model)
	assert.Equal(t, "SHINY GOLD", second.input.Color)
}

func TestResolveItems_AutoSecondIMEI(t *testing.T) {
	bs := &BarcodeService{logger: zerolog.Nop()}

	items := []models.BarcodeItem{
		{IMEI: "123456789012345"},
		{IMEI: "223456789012345", IMEI2: "999999999999999"},
	}

	resolved := bs.resolveItems(items, true, map[string]struct{}{})
	assert.Len(t, resolved, 2)

	assert.Equal(t, "IMEI", resolved[0].input.SecondLabel)
	assert.True(t, resolved[0].generatedIMEI2)
	assert.True(t, strings.HasPrefix(resolved[0].input.SecondValue, "12345678"))

	// An explicit second IMEI is kept verbatim
	assert.False(t, resolved[1].generatedIMEI2)
	assert.Equal(t, "999999999999999", resolved[1].input.SecondValue)
}

func TestIsNullish(t *testing.T) {
	assert.True(t, isNullish("nan"))
	assert.True(t, isNullish("NaN"))
	assert.True(t, isNullish("None"))
	assert.True(t, isNullish("null"))
	assert.False(t, isNullish("123456789012345"))
	assert.False(t, isNullish(""))
}
