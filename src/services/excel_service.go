package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ericytex/barcode-gene-backend/src/models"
)

// ExcelService turns an uploaded workbook into generation items. Column
// headers vary wildly between suppliers, so each field is resolved through
// a tolerance list of known header spellings.
type ExcelService struct{}

// NewExcelService creates a new Excel service
func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// Column tolerance lists. Matching is case-insensitive and substring-based
// in both directions ("IMEI/SN" matches "imei", "sn" matches "IMEI/SN").
var (
	imeiColumns = []string{
		"imei", "imei/sn", "imei_sn", "serial", "serial_number", "sn", "serial_no",
		"device_id", "device_imei", "phone_imei", "mobile_imei", "imei_number",
	}
	modelColumns = []string{
		"model", "model_name", "device_model", "phone_model", "mobile_model",
		"device_type", "product_model", "model_code",
	}
	productColumns = []string{
		"product", "product_name", "device", "device_name", "phone_name",
		"mobile_name", "product_description", "item_name",
	}
	colorColumns = []string{
		"color", "colour", "device_color", "phone_color", "mobile_color",
		"color_name", "finish", "variant",
	}
	dnColumns = []string{
		"dn", "d/n", "device_number", "device_no", "part_number",
		"part_no", "sku", "item_number",
	}
	boxIDColumns = []string{
		"box_id", "boxid", "box_number", "box_no", "package_id",
		"package_number", "carton_id", "container_id",
	}
	imei2Columns = []string{"imei2", "imei_2", "second_imei"}
)

// ValidateExtension accepts only Excel workbooks
func (es *ExcelService) ValidateExtension(filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return nil
	default:
		return ErrInvalidFileType
	}
}

// ParseFile reads the first sheet of a workbook into barcode items. The
// first row is treated as the header.
func (es *ExcelService) ParseFile(path string) ([]models.BarcodeItem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}

	header := rows[0]
	imeiIdx := matchColumn(header, imeiColumns)
	// No recognizable IMEI header: assume the first column holds it, the
	// way supplier sheets without headers come in.
	if imeiIdx < 0 && len(header) > 0 {
		imeiIdx = 0
	}
	modelIdx := matchColumn(header, modelColumns)
	productIdx := matchColumn(header, productColumns)
	colorIdx := matchColumn(header, colorColumns)
	dnIdx := matchColumn(header, dnColumns)
	boxIDIdx := matchColumn(header, boxIDColumns)
	// IMEI2 binds by exact name only: under the substring rule "imei" is
	// a substring of "imei2", so a fuzzy match would capture the primary
	// IMEI column and suppress second-IMEI generation.
	imei2Idx := matchColumnExact(header, imei2Columns)

	items := make([]models.BarcodeItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item := models.BarcodeItem{
			IMEI:    cell(row, imeiIdx),
			IMEI2:   cell(row, imei2Idx),
			Model:   cell(row, modelIdx),
			Product: cell(row, productIdx),
			Color:   cell(row, colorIdx),
			DN:      cell(row, dnIdx),
			BoxID:   cell(row, boxIDIdx),
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return items, nil
}

// matchColumn finds the first header index matching any candidate name.
// Exact matches win over substring matches so "imei" picks the IMEI
// column even when an IMEI2 column sits before it.
func matchColumn(header []string, candidates []string) int {
	if idx := matchColumnExact(header, candidates); idx >= 0 {
		return idx
	}
	for _, candidate := range candidates {
		for i, col := range header {
			colLower := normalizeHeader(col)
			if colLower == "" {
				continue
			}
			if strings.Contains(colLower, candidate) || strings.Contains(candidate, colLower) {
				return i
			}
		}
	}
	return -1
}

func matchColumnExact(header []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, col := range header {
			if normalizeHeader(col) == candidate {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
