package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericytex/barcode-gene-backend/src/database"
	"github.com/ericytex/barcode-gene-backend/src/models"
)

func newTestBarcodeService(t *testing.T, tdb *database.TestDB) (*BarcodeService, string, string) {
	t.Helper()
	root := t.TempDir()
	barcodeDir := filepath.Join(root, "barcodes")
	pdfDir := filepath.Join(root, "pdfs")
	logsDir := filepath.Join(root, "logs")
	archiveDir := filepath.Join(root, "archive")
	for _, dir := range []string{barcodeDir, pdfDir, logsDir, archiveDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	renderer, err := NewLabelRenderer(DefaultLabelLayout())
	require.NoError(t, err)

	pdf := NewPDFService(tdb.DB, barcodeDir, pdfDir)
	archive := NewArchiveService(tdb.DB, barcodeDir, pdfDir, archiveDir)
	bs := NewBarcodeService(tdb.DB, renderer, pdf, archive, barcodeDir, logsDir, 2)
	return bs, barcodeDir, logsDir
}

func TestGenerate_FullPipeline(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		bs, barcodeDir, logsDir := newTestBarcodeService(t, tdb)
		ctx := context.Background()

		items := []models.BarcodeItem{
			{IMEI: "123456789012345", Model: "SMART 8", Product: "SMART 8 64+3 SHINY GOLD"},
			{IMEI: "223456789012345", Model: "HOT 40i", BoxID: "BOX002"},
		}

		result, err := bs.Generate(ctx, items, GenerateOptions{
			CreatePDF:      true,
			AutoSecondIMEI: true,
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(result.SessionID, "session_"))
		require.Len(t, result.Files, 2)
		assert.NotEmpty(t, result.PDFFile)

		for _, name := range result.Files {
			assert.True(t, strings.HasPrefix(name, "barcode_label_"))
			_, err := os.Stat(filepath.Join(barcodeDir, name))
			assert.NoError(t, err, "label %s should exist on disk", name)
		}

		// Generated second IMEIs are logged for uniqueness across runs
		logData, err := os.ReadFile(filepath.Join(logsDir, "imei_log.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(logData), "123456789012345")

		// Session summary persisted with the PDF counted
		sessions, err := tdb.DB.GetRecentSessions(ctx, 10)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, result.SessionID, sessions[0].SessionID)
		assert.Equal(t, 2, sessions[0].PNGCount)
		assert.Equal(t, 1, sessions[0].PDFCount)
		assert.Equal(t, 3, sessions[0].TotalFiles)

		files, err := tdb.DB.GetFilesBySession(ctx, result.SessionID)
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})
}

func TestGenerate_NoUsableItems(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		bs, _, _ := newTestBarcodeService(t, tdb)

		items := []models.BarcodeItem{
			{IMEI: ""},
			{IMEI: "nan"},
			{IMEI: "12"},
		}

		_, err := bs.Generate(context.Background(), items, GenerateOptions{AutoSecondIMEI: true})
		assert.ErrorIs(t, err, ErrNoBarcodesGenerated)
	})
}

func TestGenerate_CanceledContext(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		bs, _, _ := newTestBarcodeService(t, tdb)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := bs.Generate(ctx, []models.BarcodeItem{
			{IMEI: "123456789012345"},
		}, GenerateOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGenerate_ArchivesPreviousRun(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		bs, barcodeDir, _ := newTestBarcodeService(t, tdb)
		ctx := context.Background()

		// A leftover label from an earlier run
		require.NoError(t, os.WriteFile(filepath.Join(barcodeDir, "barcode_label_old_1.png"), []byte("old"), 0o644))

		result, err := bs.Generate(ctx, []models.BarcodeItem{
			{IMEI: "123456789012345", Model: "SMART 8"},
		}, GenerateOptions{AutoSecondIMEI: false})
		require.NoError(t, err)

		assert.Equal(t, 1, result.ArchivedCount)

		// The old label is gone from the active directory
		_, err = os.Stat(filepath.Join(barcodeDir, "barcode_label_old_1.png"))
		assert.True(t, os.IsNotExist(err))
	})
}
