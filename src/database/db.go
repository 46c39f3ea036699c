package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/ericytex/barcode-gene-backend/src/models"
)

// Database holds the embedded SQLite connection
type Database struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS barcode_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	file_path TEXT NOT NULL,
	archive_path TEXT NOT NULL,
	file_type TEXT NOT NULL CHECK (file_type IN ('png', 'pdf')),
	file_size INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	archived_at TEXT NOT NULL,
	generation_session TEXT NOT NULL,
	imei TEXT,
	box_id TEXT,
	model TEXT,
	product TEXT,
	color TEXT,
	dn TEXT,
	created_timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS generation_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT UNIQUE NOT NULL,
	created_at TEXT NOT NULL,
	total_files INTEGER NOT NULL,
	png_count INTEGER NOT NULL,
	pdf_count INTEGER NOT NULL,
	total_size INTEGER NOT NULL,
	excel_filename TEXT,
	notes TEXT,
	created_timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_filename ON barcode_files(filename);
CREATE INDEX IF NOT EXISTS idx_file_type ON barcode_files(file_type);
CREATE INDEX IF NOT EXISTS idx_generation_session ON barcode_files(generation_session);
CREATE INDEX IF NOT EXISTS idx_created_at ON barcode_files(created_at);
CREATE INDEX IF NOT EXISTS idx_session_id ON generation_sessions(session_id);
`

// New opens (creating if necessary) the database file and initializes the schema
func New(ctx context.Context, path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return d, nil
}

// NewFromDB wraps an existing connection (used by tests with :memory:)
func NewFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// initializeSchema creates tables and indexes
func (d *Database) initializeSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	log.Debug().Msg("database schema initialized")
	return nil
}

// InitSchema initializes the schema on a wrapped connection
func (d *Database) InitSchema(ctx context.Context) error {
	return d.initializeSchema(ctx)
}

// Health checks if the database is reachable
func (d *Database) Health(ctx context.Context) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return d.db.PingContext(ctx)
}

// InsertBarcodeRecord inserts a new barcode file record and returns its ID
func (d *Database) InsertBarcodeRecord(ctx context.Context, rec *models.BarcodeRecord) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO barcode_files (
			filename, file_path, archive_path, file_type, file_size,
			created_at, archived_at, generation_session, imei, box_id,
			model, product, color, dn
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Filename, rec.FilePath, rec.ArchivePath, string(rec.FileType), rec.FileSize,
		rec.CreatedAt, rec.ArchivedAt, rec.GenerationSession, rec.IMEI, rec.BoxID,
		rec.Model, rec.Product, rec.Color, rec.DN,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert barcode record: %w", err)
	}
	return res.LastInsertId()
}

// InsertGenerationSession inserts a session summary row and returns its ID
func (d *Database) InsertGenerationSession(ctx context.Context, s *models.GenerationSession) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO generation_sessions (
			session_id, created_at, total_files, png_count, pdf_count,
			total_size, excel_filename, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.CreatedAt, s.TotalFiles, s.PNGCount, s.PDFCount,
		s.TotalSize, s.ExcelFilename, s.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation session: %w", err)
	}
	return res.LastInsertId()
}

// GetAllFiles returns all barcode file records, newest first
func (d *Database) GetAllFiles(ctx context.Context) ([]models.BarcodeRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, filename, file_path, archive_path, file_type, file_size,
		       created_at, archived_at, generation_session, imei, box_id,
		       model, product, color, dn
		FROM barcode_files
		ORDER BY created_timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query barcode files: %w", err)
	}
	defer rows.Close()

	return scanBarcodeRecords(rows)
}

// GetFilesBySession returns all file records from one generation session
func (d *Database) GetFilesBySession(ctx context.Context, sessionID string) ([]models.BarcodeRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, filename, file_path, archive_path, file_type, file_size,
		       created_at, archived_at, generation_session, imei, box_id,
		       model, product, color, dn
		FROM barcode_files
		WHERE generation_session = ?
		ORDER BY created_timestamp DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session files: %w", err)
	}
	defer rows.Close()

	return scanBarcodeRecords(rows)
}

// GetFileByFilename returns a single record or sql.ErrNoRows
func (d *Database) GetFileByFilename(ctx context.Context, filename string) (*models.BarcodeRecord, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, filename, file_path, archive_path, file_type, file_size,
		       created_at, archived_at, generation_session, imei, box_id,
		       model, product, color, dn
		FROM barcode_files
		WHERE filename = ?
		LIMIT 1`, filename)

	rec, err := scanBarcodeRecord(row)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecentSessions returns up to limit recent generation sessions
func (d *Database) GetRecentSessions(ctx context.Context, limit int) ([]models.GenerationSession, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, session_id, created_at, total_files, png_count, pdf_count,
		       total_size, excel_filename, notes
		FROM generation_sessions
		ORDER BY created_timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.GenerationSession
	for rows.Next() {
		var s models.GenerationSession
		var excel, notes sql.NullString
		if err := rows.Scan(&s.ID, &s.SessionID, &s.CreatedAt, &s.TotalFiles,
			&s.PNGCount, &s.PDFCount, &s.TotalSize, &excel, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.ExcelFilename = excel.String
		s.Notes = notes.String
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetStatistics aggregates counts and sizes across the store
func (d *Database) GetStatistics(ctx context.Context) (*models.ArchiveStatistics, error) {
	stats := &models.ArchiveStatistics{}

	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN file_type = 'png' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN file_type = 'pdf' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(file_size), 0)
		FROM barcode_files`).
		Scan(&stats.TotalFiles, &stats.PNGCount, &stats.PDFCount, &stats.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate files: %w", err)
	}

	err = d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_sessions`).
		Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	return stats, nil
}

// UpdateArchivePath records where a file was archived to
func (d *Database) UpdateArchivePath(ctx context.Context, filename, archivePath, archivedAt string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE barcode_files
		SET archive_path = ?, archived_at = ?
		WHERE filename = ?`, archivePath, archivedAt, filename)
	if err != nil {
		return fmt.Errorf("failed to update archive path: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBarcodeRecord(row rowScanner) (*models.BarcodeRecord, error) {
	var rec models.BarcodeRecord
	var fileType string
	var imei, boxID, model, product, color, dn sql.NullString
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.FilePath, &rec.ArchivePath,
		&fileType, &rec.FileSize, &rec.CreatedAt, &rec.ArchivedAt,
		&rec.GenerationSession, &imei, &boxID, &model, &product, &color, &dn); err != nil {
		return nil, err
	}
	rec.FileType = models.FileType(fileType)
	rec.IMEI = imei.String
	rec.BoxID = boxID.String
	rec.Model = model.String
	rec.Product = product.String
	rec.Color = color.String
	rec.DN = dn.String
	return &rec, nil
}

func scanBarcodeRecords(rows *sql.Rows) ([]models.BarcodeRecord, error) {
	var records []models.BarcodeRecord
	for rows.Next() {
		rec, err := scanBarcodeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan barcode record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
