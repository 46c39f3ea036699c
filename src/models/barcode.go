package models

// FileType identifies what kind of artifact a database row describes
type FileType string

const (
	FileTypePNG FileType = "png"
	FileTypePDF FileType = "pdf"
)

// BarcodeItem is one unit of generation input: a device to print a label for.
// Excel rows and JSON payload entries both normalize into this shape.
type BarcodeItem struct {
	IMEI    string `json:"imei"`
	IMEI2   string `json:"imei2,omitempty"`
	BoxID   string `json:"box_id,omitempty"`
	Model   string `json:"model,omitempty"`
	Product string `json:"product,omitempty"`
	Color   string `json:"color,omitempty"`
	DN      string `json:"dn,omitempty"`
}

// BarcodeRecord is the persisted metadata for a generated file
type BarcodeRecord struct {
	ID                int64    `json:"id"`
	Filename          string   `json:"filename"`
	FilePath          string   `json:"file_path"`
	ArchivePath       string   `json:"archive_path"`
	FileType          FileType `json:"file_type"`
	FileSize          int64    `json:"file_size"`
	CreatedAt         string   `json:"created_at"`
	ArchivedAt        string   `json:"archived_at"`
	GenerationSession string   `json:"generation_session"`
	IMEI              string   `json:"imei,omitempty"`
	BoxID             string   `json:"box_id,omitempty"`
	Model             string   `json:"model,omitempty"`
	Product           string   `json:"product,omitempty"`
	Color             string   `json:"color,omitempty"`
	DN                string   `json:"dn,omitempty"`
}

// GenerationSession summarizes one generation run
type GenerationSession struct {
	ID            int64  `json:"id"`
	SessionID     string `json:"session_id"`
	CreatedAt     string `json:"created_at"`
	TotalFiles    int    `json:"total_files"`
	PNGCount      int    `json:"png_count"`
	PDFCount      int    `json:"pdf_count"`
	TotalSize     int64  `json:"total_size"`
	ExcelFilename string `json:"excel_filename,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ArchiveStatistics aggregates the metadata store
type ArchiveStatistics struct {
	TotalFiles    int   `json:"total_files"`
	PNGCount      int   `json:"png_count"`
	PDFCount      int   `json:"pdf_count"`
	TotalSize     int64 `json:"total_size"`
	TotalSessions int   `json:"total_sessions"`
}
