package models

// GenerateRequest is the JSON body of the generate endpoint
type GenerateRequest struct {
	Items                  []BarcodeItem `json:"items"`
	CreatePDF              bool          `json:"create_pdf"`
	PDFGridCols            int           `json:"pdf_grid_cols"`
	PDFGridRows            int           `json:"pdf_grid_rows"`
	AutoGenerateSecondIMEI *bool         `json:"auto_generate_second_imei"`
}

// AutoSecondIMEI resolves the pointer field to its documented default (true)
func (r *GenerateRequest) AutoSecondIMEI() bool {
	if r.AutoGenerateSecondIMEI == nil {
		return true
	}
	return *r.AutoGenerateSecondIMEI
}

// GenerationResponse reports the outcome of a generation run
type GenerationResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	GeneratedFiles []string `json:"generated_files"`
	PDFFile        *string  `json:"pdf_file"`
	TotalItems     int      `json:"total_items"`
}

// FileListResponse lists generated files on disk
type FileListResponse struct {
	Success    bool     `json:"success"`
	Files      []string `json:"files"`
	TotalCount int      `json:"total_count"`
}
