package api

// MenuItem is one recognized line of a scanned menu.
type MenuItem struct {
	Original    string `json:"original"`
	Reading     string `json:"reading,omitempty"`
	Translation string `json:"translation"`
	Notes       string `json:"notes,omitempty"`
	Price       string `json:"price,omitempty"`
}

// Scan is one stored scan result. CreatedAt is seconds since the epoch.
type Scan struct {
	ID             string     `json:"id"`
	TargetLanguage string     `json:"targetLanguage,omitempty"`
	SourceText     string     `json:"sourceText,omitempty"`
	Items          []MenuItem `json:"items"`
	CreatedAt      int64      `json:"createdAt"`
}

// ScanRequest is the body of POST /api/scan. Image is the photographed
// menu, base64-encoded without a data-URL prefix.
type ScanRequest struct {
	Image          string `json:"image"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

type ScanResponse struct {
	Success bool `json:"success"`
	Scan    Scan `json:"scan"`
}

type HistoryResponse struct {
	Success bool   `json:"success"`
	Scans   []Scan `json:"scans"`
}
