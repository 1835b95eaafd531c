package model

// RowError records why one CSV row could not be imported. Line is 1-based with the header on line 1.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult is the outcome of a bulk risk import
type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}
