package model

// RunRecord is the analytics export row of one terminal run. Timestamp is
// UnixMicro so the column maps to a BigQuery TIMESTAMP.
type RunRecord struct {
	Run       Run    `json:"run"`
	Report    Report `json:"report"`
	Timestamp int64  `json:"timestamp"`
}
