package ir

// Version constants for the record encoding and the directory.
const (
	// RecordVersion is the stored record encoding version.
	RecordVersion = "1"

	// DirectoryVersion is the profiledir version.
	DirectoryVersion = "0.1.0"
)
