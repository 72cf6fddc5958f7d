package models

// Sort directions accepted by list queries.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Pagination bounds. DefaultLimit applies when the caller sends none; MaxLimit
// is a hard ceiling that no input can exceed.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// ListOptions carries pagination and sorting for list queries.
type ListOptions struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}
