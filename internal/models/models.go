// Package models defines the data objects shared across p4status packages.
package models

// ServerInfo describes the server connection reported by `p4 info`.
type ServerInfo struct {
	Server *string `json:"server"`
	Client *string `json:"client"`
	User   *string `json:"user"`
	Host   *string `json:"host"`
}

// OpenedFile is one workspace's claim on a depot file, from `p4 opened -a`.
type OpenedFile struct {
	File   string  `json:"file"`
	User   *string `json:"user"`
	Client *string `json:"client"`
	Host   *string `json:"host"`
	Action *string `json:"action"`
	Change *string `json:"change"`
	Type   *string `json:"type"`
	Locked bool    `json:"locked"` // Filled by a separate lock query
}

// Change is a changelist summary from `p4 changes`.
type Change struct {
	Change      *string `json:"change"`
	User        *string `json:"user"`
	Client      *string `json:"client"`
	TimeEpoch   *int64  `json:"time_epoch"`
	TimeISO     *string `json:"time_iso"`
	Description string  `json:"description"` // First line only
}

// ConflictGroup lists every opened entry for a file opened more than once.
type ConflictGroup struct {
	File    string       `json:"file"`
	Entries []OpenedFile `json:"entries"`
}

// Section is a bounded view over a report list.
type Section[T any] struct {
	Total   int  `json:"total"`
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// EmptySection returns a zero-count section whose items encode as [].
func EmptySection[T any]() Section[T] {
	return Section[T]{Items: []T{}}
}

// Metadata describes how and when a report was produced.
type Metadata struct {
	Path        string `json:"path"`
	Limit       int    `json:"limit"`
	GeneratedAt string `json:"generated_at"`
	ServerInfo
}
