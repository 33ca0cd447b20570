package p4

import (
	"strconv"
	"strings"
	"time"

	"github.com/chmouel/p4status/internal/models"
	"github.com/chmouel/p4status/internal/ztag"
)

// isoLayout matches the offset form "+00:00" used for UTC timestamps.
const isoLayout = "2006-01-02T15:04:05-07:00"

// ParseInfo converts `p4 -ztag info` output into ServerInfo.
func ParseInfo(text string) models.ServerInfo {
	rec := ztag.ParseInfo(text)
	return models.ServerInfo{
		Server: rec.Lookup("serverAddress"),
		Client: rec.Lookup("clientName"),
		User:   rec.Lookup("userName"),
		Host:   rec.Lookup("clientHost"),
	}
}

// ParseOpened converts `p4 -ztag opened` output into entries.
func ParseOpened(text string) []models.OpenedFile {
	records := ztag.ParseRecords(text, "depotFile")
	entries := make([]models.OpenedFile, 0, len(records))
	for _, rec := range records {
		entries = append(entries, BuildOpenedFile(rec))
	}
	return entries
}

// ParseChanges converts `p4 -ztag changes` output into changes.
func ParseChanges(text string) []models.Change {
	records := ztag.ParseRecords(text, "change")
	changes := make([]models.Change, 0, len(records))
	for _, rec := range records {
		changes = append(changes, BuildChange(rec))
	}
	return changes
}

// BuildOpenedFile promotes a raw opened record. Missing keys stay nil.
func BuildOpenedFile(rec ztag.Record) models.OpenedFile {
	file, _ := rec.Get("depotFile")
	return models.OpenedFile{
		File:   file,
		User:   rec.Lookup("user"),
		Client: rec.Lookup("client"),
		Host:   rec.Lookup("host"),
		Action: rec.Lookup("action"),
		Change: rec.Lookup("change"),
		Type:   rec.Lookup("type"),
	}
}

// BuildChange promotes a raw changes record.
func BuildChange(rec ztag.Record) models.Change {
	change := models.Change{
		Change: rec.Lookup("change"),
		User:   rec.Lookup("user"),
		Client: rec.Lookup("client"),
	}

	if raw, ok := rec.Get("time"); ok {
		change.TimeEpoch, change.TimeISO = parseEpoch(raw)
	}

	desc, _ := rec.Get("desc")
	change.Description = firstLine(desc)
	return change
}

// parseEpoch returns nil, nil for empty or non-numeric input.
func parseEpoch(raw string) (*int64, *string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	epoch, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, nil
	}
	iso := time.Unix(epoch, 0).UTC().Format(isoLayout)
	return &epoch, &iso
}

func firstLine(desc string) string {
	desc = strings.ReplaceAll(desc, "\r", "")
	line, _, _ := strings.Cut(desc, "\n")
	return line
}
