// Package ztag parses the tagged output produced by `p4 -ztag`.
//
// Every data line has the form "... key value". Lines without the "... "
// prefix (continuation lines of multi-line values, blank lines, banners) are
// ignored, so the parser never fails on unexpected input.
package ztag

import "strings"

// Prefix marks a tagged line.
const Prefix = "... "

// Record is an ordered string-keyed map built from consecutive tagged lines.
// Keys keep the order of their first occurrence; a repeated key overwrites
// the earlier value in place.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{values: map[string]string{}}
}

// Set stores value under key.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = map[string]string{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key and whether it was present.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Lookup returns a pointer to a copy of the value, or nil when key is absent.
func (r Record) Lookup(key string) *string {
	v, ok := r.values[key]
	if !ok {
		return nil
	}
	return &v
}

// Keys returns the record keys in first-seen order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of distinct keys.
func (r Record) Len() int {
	return len(r.keys)
}

// splitLine extracts key and value from a tagged line.
func splitLine(line string) (key, value string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, Prefix) {
		return "", "", false
	}
	key, value, _ = strings.Cut(line[len(Prefix):], " ")
	return key, value, true
}

// ParseInfo flattens all tagged lines of text into a single record.
func ParseInfo(text string) Record {
	rec := NewRecord()
	for line := range strings.SplitSeq(text, "\n") {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		rec.Set(key, value)
	}
	return rec
}

// ParseRecords splits text into records, starting a new one each time
// startKey appears. Tagged lines seen before the first startKey are dropped.
func ParseRecords(text, startKey string) []Record {
	records := []Record{}
	var current *Record

	for line := range strings.SplitSeq(text, "\n") {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		if key == startKey {
			if current != nil {
				records = append(records, *current)
			}
			rec := NewRecord()
			rec.Set(key, value)
			current = &rec
			continue
		}
		if current == nil {
			continue
		}
		current.Set(key, value)
	}
	if current != nil {
		records = append(records, *current)
	}
	return records
}
