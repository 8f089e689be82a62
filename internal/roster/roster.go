// Package roster imports student rosters from spreadsheet workbooks and
// resolves learner emails to display names.
package roster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Entry is one student row from a roster workbook.
type Entry struct {
	Name       string
	Email      string
	USN        string
	Department string
	Semester   int
	Year       int
}

// Directory resolves a learner email to a display name.
type Directory interface {
	Lookup(ctx context.Context, email string) (string, error)
}

// MemoryDirectory is an in-memory Directory keyed by lowercased email.
type MemoryDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMemoryDirectory builds a directory from roster entries. A nil slice
// yields an empty directory.
func NewMemoryDirectory(entries []Entry) *MemoryDirectory {
	d := &MemoryDirectory{names: make(map[string]string, len(entries))}
	for _, e := range entries {
		d.Add(e)
	}
	return d
}

// Add inserts or replaces one roster entry.
func (d *MemoryDirectory) Add(e Entry) {
	email := strings.ToLower(strings.TrimSpace(e.Email))
	if email == "" {
		return
	}
	d.mu.Lock()
	d.names[email] = e.Name
	d.mu.Unlock()
}

// Lookup returns the display name for an email. Unknown emails fall back
// to the email itself so credential issuance never blocks on the roster.
func (d *MemoryDirectory) Lookup(_ context.Context, email string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if name, ok := d.names[strings.ToLower(strings.TrimSpace(email))]; ok && name != "" {
		return name, nil
	}
	return email, nil
}

// rosterHeader maps expected column headers to Entry fields. Matching is
// case-insensitive on the first sheet row.
var rosterHeader = []string{"name", "email", "usn", "department", "semester", "year"}

// ParseWorkbook reads roster entries from an xlsx workbook at path.
func ParseWorkbook(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()
	return parse(f, path)
}

// ParseWorkbookReader reads roster entries from xlsx data in r.
func ParseWorkbookReader(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()
	return parse(f, "reader")
}

func parse(f *excelize.File, source string) ([]Entry, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("roster workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("roster sheet %q has no data rows", sheet)
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for i, row := range rows[1:] {
		e := Entry{
			Name:       cell(row, cols["name"]),
			Email:      strings.ToLower(cell(row, cols["email"])),
			USN:        cell(row, cols["usn"]),
			Department: cell(row, cols["department"]),
		}
		if e.Email == "" {
			slog.Warn("skipping roster row without email", "row", i+2)
			continue
		}
		e.Semester, _ = strconv.Atoi(cell(row, cols["semester"]))
		e.Year, _ = strconv.Atoi(cell(row, cols["year"]))
		entries = append(entries, e)
	}

	slog.Info("roster imported", "source", source, "entries", len(entries))
	return entries, nil
}

// headerIndex locates each expected column in the header row. Name and
// email are mandatory; the rest are optional.
func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(rosterHeader))
	for _, want := range rosterHeader {
		cols[want] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	if cols["name"] < 0 || cols["email"] < 0 {
		return nil, fmt.Errorf("roster header must include name and email columns")
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
