package roster_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/certledger/certledger/internal/roster"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestParseWorkbookReader(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Name", "Email", "USN", "Department", "Semester", "Year"},
		{"Priya Nair", "PRIYA@Example.edu", "1KS21CS001", "CSE", 5, 2021},
		{"Arun Rao", "arun@example.edu", "1KS21CS002", "CSE", 5, 2021},
	})

	entries, err := roster.ParseWorkbookReader(buf)
	if err != nil {
		t.Fatalf("ParseWorkbookReader() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Email != "priya@example.edu" {
		t.Errorf("Email = %q, want lowercased", entries[0].Email)
	}
	if entries[0].Semester != 5 || entries[0].Year != 2021 {
		t.Errorf("Semester/Year = %d/%d", entries[0].Semester, entries[0].Year)
	}
}

func TestParseWorkbookReader_SkipsRowsWithoutEmail(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Name", "Email"},
		{"No Email", ""},
		{"Has Email", "has@example.edu"},
	})

	entries, err := roster.ParseWorkbookReader(buf)
	if err != nil {
		t.Fatalf("ParseWorkbookReader() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Has Email" {
		t.Errorf("entries = %v", entries)
	}
}

func TestParseWorkbookReader_MissingHeader(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Full Name", "Contact"},
		{"X", "x@example.edu"},
	})

	if _, err := roster.ParseWorkbookReader(buf); err == nil {
		t.Error("expected error for missing name/email header")
	}
}

func TestMemoryDirectory_Lookup(t *testing.T) {
	d := roster.NewMemoryDirectory([]roster.Entry{
		{Name: "Priya Nair", Email: "priya@example.edu"},
	})
	ctx := context.Background()

	name, err := d.Lookup(ctx, "PRIYA@example.edu")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if name != "Priya Nair" {
		t.Errorf("Lookup() = %q", name)
	}

	// Unknown learners fall back to the email.
	name, _ = d.Lookup(ctx, "unknown@example.edu")
	if name != "unknown@example.edu" {
		t.Errorf("Lookup(unknown) = %q", name)
	}
}
