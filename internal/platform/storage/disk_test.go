package storage

import (
	"context"
	"strings"
	"testing"
)

func TestBuildKeyUniquePerCall(t *testing.T) {
	first := BuildKey("receipt.pdf")
	second := BuildKey("receipt.pdf")
	if first == second {
		t.Fatal("expected distinct keys for the same filename")
	}
	if !strings.HasSuffix(first, "_receipt.pdf") {
		t.Fatalf("expected key to keep the original name, got %s", first)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName("../../etc/passwd"); got != "passwd" {
		t.Fatalf("expected path to be stripped, got %s", got)
	}
	if got := SanitizeFileName("  "); got != "document.bin" {
		t.Fatalf("expected fallback name, got %s", got)
	}
	if got := SanitizeFileName("time\x00sheet.xlsx"); got != "timesheet.xlsx" {
		t.Fatalf("expected null bytes removed, got %s", got)
	}
}

func TestDiskSaveAndRead(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locator, err := disk.Save(context.Background(), BuildKey("hours.csv"), []byte("5,100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := disk.Read(context.Background(), locator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "5,100" {
		t.Fatalf("unexpected content: %s", data)
	}
}

func TestDiskReadMissing(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := disk.Read(context.Background(), "no-such-file"); err == nil {
		t.Fatal("expected error for missing locator")
	}
}
