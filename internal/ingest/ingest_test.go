package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"emotionagg/internal/store"
)

type mockStore struct {
	stored []store.SlotPayload
	failOn string
}

func (m *mockStore) PutSlot(ctx context.Context, p store.SlotPayload) error {
	if p.TimeBlock == m.failOn {
		return errors.New("forced error")
	}
	m.stored = append(m.stored, p)
	return nil
}

func writeFile(t *testing.T, root string, parts ...string) {
	t.Helper()
	contents := parts[len(parts)-1]
	path := filepath.Join(append([]string{root}, parts[:len(parts)-1]...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "device-1", "2025-06-26", "07-00.json", `{"emotion_scores": {"hap": 0.5}}`)
	writeFile(t, root, "device-1", "2025-06-26", "07-30.json", `{"features_timeline": []}`)
	writeFile(t, root, "device-1", "2025-06-27", "00-00.json", `{"emotion_scores": {"sad": 0.5}}`)
	writeFile(t, root, "device-2", "2025-06-26", "12-00.json", `{"emotion_scores": {"neu": 1.0}}`)
	writeFile(t, root, "device-1", "2025-06-26", "07-15.json", `{}`)
	writeFile(t, root, "device-1", "notes.json", `{}`)
	writeFile(t, root, "device-1", "2025-06-26", "README.md", "ignored")
	return root
}

func TestRun_Basic(t *testing.T) {
	root := testTree(t)
	db := &mockStore{}

	result, err := Run(context.Background(), []string{root}, db, Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PayloadsStored != 4 {
		t.Fatalf("expected 4 payloads stored, got %d", result.PayloadsStored)
	}
	if result.FilesSkipped != 2 {
		t.Fatalf("expected 2 files skipped, got %d", result.FilesSkipped)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	var found bool
	for _, p := range db.stored {
		if p.Subject == "device-1" && p.Date == "2025-06-26" && p.TimeBlock == "07-00" {
			found = true
			scores, ok := p.Body["emotion_scores"].(map[string]any)
			if !ok || scores["hap"] != 0.5 {
				t.Fatalf("unexpected body: %v", p.Body)
			}
		}
	}
	if !found {
		t.Fatalf("expected device-1 07-00 payload")
	}
}

func TestRun_Filters(t *testing.T) {
	root := testTree(t)
	db := &mockStore{}

	result, err := Run(context.Background(), []string{root}, db, Options{Subject: "device-1", Date: "2025-06-26"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PayloadsStored != 2 {
		t.Fatalf("expected 2 payloads stored, got %d", result.PayloadsStored)
	}
	for _, p := range db.stored {
		if p.Subject != "device-1" || p.Date != "2025-06-26" {
			t.Fatalf("filter leaked %+v", p)
		}
	}
}

func TestRun_Exclude(t *testing.T) {
	root := testTree(t)
	db := &mockStore{}

	result, err := Run(context.Background(), []string{root}, db, Options{Exclude: []string{filepath.Join(root, "device-2")}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PayloadsStored != 3 {
		t.Fatalf("expected 3 payloads stored, got %d", result.PayloadsStored)
	}
}

func TestRun_CollectsErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "device-1", "2025-06-26", "07-00.json", `{"emotion_scores": `)
	writeFile(t, root, "device-1", "2025-06-26", "08-00.json", `{"emotion_scores": {"hap": 0.5}}`)
	writeFile(t, root, "device-1", "2025-06-26", "09-00.json", `{"emotion_scores": {"hap": 0.5}}`)
	db := &mockStore{failOn: "08-00"}

	result, err := Run(context.Background(), []string{root}, db, Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PayloadsStored != 1 {
		t.Fatalf("expected 1 payload stored, got %d", result.PayloadsStored)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
}

func TestRun_MissingRoot(t *testing.T) {
	if _, err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, &mockStore{}, Options{}, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSlotFromPath(t *testing.T) {
	root := filepath.Join("data", "accounts")
	tests := []struct {
		path    string
		subject string
		date    string
		slot    string
		ok      bool
	}{
		{filepath.Join(root, "u1", "2025-06-26", "23-30.json"), "u1", "2025-06-26", "23-30", true},
		{filepath.Join(root, "u1", "2025-06-26", "24-00.json"), "", "", "", false},
		{filepath.Join(root, "u1", "26-06-2025", "07-00.json"), "", "", "", false},
		{filepath.Join(root, "u1", "2025-06-26", "extra", "07-00.json"), "", "", "", false},
	}
	for _, tt := range tests {
		subject, date, slot, ok := slotFromPath(root, tt.path)
		if ok != tt.ok || subject != tt.subject || date != tt.date || slot != tt.slot {
			t.Fatalf("slotFromPath(%s) = %q %q %q %v", tt.path, subject, date, slot, ok)
		}
	}
}
