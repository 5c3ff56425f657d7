package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestAttachmentKeyLayout(t *testing.T) {
	itemID := uuid.MustParse("3f2a1f64-0000-0000-0000-000000000001")

	key := AttachmentKey(itemID, "pdf", "paper.pdf")
	want := "attachments/3f2a1f64-0000-0000-0000-000000000001/pdf_paper.pdf"
	if key != want {
		t.Fatalf("AttachmentKey: got %q, want %q", key, want)
	}
	if !strings.HasPrefix(key, ItemPrefix(itemID)) {
		t.Fatalf("ItemPrefix: %q does not cover %q", ItemPrefix(itemID), key)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(testLogger(t), t.TempDir(), "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	itemID := uuid.New()
	key := AttachmentKey(itemID, "pdf", "paper.pdf")

	if err := store.Upload(ctx, key, strings.NewReader("content")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	r, err := store.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("Download: got %q", data)
	}

	// Re-uploading the same key replaces the file.
	if err := store.Replace(ctx, key, strings.NewReader("newer")); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	r, err = store.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download after replace: %v", err)
	}
	data, _ = io.ReadAll(r)
	r.Close()
	if string(data) != "newer" {
		t.Fatalf("Replace: got %q", data)
	}

	other := AttachmentKey(itemID, "snapshot", "page.html")
	if err := store.Upload(ctx, other, strings.NewReader("x")); err != nil {
		t.Fatalf("Upload (second): %v", err)
	}
	if err := store.DeletePrefix(ctx, ItemPrefix(itemID)); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if _, err := store.Download(ctx, key); err == nil {
		t.Fatalf("Download after DeletePrefix: expected error")
	}
	if _, err := store.Download(ctx, other); err == nil {
		t.Fatalf("Download after DeletePrefix (second): expected error")
	}

	if got := store.PublicURL(key); got != "http://localhost:8080/files/"+key {
		t.Fatalf("PublicURL: got %q", got)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(testLogger(t), t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := store.Upload(ctx, "../outside.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("Upload: expected error for escaping key")
	}
	if _, err := store.Download(ctx, "/etc/passwd"); err == nil {
		t.Fatalf("Download: expected error for absolute key")
	}
}
