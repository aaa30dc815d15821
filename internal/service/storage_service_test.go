package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/util"
)

func TestLocalStorageUpload(t *testing.T) {
	root := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: root})

	body := "职位,题目\n"
	url, err := svc.Upload(context.Background(), "exports/a/b.csv", strings.NewReader(body), int64(len(body)), util.MimeCSV)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/uploads/exports/a/b.csv" {
		t.Errorf("url = %s", url)
	}
	data, err := os.ReadFile(filepath.Join(root, "exports", "a", "b.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != body {
		t.Errorf("content = %q", data)
	}
}

func TestStorageFallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageMinio, LocalPath: t.TempDir()})
	if _, ok := svc.Provider.(*LocalStorageProvider); !ok {
		t.Errorf("provider = %T, want local fallback", svc.Provider)
	}
}
