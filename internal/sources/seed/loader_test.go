package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/inframe/internal/store/memory"
)

const validSeed = `---
users:
  - id: 1
    email: owner@example.com
  - id: 2
    email: fan@example.com
custom_frames:
  - id: 10
    owner_id: 1
    title: Sunset
    url: https://cdn.example.com/frames/10.png
    shared: true
    created_at: 2024-05-01T12:00:00Z
  - id: 11
    owner_id: 1
    title: Draft
    url: https://cdn.example.com/frames/11.png
    shared: false
bookmarks:
  - user_id: 2
    custom_frame_id: 10
  - user_id: 1
    custom_frame_id: 10
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	f, err := NewLoader(writeSeed(t, validSeed)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Users) != 2 || len(f.CustomFrames) != 2 || len(f.Bookmarks) != 2 {
		t.Errorf("Load() = %d users, %d frames, %d bookmarks", len(f.Users), len(f.CustomFrames), len(f.Bookmarks))
	}
	if f.CustomFrames[0].CreatedAt.Year() != 2024 {
		t.Errorf("created_at not parsed: %v", f.CustomFrames[0].CreatedAt)
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid yaml", "users: [", "failed to parse"},
		{"unknown owner", "users:\n  - id: 1\ncustom_frames:\n  - id: 5\n    owner_id: 9\n", "unknown owner"},
		{"duplicate user", "users:\n  - id: 1\n  - id: 1\n", "duplicate user"},
		{"dangling bookmark", "users:\n  - id: 1\nbookmarks:\n  - user_id: 1\n    custom_frame_id: 3\n", "unknown user or custom frame"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeSeed(t, tt.content)).Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestApply(t *testing.T) {
	f, err := NewLoader(writeSeed(t, validSeed)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := memory.NewStore()
	f.Apply(s)

	frame, err := s.GetFrame(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetFrame() error = %v", err)
	}
	if frame.Bookmarks != 2 {
		t.Errorf("Bookmarks = %d, want 2", frame.Bookmarks)
	}

	listed, _ := s.ListFrames(context.Background(), "latest")
	if len(listed) != 1 {
		t.Errorf("ListFrames() returned %d frames, want 1 shared", len(listed))
	}
}
