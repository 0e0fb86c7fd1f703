package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a seed file from disk.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the seed file.
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks ids and references.
func (f *File) Validate() error {
	users := make(map[int64]bool, len(f.Users))
	for _, u := range f.Users {
		if u.ID <= 0 {
			return fmt.Errorf("user %q: id must be > 0", u.Email)
		}
		if users[u.ID] {
			return fmt.Errorf("duplicate user id %d", u.ID)
		}
		users[u.ID] = true
	}

	frames := make(map[int64]bool, len(f.CustomFrames))
	for _, fr := range f.CustomFrames {
		if fr.ID <= 0 {
			return fmt.Errorf("custom frame %q: id must be > 0", fr.Title)
		}
		if frames[fr.ID] {
			return fmt.Errorf("duplicate custom frame id %d", fr.ID)
		}
		if !users[fr.OwnerID] {
			return fmt.Errorf("custom frame %d: unknown owner %d", fr.ID, fr.OwnerID)
		}
		frames[fr.ID] = true
	}

	for _, b := range f.Bookmarks {
		if !users[b.UserID] || !frames[b.CustomFrameID] {
			return fmt.Errorf("bookmark (%d, %d): unknown user or custom frame", b.UserID, b.CustomFrameID)
		}
	}
	return nil
}
