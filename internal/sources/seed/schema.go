package seed

import "time"

// File is the top-level structure of a seed YAML file.
type File struct {
	Users        []UserEntry     `yaml:"users"`
	CustomFrames []FrameEntry    `yaml:"custom_frames"`
	Bookmarks    []BookmarkEntry `yaml:"bookmarks,omitempty"`
}

type UserEntry struct {
	ID      int64  `yaml:"id"`
	Email   string `yaml:"email"`
	Deleted bool   `yaml:"deleted,omitempty"`
}

type FrameEntry struct {
	ID        int64     `yaml:"id"`
	OwnerID   int64     `yaml:"owner_id"`
	Title     string    `yaml:"title"`
	URL       string    `yaml:"url"`
	Shared    bool      `yaml:"shared"`
	Deleted   bool      `yaml:"deleted,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

type BookmarkEntry struct {
	UserID        int64 `yaml:"user_id"`
	CustomFrameID int64 `yaml:"custom_frame_id"`
}
