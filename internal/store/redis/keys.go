package redis

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// KeyFrameBookmarks is the sorted set of frame popularity scores.
	KeyFrameBookmarks = "custom_frame_bookmarks"
	// KeyPrefixHotSlot is the prefix of the hot snapshot hashes (hot_custom_frame:1..4).
	KeyPrefixHotSlot = "hot_custom_frame:"
)

// Hash fields of a hot slot.
const (
	FieldFrameID           = "custom_frame_id"
	FieldFrameTitle        = "custom_frame_title"
	FieldFrameURL          = "custom_frame_url"
	FieldBookmarks         = "bookmarks"
	FieldBookmarksSnapshot = "bookmarks_snapshot"
)

// HotSlotKey returns the Redis key of a 1-based hot rank.
func HotSlotKey(rank int) string {
	return KeyPrefixHotSlot + strconv.Itoa(rank)
}

// ParseMember converts a sorted-set member back to a frame id.
func ParseMember(member string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(member), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame member %q: %w", member, err)
	}
	return id, nil
}
