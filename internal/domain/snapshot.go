package domain

// SnapshotRecord is one materialized rank of the hot snapshot.
//
// Records are written by the refresher and read back verbatim by the hot-list reader.
// A slot that was never written reads back with Populated == false.
type SnapshotRecord struct {
	Rank int

	CustomFrameID     int64
	Title             string
	URL               string
	Bookmarks         int64 // durable count at refresh time
	BookmarksSnapshot int64 // counter score at refresh time

	Populated bool
}
