package models

// DefaultLocation is stored when a post declares no location
const DefaultLocation = "N/A"

// VideoRecord is one row appended to the record store. URL is the dedup key.
// DatePosted and TimePosted are both set or both nil.
type VideoRecord struct {
	URL        string
	Caption    string
	Location   string
	DatePosted *string
	TimePosted *string

	// MediaPath is the local file attached to the create request
	MediaPath string
	MediaSize int64
}

// HasPostedAt reports whether the post timestamp was available
func (r *VideoRecord) HasPostedAt() bool {
	return r.DatePosted != nil && r.TimePosted != nil
}
