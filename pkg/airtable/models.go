package airtable

// Field names in the target table
const (
	FieldURL         = "URL"
	FieldDatePosted  = "DatePosted"
	FieldTimePosted  = "TimePosted"
	FieldAttachments = "Attachments"
	FieldCaption     = "Caption"
	FieldLocation    = "Location"
)

// ListResponse is one page of the list-records endpoint
type ListResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// Record is a single table row
type Record struct {
	ID          string       `json:"id"`
	CreatedTime string       `json:"createdTime,omitempty"`
	Fields      RecordFields `json:"fields"`
}

// RecordFields are the columns read back when listing. Only URL is used.
type RecordFields struct {
	URL string `json:"URL"`
}

// CreateFields is the field map sent on create. DatePosted and TimePosted
// serialise as null when the post timestamp is unknown.
type CreateFields struct {
	URL         string  `json:"URL"`
	DatePosted  *string `json:"DatePosted"`
	TimePosted  *string `json:"TimePosted"`
	Attachments string  `json:"Attachments"`
	Caption     string  `json:"Caption"`
	Location    string  `json:"Location"`
}

// APIError is the error envelope the API returns on failure
type APIError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
