package metadata

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/models"
	"tiktoksync/pkg/tiktok"
)

const (
	// CaptionSelector matches the video description element
	CaptionSelector = "h1[data-e2e='browse-video-desc']"

	// LocationSelector matches the optional location element
	LocationSelector = "[data-e2e='video-location']"

	// VideoSelector matches the primary media element
	VideoSelector = "video"

	// DateLayout and TimeLayout render the post timestamp in UTC
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// VideoMetadata holds everything read from a loaded post page.
// Location and EpochSeconds are nil when the page does not carry them.
type VideoMetadata struct {
	Caption      string  `json:"caption"`
	Location     *string `json:"location,omitempty"`
	MediaSrc     string  `json:"media_src"`
	EpochSeconds *int64  `json:"epoch_seconds,omitempty"`
}

// Extract parses a post page snapshot and reads its metadata
func Extract(html string) (*VideoMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeMetadataMissing, err, "failed to parse post page")
	}
	return ExtractFromDocument(doc)
}

// ExtractFromDocument reads metadata from an already parsed post page.
// A missing caption element or media source is fatal; missing location or
// timestamp are not.
func ExtractFromDocument(doc *goquery.Document) (*VideoMetadata, error) {
	captionSel := doc.Find(CaptionSelector).First()
	if captionSel.Length() == 0 {
		return nil, errors.New(errors.ErrorTypeMetadataMissing, "caption element not found on post page")
	}

	mediaSrc := mediaSource(doc)
	if mediaSrc == "" {
		return nil, errors.New(errors.ErrorTypeMetadataMissing, "video source not found on post page")
	}

	meta := &VideoMetadata{
		Caption:      captionSel.Text(),
		MediaSrc:     mediaSrc,
		EpochSeconds: createTime(doc),
	}

	if loc := doc.Find(LocationSelector).First(); loc.Length() > 0 {
		text := loc.Text()
		meta.Location = &text
	}

	return meta, nil
}

// LocationOrDefault returns the declared location, or models.DefaultLocation
// when none was found or it is blank
func (m *VideoMetadata) LocationOrDefault() string {
	if m.Location == nil || strings.TrimSpace(*m.Location) == "" {
		return models.DefaultLocation
	}
	return *m.Location
}

// PostedAt returns the formatted date and time of the post, both nil when
// the timestamp was not found
func (m *VideoMetadata) PostedAt() (date, clock *string) {
	return FormatPosted(m.EpochSeconds)
}

// ToRecord builds the record for a post URL from the extracted metadata
func (m *VideoMetadata) ToRecord(postURL string) *models.VideoRecord {
	date, clock := m.PostedAt()
	return &models.VideoRecord{
		URL:        postURL,
		Caption:    m.Caption,
		Location:   m.LocationOrDefault(),
		DatePosted: date,
		TimePosted: clock,
	}
}

// FormatPosted renders epoch seconds as UTC date and time strings
func FormatPosted(epoch *int64) (date, clock *string) {
	if epoch == nil {
		return nil, nil
	}
	t := time.Unix(*epoch, 0).UTC()
	d := t.Format(DateLayout)
	c := t.Format(TimeLayout)
	return &d, &c
}

// ParseCreateTime decodes a createTime value served either as a JSON number
// or as a numeric string. Non-positive values count as missing.
func ParseCreateTime(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
	} else {
		text = string(raw)
	}

	epoch, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		// some pages serialise the number as a float
		f, ferr := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if ferr != nil {
			return 0, false
		}
		epoch = int64(f)
	}
	if epoch <= 0 {
		return 0, false
	}
	return epoch, true
}

func mediaSource(doc *goquery.Document) string {
	video := doc.Find(VideoSelector).First()
	if video.Length() == 0 {
		return ""
	}
	if src, ok := video.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	if src, ok := video.Find("source[src]").First().Attr("src"); ok {
		return strings.TrimSpace(src)
	}
	return ""
}

func createTime(doc *goquery.Document) *int64 {
	if script := doc.Find(tiktok.NextDataSelector).First(); script.Length() > 0 {
		var data tiktok.NextData
		if err := json.Unmarshal([]byte(script.Text()), &data); err == nil {
			if epoch, ok := ParseCreateTime(data.Props.PageProps.ItemInfo.ItemStruct.CreateTime); ok {
				return &epoch
			}
		}
	}

	if script := doc.Find(tiktok.UniversalDataSelector).First(); script.Length() > 0 {
		var data tiktok.UniversalData
		if err := json.Unmarshal([]byte(script.Text()), &data); err == nil {
			if item, ok := data.VideoDetailItem(); ok {
				if epoch, ok := ParseCreateTime(item.CreateTime); ok {
					return &epoch
				}
			}
		}
	}

	return nil
}
