package metadata

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/models"
)

const nextDataTemplate = `<script id="__NEXT_DATA__" type="application/json">%s</script>`

func postPage(body string) string {
	return "<html><head></head><body>" + body + "</body></html>"
}

func TestExtract_FullPage(t *testing.T) {
	html := postPage(`
		<h1 data-e2e="browse-video-desc">  Hello  </h1>
		<a data-e2e="video-location">Lisbon</a>
		<video src="https://cdn.example/v.mp4"></video>` +
		fmt.Sprintf(nextDataTemplate, `{"props":{"pageProps":{"itemInfo":{"itemStruct":{"createTime":1700000000}}}}}`))

	meta, err := Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "  Hello  ", meta.Caption)
	assert.Equal(t, "https://cdn.example/v.mp4", meta.MediaSrc)
	require.NotNil(t, meta.Location)
	assert.Equal(t, "Lisbon", *meta.Location)
	require.NotNil(t, meta.EpochSeconds)
	assert.Equal(t, int64(1700000000), *meta.EpochSeconds)
	assert.Equal(t, "Lisbon", meta.LocationOrDefault())
}

func TestExtract_CaptionKeepsTextContent(t *testing.T) {
	meta, err := Extract(postPage("<h1 data-e2e=\"browse-video-desc\">\n  Line one <b>#tag</b>\n</h1><video src=\"v.mp4\"></video>"))
	require.NoError(t, err)
	assert.Equal(t, "\n  Line one #tag\n", meta.Caption)
}

func TestExtract_EmptyCaptionIsAllowed(t *testing.T) {
	meta, err := Extract(postPage(`<h1 data-e2e="browse-video-desc"></h1><video src="v.mp4"></video>`))
	require.NoError(t, err)
	assert.Equal(t, "", meta.Caption)
}

func TestExtract_MissingCaption(t *testing.T) {
	_, err := Extract(postPage(`<video src="https://cdn.example/v.mp4"></video>`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMetadataMissing))
}

func TestExtract_MissingMediaSource(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no video element", `<h1 data-e2e="browse-video-desc">x</h1>`},
		{"video without src", `<h1 data-e2e="browse-video-desc">x</h1><video></video>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(postPage(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeMetadataMissing))
		})
	}
}

func TestExtract_SourceChildFallback(t *testing.T) {
	html := postPage(`<h1 data-e2e="browse-video-desc">x</h1>
		<video><source src="https://cdn.example/child.mp4" type="video/mp4"></video>`)

	meta, err := Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/child.mp4", meta.MediaSrc)
}

func TestExtract_LocationAbsent(t *testing.T) {
	meta, err := Extract(postPage(`<h1 data-e2e="browse-video-desc">x</h1><video src="v.mp4"></video>`))
	require.NoError(t, err)

	assert.Nil(t, meta.Location)
	assert.Equal(t, models.DefaultLocation, meta.LocationOrDefault())
}

func TestExtract_LocationBlank(t *testing.T) {
	meta, err := Extract(postPage(`<h1 data-e2e="browse-video-desc">x</h1>
		<span data-e2e="video-location">  </span><video src="v.mp4"></video>`))
	require.NoError(t, err)

	require.NotNil(t, meta.Location)
	assert.Equal(t, "N/A", meta.LocationOrDefault())
}

func TestExtract_MalformedPageState(t *testing.T) {
	html := postPage(`<h1 data-e2e="browse-video-desc">x</h1><video src="v.mp4"></video>` +
		fmt.Sprintf(nextDataTemplate, `{"props": {not json`))

	meta, err := Extract(html)
	require.NoError(t, err)
	assert.Nil(t, meta.EpochSeconds)

	date, clock := meta.PostedAt()
	assert.Nil(t, date)
	assert.Nil(t, clock)
}

func TestExtract_PathDoesNotResolve(t *testing.T) {
	html := postPage(`<h1 data-e2e="browse-video-desc">x</h1><video src="v.mp4"></video>` +
		fmt.Sprintf(nextDataTemplate, `{"props":{"pageProps":{}}}`))

	meta, err := Extract(html)
	require.NoError(t, err)
	assert.Nil(t, meta.EpochSeconds)
}

func TestExtract_UniversalDataFallback(t *testing.T) {
	html := postPage(`<h1 data-e2e="browse-video-desc">x</h1><video src="v.mp4"></video>
		<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">` +
		`{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{"createTime":"1700000000"}}}}}` +
		`</script>`)

	meta, err := Extract(html)
	require.NoError(t, err)
	require.NotNil(t, meta.EpochSeconds)
	assert.Equal(t, int64(1700000000), *meta.EpochSeconds)
}

func TestParseCreateTime(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int64
		wantOK bool
	}{
		{"number", `1700000000`, 1700000000, true},
		{"string", `"1700000000"`, 1700000000, true},
		{"float", `1700000000.0`, 1700000000, true},
		{"zero", `0`, 0, false},
		{"negative", `-5`, 0, false},
		{"null", `null`, 0, false},
		{"empty", ``, 0, false},
		{"non numeric string", `"soon"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCreateTime(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPosted(t *testing.T) {
	epoch := int64(1700000000)
	date, clock := FormatPosted(&epoch)

	require.NotNil(t, date)
	require.NotNil(t, clock)
	assert.Equal(t, "2023-11-14", *date)
	assert.Equal(t, "22:13:20", *clock)

	date, clock = FormatPosted(nil)
	assert.Nil(t, date)
	assert.Nil(t, clock)
}

func TestToRecord(t *testing.T) {
	epoch := int64(1700000000)
	meta := &VideoMetadata{Caption: "Hello", MediaSrc: "https://cdn.example/v.mp4", EpochSeconds: &epoch}

	rec := meta.ToRecord("https://www.tiktok.com/@user/video/123")

	assert.Equal(t, "https://www.tiktok.com/@user/video/123", rec.URL)
	assert.Equal(t, "Hello", rec.Caption)
	assert.Equal(t, "N/A", rec.Location)
	assert.Equal(t, "2023-11-14", *rec.DatePosted)
	assert.Equal(t, "22:13:20", *rec.TimePosted)
	assert.True(t, rec.HasPostedAt())
}
