package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"tiktoksync/pkg/config"
	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/logger"
	"tiktoksync/pkg/models"
)

// maxPages bounds list pagination against a server that never stops
// returning an offset
const maxPages = 1000

// Client talks to one table of the record store
type Client struct {
	httpClient *http.Client
	apiKey     string
	tableURL   string
	logger     logger.Logger
}

// NewClient creates a record store client for the configured table
func NewClient(cfg *config.AirtableConfig, apiKey string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	base := strings.TrimRight(cfg.APIURL, "/")
	tableURL := fmt.Sprintf("%s/%s/%s", base, url.PathEscape(cfg.BaseID), url.PathEscape(cfg.TableName))

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		apiKey:     apiKey,
		tableURL:   tableURL,
		logger:     log.WithField("component", "airtable"),
	}
}

// ListKnownMediaURLs returns the URL field of every record in the table,
// following pagination until the last page
func (c *Client) ListKnownMediaURLs(ctx context.Context) ([]string, error) {
	var urls []string
	offset := ""

	for page := 0; page < maxPages; page++ {
		resp, err := c.listPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, rec := range resp.Records {
			if rec.Fields.URL != "" {
				urls = append(urls, rec.Fields.URL)
			}
		}

		if resp.Offset == "" {
			c.logger.DebugWithFields("Listed known records", map[string]interface{}{
				"pages": page + 1,
				"urls":  len(urls),
			})
			return urls, nil
		}
		offset = resp.Offset
	}

	return nil, errors.New(errors.ErrorTypeStoreUnavailable,
		fmt.Sprintf("record listing did not finish after %d pages", maxPages))
}

func (c *Client) listPage(ctx context.Context, offset string) (*ListResponse, error) {
	query := url.Values{}
	query.Add("fields[]", FieldURL)
	if offset != "" {
		query.Set("offset", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeStoreUnavailable, err, "failed to build list request")
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeStoreUnavailable, err, "failed to list records")
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, errors.ErrorTypeStoreUnavailable); err != nil {
		return nil, err
	}

	var page ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeStoreUnavailable, err, "failed to decode record list")
	}
	return &page, nil
}

// CreateRecord appends a record with media attached as a file part of a
// single multipart request. The part is named after rec.MediaPath.
func (c *Client) CreateRecord(ctx context.Context, rec *models.VideoRecord, media io.Reader) error {
	fields, err := json.Marshal(CreateFields{
		URL:         rec.URL,
		DatePosted:  rec.DatePosted,
		TimePosted:  rec.TimePosted,
		Attachments: rec.URL,
		Caption:     rec.Caption,
		Location:    rec.Location,
	})
	if err != nil {
		return errors.Wrap(errors.ErrorTypeStoreWrite, err, "failed to encode record fields")
	}

	body, contentType := multipartBody(fields, filepath.Base(rec.MediaPath), media)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL, body)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeStoreWrite, err, "failed to build create request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.doRequest(req)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeStoreWrite, err, "failed to create record")
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, errors.ErrorTypeStoreWrite); err != nil {
		return err
	}

	var created Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err == nil && created.ID != "" {
		c.logger.InfoWithFields("Record created", map[string]interface{}{
			"record_id": created.ID,
			"url":       rec.URL,
		})
	}
	return nil
}

// multipartBody streams the field map and the media file through a pipe so
// the file is never held in memory
func multipartBody(fields []byte, filename string, media io.Reader) (io.Reader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeParts(writer, fields, filename, media)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType()
}

func writeParts(w *multipart.Writer, fields []byte, filename string, media io.Reader) error {
	if err := w.WriteField("fields", string(fields)); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, media)
	return err
}

func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method": req.Method,
			"url":    c.tableURL,
			"error":  err.Error(),
		})
		return nil, err
	}

	logger.LogRequest(c.logger, req.Method, c.tableURL, resp.StatusCode, time.Since(start))
	return resp, nil
}

// checkResponseStatus maps a non-2xx response to a typed error carrying
// the API's own message when it sent one
func (c *Client) checkResponseStatus(resp *http.Response, errType errors.ErrorType) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	var apiErr APIError
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); err == nil && json.Unmarshal(data, &apiErr) == nil {
		if apiErr.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", apiErr.Error.Type, apiErr.Error.Message)
		} else if apiErr.Error.Type != "" {
			msg = apiErr.Error.Type
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		msg = "authentication failed: " + msg
	case http.StatusNotFound:
		msg = "table not found: " + msg
	case http.StatusUnprocessableEntity:
		msg = "record rejected: " + msg
	}

	return errors.New(errType, msg).WithCode(resp.StatusCode)
}
