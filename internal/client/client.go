// Package client talks to the imagevault HTTP API on behalf of the CLI.
//
// Client satisfies the upload coordinator's URLIssuer and MetadataRegistrar, so the same
// coordinator runs against in-process services in tests and against a server in production.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"imagevault/internal/model"
	"imagevault/internal/service"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// codeErrors lets callers classify API failures with the service sentinels.
var codeErrors = map[string]error{
	"UNAUTHORIZED":     service.ErrUnauthenticated,
	"FILE_TOO_LARGE":   service.ErrPayloadTooLarge,
	"UNSUPPORTED_TYPE": service.ErrUnsupportedType,
	"INVALID_FILENAME": service.ErrInvalidFilename,
	"PATH_MISMATCH":    service.ErrPathMismatch,
	"INVALID_INPUT":    service.ErrInvalidInput,
	"FORBIDDEN":        service.ErrForbiddenKey,
	"DUPLICATE_IMAGE":  service.ErrDuplicateImage,
	"BUCKET_NOT_FOUND": service.ErrBucketNotFound,
}

// Unwrap returns the service sentinel matching Code, if any.
func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}

// DeleteResponse mirrors the /delete response body.
type DeleteResponse struct {
	Message            string   `json:"message"`
	DeletedObjects     []string `json:"deletedObjects"`
	UnconfirmedObjects []string `json:"unconfirmedObjects"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client with an otelhttp-instrumented transport.
func New(baseURL, token string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, token, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewWithHTTPClient returns a client using hc for every request.
func NewWithHTTPClient(baseURL, token string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

type uploadBody struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Thumbnail bool   `json:"thumbnail"`
}

// uploadReply accepts both the single and the paired /upload response.
type uploadReply struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	OriginalURL  string `json:"originalUrl"`
	OriginalKey  string `json:"originalKey"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ThumbnailKey string `json:"thumbnailKey"`
}

// IssueUploadURL asks the server for presigned PUT URLs. req.UserID is ignored; the server
// takes identity from the bearer token.
func (c *Client) IssueUploadURL(ctx context.Context, req service.UploadURLRequest) (*service.UploadURLs, error) {
	var reply uploadReply
	err := c.do(ctx, http.MethodPost, "/upload", uploadBody{
		Filename:  req.Filename,
		Size:      req.Size,
		MimeType:  req.MimeType,
		Thumbnail: req.WithThumbnail,
	}, &reply)
	if err != nil {
		return nil, err
	}

	if reply.OriginalURL != "" {
		return &service.UploadURLs{
			Key:          reply.OriginalKey,
			URL:          reply.OriginalURL,
			ThumbnailKey: reply.ThumbnailKey,
			ThumbnailURL: reply.ThumbnailURL,
		}, nil
	}
	return &service.UploadURLs{Key: reply.Key, URL: reply.URL}, nil
}

type metadataBody struct {
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	UserID        string `json:"userId,omitempty"`
	StoragePath   string `json:"storagePath"`
	ThumbnailPath string `json:"thumbnailPath"`
}

// Register records uploaded objects through /upload-metadata.
func (c *Client) Register(ctx context.Context, in service.RegisterInput) (*model.ImageRecord, error) {
	var reply struct {
		Image *model.ImageRecord `json:"image"`
	}
	err := c.do(ctx, http.MethodPost, "/upload-metadata", metadataBody{
		Filename:      in.Filename,
		Size:          in.Size,
		Type:          in.MimeType,
		UserID:        in.UserID,
		StoragePath:   in.StoragePath,
		ThumbnailPath: in.ThumbnailPath,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return reply.Image, nil
}

// ListImages fetches one page of the caller's gallery.
func (c *Client) ListImages(ctx context.Context, page int) (*service.PageResult, error) {
	var res service.PageResult
	if err := c.do(ctx, http.MethodGet, "/download-metadata?page="+strconv.Itoa(page), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DownloadURL returns a presigned GET URL for key.
func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	var reply struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/download?path="+url.QueryEscape(key), nil, &reply); err != nil {
		return "", err
	}
	return reply.URL, nil
}

// DeleteImages removes records and their objects.
func (c *Client) DeleteImages(ctx context.Context, records []model.ImageRecord) (*DeleteResponse, error) {
	var res DeleteResponse
	body := struct {
		Images []model.ImageRecord `json:"images"`
	}{Images: records}
	if err := c.do(ctx, http.MethodPost, "/delete", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		RequestID string `json:"request_id"`
		Error     struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && !errors.Is(err, io.EOF) {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}
	apiErr.Code = envelope.Error.Code
	apiErr.Message = envelope.Error.Message
	apiErr.RequestID = envelope.RequestID
	return apiErr
}
