package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagevault/internal/model"
	"imagevault/internal/service"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "tok", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestIssueUploadURL(t *testing.T) {
	t.Run("pair", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/upload", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a.png", body["filename"])
			assert.Equal(t, "image/png", body["mimeType"])
			assert.Equal(t, true, body["thumbnail"])
			assert.NotContains(t, body, "userId")

			writeJSON(w, http.StatusOK, map[string]string{
				"originalUrl":  "https://s/o",
				"originalKey":  "u1/a.png",
				"thumbnailUrl": "https://s/t",
				"thumbnailKey": "u1/thumbnails/thumb-a.png",
			})
		})

		urls, err := c.IssueUploadURL(context.Background(), service.UploadURLRequest{
			UserID: "u1", Filename: "a.png", Size: 3, MimeType: "image/png", WithThumbnail: true,
		})

		require.NoError(t, err)
		assert.Equal(t, &service.UploadURLs{
			Key: "u1/a.png", URL: "https://s/o",
			ThumbnailKey: "u1/thumbnails/thumb-a.png", ThumbnailURL: "https://s/t",
		}, urls)
	})

	t.Run("single", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"url": "https://s/o", "key": "u1/a.png"})
		})

		urls, err := c.IssueUploadURL(context.Background(), service.UploadURLRequest{Filename: "a.png"})

		require.NoError(t, err)
		assert.Equal(t, "u1/a.png", urls.Key)
		assert.Empty(t, urls.ThumbnailURL)
	})

	t.Run("envelope error", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"request_id": "rid-1",
				"error":      map[string]string{"code": "FILE_TOO_LARGE", "message": "file too large"},
			})
		})

		_, err := c.IssueUploadURL(context.Background(), service.UploadURLRequest{Filename: "a.png"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.Status)
		assert.Equal(t, "FILE_TOO_LARGE", apiErr.Code)
		assert.Equal(t, "rid-1", apiErr.RequestID)
		assert.ErrorIs(t, err, service.ErrPayloadTooLarge)
	})
}

func TestRegister(t *testing.T) {
	created := &model.ImageRecord{ID: "id-1", UserID: "u1", Filename: "a.png", StoragePath: "u1/a.png"}

	t.Run("created", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/upload-metadata", r.URL.Path)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "u1", body["userId"])
			assert.Equal(t, "image/png", body["type"])
			assert.Equal(t, "u1/thumbnails/thumb-a.png", body["thumbnailPath"])

			writeJSON(w, http.StatusCreated, map[string]any{"message": "ok", "image": created})
		})

		rec, err := c.Register(context.Background(), service.RegisterInput{
			UserID: "u1", Filename: "a.png", Size: 3, MimeType: "image/png",
			StoragePath: "u1/a.png", ThumbnailPath: "u1/thumbnails/thumb-a.png",
		})

		require.NoError(t, err)
		assert.Equal(t, created, rec)
	})

	t.Run("duplicate", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": map[string]string{"code": "DUPLICATE_IMAGE", "message": "exists"},
			})
		})

		_, err := c.Register(context.Background(), service.RegisterInput{UserID: "u1", Filename: "a.png"})

		assert.ErrorIs(t, err, service.ErrDuplicateImage)
	})
}

func TestListImages(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, map[string]any{
			"images":      []model.ImageRecord{{ID: "id-1"}},
			"totalPages":  3,
			"currentPage": 2,
		})
	})

	res, err := c.ListImages(context.Background(), 2)

	require.NoError(t, err)
	assert.Len(t, res.Images, 1)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 2, res.CurrentPage)
}

func TestDownloadURL(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1/a b.png", r.URL.Query().Get("path"))
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://s/get"})
	})

	u, err := c.DownloadURL(context.Background(), "u1/a b.png")

	require.NoError(t, err)
	assert.Equal(t, "https://s/get", u)
}

func TestDeleteImages(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []model.ImageRecord `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Images, 1)
		writeJSON(w, http.StatusOK, DeleteResponse{
			Message:            "successfully deleted 2 objects",
			DeletedObjects:     []string{"u1/a.png", "u1/thumbnails/thumb-a.png"},
			UnconfirmedObjects: []string{},
		})
	})

	res, err := c.DeleteImages(context.Background(), []model.ImageRecord{{ID: "id-1"}})

	require.NoError(t, err)
	assert.Len(t, res.DeletedObjects, 2)
	assert.Empty(t, res.UnconfirmedObjects)
}

func TestAPIError_NonEnvelopeBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := c.ListImages(context.Background(), 1)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
	assert.Nil(t, errors.Unwrap(apiErr))
	assert.Equal(t, "api: status 502", apiErr.Error())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, "", time.Second)

	_, err := c.DownloadURL(context.Background(), "u1/a.png")

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
