package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"imagevault/internal/auth"
	"imagevault/internal/model"
	"imagevault/internal/service"
)

type uploadRequest struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Type      string `json:"type"`
	Thumbnail bool   `json:"thumbnail"`
}

func (r uploadRequest) contentType() string {
	if r.MimeType != "" {
		return r.MimeType
	}
	return r.Type
}

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type uploadPairResponse struct {
	OriginalURL  string `json:"originalUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	OriginalKey  string `json:"originalKey"`
	ThumbnailKey string `json:"thumbnailKey"`
}

type metadataRequest struct {
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	MimeType      string `json:"mimeType"`
	UserID        string `json:"userId"`
	StoragePath   string `json:"storagePath"`
	ThumbnailPath string `json:"thumbnailPath"`
}

type metadataResponse struct {
	Message string             `json:"message"`
	Image   *model.ImageRecord `json:"image"`
}

type downloadResponse struct {
	URL string `json:"url"`
}

type deleteRequest struct {
	Images []model.ImageRecord `json:"images"`
}

type deleteResponse struct {
	Message            string   `json:"message"`
	DeletedObjects     []string `json:"deletedObjects"`
	UnconfirmedObjects []string `json:"unconfirmedObjects"`
}

// IssueUploadURL godoc
// @Summary      Presign an upload
// @Description  Returns a presigned PUT URL for the original and, when thumbnail is set, for its thumbnail
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      uploadRequest  true  "file description"
// @Success      200   {object}  uploadPairResponse
// @Failure      400   {object}  errorPayload
// @Failure      401   {object}  errorPayload
// @Failure      413   {object}  errorPayload
// @Router       /upload [post]
func IssueUploadURL(svc service.PresignService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		urls, err := svc.IssueUploadURL(c.UserContext(), service.UploadURLRequest{
			UserID:        auth.UserID(c),
			Filename:      req.Filename,
			Size:          req.Size,
			MimeType:      req.contentType(),
			WithThumbnail: req.Thumbnail,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		if urls.ThumbnailURL == "" {
			return c.JSON(uploadResponse{URL: urls.URL, Key: urls.Key})
		}
		return c.JSON(uploadPairResponse{
			OriginalURL:  urls.URL,
			ThumbnailURL: urls.ThumbnailURL,
			OriginalKey:  urls.Key,
			ThumbnailKey: urls.ThumbnailKey,
		})
	}
}

// RegisterMetadata godoc
// @Summary      Register uploaded image
// @Description  Persists metadata after both objects were uploaded
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      metadataRequest  true  "image metadata"
// @Success      201   {object}  metadataResponse
// @Failure      400   {object}  errorPayload
// @Failure      401   {object}  errorPayload
// @Failure      403   {object}  errorPayload
// @Failure      409   {object}  errorPayload
// @Failure      500   {object}  errorPayload
// @Router       /upload-metadata [post]
func RegisterMetadata(svc service.RegistrarService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req metadataRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		userID := auth.UserID(c)
		if req.UserID != "" && req.UserID != userID {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "user mismatch")
		}

		mime := req.Type
		if mime == "" {
			mime = req.MimeType
		}
		rec, err := svc.Register(c.UserContext(), service.RegisterInput{
			UserID:        userID,
			Filename:      req.Filename,
			Size:          req.Size,
			MimeType:      mime,
			StoragePath:   req.StoragePath,
			ThumbnailPath: req.ThumbnailPath,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(metadataResponse{Message: "image metadata saved", Image: rec})
	}
}

// IssueDownloadURL godoc
// @Summary      Presign a download
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        path          query     string  false  "object key"
// @Param        storage_path  query     string  false  "object key (alias)"
// @Success      200           {object}  downloadResponse
// @Failure      400           {object}  errorPayload
// @Failure      401           {object}  errorPayload
// @Failure      403           {object}  errorPayload
// @Router       /download [get]
func IssueDownloadURL(svc service.PresignService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Query("path")
		if key == "" {
			key = c.Query("storage_path")
		}
		if key == "" {
			return writeError(c, fiber.StatusBadRequest, "PATH_REQUIRED", "path is required")
		}

		url, err := svc.IssueDownloadURL(c.UserContext(), auth.UserID(c), key)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(downloadResponse{URL: url})
	}
}

// ListImages godoc
// @Summary      List image metadata
// @Description  Newest first, fixed page size
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "page number, starting at 1"
// @Success      200   {object}  service.PageResult
// @Failure      400   {object}  errorPayload
// @Failure      401   {object}  errorPayload
// @Router       /download-metadata [get]
func ListImages(svc service.GalleryService, pageSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}

		res, err := svc.List(c.UserContext(), auth.UserID(c), page, pageSize)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteImages godoc
// @Summary      Delete images
// @Description  Removes metadata first, then the original and thumbnail objects
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteRequest  true  "records to delete"
// @Success      200   {object}  deleteResponse
// @Failure      400   {object}  errorPayload
// @Failure      401   {object}  errorPayload
// @Failure      404   {object}  errorPayload
// @Router       /delete [post]
func DeleteImages(svc service.DeletionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deleteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.DeleteImages(c.UserContext(), auth.UserID(c), req.Images)
		if err != nil {
			return writeServiceError(c, err)
		}

		unconfirmed := res.Unconfirmed
		if unconfirmed == nil {
			unconfirmed = []string{}
		}
		deleted := res.DeletedObjects
		if deleted == nil {
			deleted = []string{}
		}
		return c.JSON(deleteResponse{
			Message:            fmt.Sprintf("successfully deleted %d objects", len(deleted)),
			DeletedObjects:     deleted,
			UnconfirmedObjects: unconfirmed,
		})
	}
}
