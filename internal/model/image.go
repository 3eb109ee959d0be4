package model

import (
	"errors"
	"strings"
	"time"
)

// ImageRecord is the persisted metadata for one uploaded image.
// StoragePath and ThumbnailPath are always the derivation of UserID and Filename.
type ImageRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Filename      string    `json:"filename"`
	Size          int64     `json:"size"`
	MimeType      string    `json:"mime_type"`
	StoragePath   string    `json:"storage_path"`
	ThumbnailPath string    `json:"thumbnail_path"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	thumbnailDir    = "thumbnails"
	thumbnailPrefix = "thumb-"
)

// ErrInvalidFilename is returned for names that would escape or collide inside the user namespace.
var ErrInvalidFilename = errors.New("invalid filename")

// StoragePath returns the object key of the original image: {userID}/{filename}.
func StoragePath(userID, filename string) string {
	return userID + "/" + filename
}

// ThumbnailPath returns the object key of the thumbnail: {userID}/thumbnails/thumb-{filename}.
func ThumbnailPath(userID, filename string) string {
	return userID + "/" + thumbnailDir + "/" + thumbnailPrefix + filename
}

// UserPrefix is the key prefix owned by userID.
func UserPrefix(userID string) string {
	return userID + "/"
}

// ValidateFilename rejects names that are empty, contain path separators or are dot entries.
func ValidateFilename(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return ErrInvalidFilename
	case name == "." || name == "..":
		return ErrInvalidFilename
	case strings.ContainsAny(name, "/\\"):
		return ErrInvalidFilename
	case strings.ContainsRune(name, 0):
		return ErrInvalidFilename
	}
	return nil
}

// OwnerOf returns the user id encoded in an object key, or "" if the key has no namespace.
func OwnerOf(key string) string {
	i := strings.IndexByte(key, '/')
	if i <= 0 {
		return ""
	}
	return key[:i]
}
