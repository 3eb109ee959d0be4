// Package thumbnail derives fixed-width JPEG previews from uploaded images.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxWidth is the gallery thumbnail width in pixels.
	DefaultMaxWidth = 200
	// ContentType of every derived thumbnail.
	ContentType = "image/jpeg"

	jpegQuality = 85
)

var (
	ErrDecode = errors.New("thumbnail: decode image")
	ErrEncode = errors.New("thumbnail: encode jpeg")
)

// Thumbnail is an encoded derivative image.
type Thumbnail struct {
	Data   []byte
	Width  int
	Height int
}

// Size returns the encoded length in bytes.
func (t *Thumbnail) Size() int64 { return int64(len(t.Data)) }

// ContentType returns the MIME type of Data.
func (t *Thumbnail) ContentType() string { return ContentType }

// Reader returns a fresh reader over the encoded bytes.
func (t *Thumbnail) Reader() io.Reader { return bytes.NewReader(t.Data) }

// Result is delivered by DeriveAsync.
type Result struct {
	Thumbnail *Thumbnail
	Err       error
}

// Deriver scales images to a fixed width, preserving aspect ratio.
// It holds no mutable state and is safe for concurrent use.
type Deriver struct {
	maxWidth int
}

// New returns a Deriver for maxWidth; values <= 0 select DefaultMaxWidth.
func New(maxWidth int) *Deriver {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Deriver{maxWidth: maxWidth}
}

// MaxWidth returns the output width.
func (d *Deriver) MaxWidth() int { return d.maxWidth }

// Derive decodes r and returns a JPEG exactly MaxWidth pixels wide.
// Smaller images are scaled up, matching the gallery's fixed-width grid.
func (d *Deriver) Derive(r io.Reader) (*Thumbnail, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	w, h := d.dimensions(bounds.Dx(), bounds.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; transparent areas composite onto white.
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return &Thumbnail{Data: buf.Bytes(), Width: w, Height: h}, nil
}

func (d *Deriver) dimensions(origW, origH int) (int, int) {
	h := int(math.Round(float64(d.maxWidth) * float64(origH) / float64(origW)))
	if h < 1 {
		h = 1
	}
	return d.maxWidth, h
}

// DeriveAsync runs Derive on its own goroutine. The channel receives exactly one
// Result and is then closed. open is called on that goroutine and its reader closed after use.
func (d *Deriver) DeriveAsync(ctx context.Context, open func() (io.ReadCloser, error)) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- Result{Err: err}
			return
		}
		rc, err := open()
		if err != nil {
			out <- Result{Err: err}
			return
		}
		defer rc.Close()

		t, err := d.Derive(rc)
		out <- Result{Thumbnail: t, Err: err}
	}()
	return out
}
