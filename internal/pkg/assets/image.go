package assets

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.BMP:  "image/bmp",
	imaging.TIFF: "image/tiff",
}

// PreparedImage is an encoded image ready for upload
type PreparedImage struct {
	Body        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// PrepareImage decodes r, shrinks it to maxWidth keeping the aspect ratio and
// re-encodes it in the format the filename names. Narrower images keep their size.
func PrepareImage(r io.Reader, filename string, maxWidth int) (*PreparedImage, error) {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return nil, fmt.Errorf("unsupported image type %q", filepath.Ext(filename))
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &PreparedImage{
		Body:        buf.Bytes(),
		ContentType: contentTypes[format],
		Ext:         strings.ToLower(filepath.Ext(filename)),
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}, nil
}
