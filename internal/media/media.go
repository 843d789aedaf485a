package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedType = errors.New("unsupported image type")

var allowedContentTypes = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/webp":    true,
	"image/gif":     true,
	"image/bmp":     true,
	"image/svg+xml": true,
	"image/tiff":    true,
	"image/heic":    true,
	"image/heif":    true,
}

// Kept byte-for-byte: vector art and animations lose meaning when rasterized.
var passthroughContentTypes = map[string]bool{
	"image/svg+xml": true,
	"image/gif":     true,
}

// Image is an upload ready to forward to the backend.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	Normalized  bool
}

type Options struct {
	MaxSide int
	Quality int
}

func AllowedContentType(contentType string) bool {
	return allowedContentTypes[normalizeContentType(contentType)]
}

func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// SniffContentType trusts the bytes over the declared type. SVG is text to
// the sniffer, so a declared SVG is accepted when the body is textual.
func SniffContentType(data []byte, declared string) string {
	if isHeifFamily(data) {
		return "image/heic"
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	sniffed := normalizeContentType(http.DetectContentType(sample))
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if normalizeContentType(declared) == "image/svg+xml" && strings.HasPrefix(sniffed, "text/") {
		return "image/svg+xml"
	}
	return sniffed
}

func isHeifFamily(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "mif1", "msf1", "heif":
		return true
	}
	return false
}

// Normalize validates an upload and re-encodes raster images as JPEG that
// fit inside opts.MaxSide, with EXIF orientation applied.
func Normalize(filename string, declared string, data []byte, opts Options) (Image, error) {
	if len(data) == 0 {
		return Image{}, errors.New("empty image")
	}
	contentType := SniffContentType(data, declared)
	if !AllowedContentType(contentType) {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if passthroughContentTypes[contentType] {
		return Image{Filename: filename, ContentType: contentType, Data: data}, nil
	}

	img, err := decode(data)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	if opts.MaxSide > 0 {
		img = imaging.Fit(img, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return Image{}, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	return Image{
		Filename:    jpegName(filename),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		Normalized:  true,
	}, nil
}

func jpegName(filename string) string {
	base := strings.TrimSuffix(path.Base(strings.TrimSpace(filename)), path.Ext(filename))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return base + ".jpg"
}

func decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if isHeifFamily(data) {
			return decodeHEIC(data)
		}
		return nil, err
	}
	if format == "jpeg" {
		img = applyOrientation(img, exifOrientation(data))
	}
	return img, nil
}

func exifOrientation(data []byte) int {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orient, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orient
}

var orientations = map[int]func(image.Image) *image.NRGBA{
	2: imaging.FlipH,
	3: imaging.Rotate180,
	4: imaging.FlipV,
	5: imaging.Transpose,
	6: imaging.Rotate270,
	7: imaging.Transverse,
	8: imaging.Rotate90,
}

func applyOrientation(img image.Image, orientation int) image.Image {
	if fn, ok := orientations[orientation]; ok {
		return fn(img)
	}
	return img
}
