package thumbnailer

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"image_thumbnailer/entity"
)

// Thumbnailer downscales raster images into a bounding box and re-encodes
// them. It does no I/O and holds no state, so one instance is safe to share
// across goroutines.
type Thumbnailer struct{}

func New() *Thumbnailer {
	return &Thumbnailer{}
}

// Generate decodes src, fits it into spec's bounding box preserving aspect
// ratio and never upscaling, and re-encodes it to the source format.
// Animated GIF/WEBP inputs are reduced to their first frame.
func (t *Thumbnailer) Generate(src []byte, spec entity.ThumbnailSpec) (entity.Thumbnail, error) {
	img, formatName, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return entity.Thumbnail{}, errors.Wrap(entity.ErrUnsupportedFormat, err.Error())
	}

	bounds := img.Bounds()
	width, height := fitBox(bounds.Dx(), bounds.Dy(), spec.MaxWidth, spec.MaxHeight)

	if width != bounds.Dx() || height != bounds.Dy() {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	format := detectFormat(formatName)
	if format == entity.FormatUnknown {
		format = entity.FormatJPEG
	}

	encoded, err := encode(img, format, spec.JPEGQuality)
	if err != nil {
		return entity.Thumbnail{}, errors.Wrap(err, "thumbnailer - Generate - encode")
	}

	return entity.Thumbnail{
		Bytes:  encoded,
		Width:  width,
		Height: height,
		Format: format,
	}, nil
}

// fitBox computes target dimensions so that the result fits into maxW x maxH
// with the original aspect ratio kept and no upscaling.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w < 1 || h < 1 {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale >= 1 {
		return w, h
	}

	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	return tw, th
}

func detectFormat(name string) entity.Format {
	switch name {
	case "jpeg":
		return entity.FormatJPEG
	case "png":
		return entity.FormatPNG
	case "gif":
		return entity.FormatGIF
	case "webp":
		return entity.FormatWEBP
	}
	return entity.FormatUnknown
}

// encode re-encodes to the source format. PNG and GIF stay lossless; a
// decodable format without its own encoder falls back to JPEG.
func encode(img image.Image, format entity.Format, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)

	switch format {
	case entity.FormatPNG:
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
	case entity.FormatGIF:
		if err := gif.Encode(buf, img, nil); err != nil {
			return nil, err
		}
	case entity.FormatWEBP:
		if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
