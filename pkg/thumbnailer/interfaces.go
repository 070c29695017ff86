package thumbnailer

import (
	"image_thumbnailer/entity"
)

type Generator interface {
	Generate(src []byte, spec entity.ThumbnailSpec) (entity.Thumbnail, error)
}
