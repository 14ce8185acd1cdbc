package art

import (
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/go-flac"
)

// readFLACPicture reads PICTURE metadata blocks directly, preferring the
// front cover block when several are present.
func readFLACPicture(path string) (data []byte, mimeType string, err error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, "", err
	}

	var first *flacpicture.MetadataBlockPicture
	for _, meta := range f.Meta {
		if meta.Type != flac.Picture {
			continue
		}
		pic, picErr := flacpicture.ParseFromMetaDataBlock(*meta)
		if picErr != nil {
			continue
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return pic.ImageData, pic.MIME, nil
		}
		if first == nil {
			first = pic
		}
	}

	if first != nil {
		return first.ImageData, first.MIME, nil
	}
	return nil, "", nil
}
