package art

import (
	"net/http"

	"go.senan.xyz/taglib"
)

// readPictureWithTaglib reads the first embedded image via taglib, which
// parses the container formats the other readers do not (wma, wav, aiff,
// aac).
func readPictureWithTaglib(path string) (data []byte, mimeType string, err error) {
	data, err = taglib.ReadImage(path)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", nil
	}
	return data, http.DetectContentType(data), nil
}
