package art

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/llehouerou/folderart/internal/library"
)

// readEmbedded returns the first embedded picture of an audio file.
// A nil data return with nil error means the file parsed but carries no
// picture.
func readEmbedded(path string) (data []byte, mimeType string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case library.ExtMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readMP3Picture(path)
		case library.ExtFLAC:
			// dhowden/tag can fail on some FLAC files
			return readFLACPicture(path)
		case library.ExtWMA, library.ExtWAV, library.ExtAIFF, library.ExtAAC:
			// formats dhowden/tag does not handle
			return readPictureWithTaglib(path)
		}
		return nil, "", err
	}

	pic := m.Picture()
	if pic == nil {
		return nil, "", nil
	}

	return pic.Data, pic.MIMEType, nil
}
