package art

import (
	"github.com/bogem/id3v2/v2"
)

// readMP3Picture reads APIC frames with the id3v2 library, preferring the
// front cover when several pictures are attached.
func readMP3Picture(path string) (data []byte, mimeType string, err error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, "", err
	}
	defer id3tag.Close()

	var first id3v2.PictureFrame
	found := false
	for _, frame := range id3tag.GetFrames("APIC") {
		pf, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if pf.PictureType == id3v2.PTFrontCover {
			return pf.Picture, pf.MimeType, nil
		}
		if !found {
			first = pf
			found = true
		}
	}

	if found {
		return first.Picture, first.MimeType, nil
	}
	return nil, "", nil
}
