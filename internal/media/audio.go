package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// ErrUnsupportedAudioFormat rejects uploads whose extension is not in
// the allow-list.
var ErrUnsupportedAudioFormat = errors.New("unsupported audio format, allowed: mp3")

var allowedAudioExtensions = map[string]bool{
	".mp3": true,
}

// CheckAudioFilename validates the extension of an uploaded audio file.
func CheckAudioFilename(filename string) error {
	if !allowedAudioExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedAudioFormat
	}
	return nil
}

// Duration decodes the audio frames in data and returns the total
// duration in milliseconds. The client-asserted length is never used;
// this value comes from the file itself.
func Duration(data []byte) (int64, error) {
	dec := mp3.NewDecoder(bytes.NewReader(data))

	var (
		frame   mp3.Frame
		skipped int
		total   float64
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("decode audio: %w", err)
		}
		total += frame.Duration().Seconds()
	}

	if total == 0 {
		return 0, errors.New("decode audio: no frames")
	}
	return int64(total * 1000), nil
}

// TagTitle reads the title from the file's embedded metadata, or ""
// when no tags are present. Used as a fallback when the client does not
// name the track.
func TagTitle(data []byte) string {
	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return m.Title()
}
