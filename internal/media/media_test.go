package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStorageDatePartition(t *testing.T) {
	base := t.TempDir()
	s := NewStorage(base)
	s.now = func() time.Time {
		return time.Date(2023, time.March, 5, 12, 0, 0, 0, time.UTC)
	}

	dir, err := s.TrackAudioDir()
	if err != nil {
		t.Fatalf("TrackAudioDir: %v", err)
	}

	want := filepath.Join(base, "audio", "tracks", "05032023")
	if dir != want {
		t.Fatalf("dir = %q, want %q", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %q", dir)
	}
}

func TestStorageSaveCollision(t *testing.T) {
	s := NewStorage(t.TempDir())

	dir, err := s.AlbumImageDir()
	if err != nil {
		t.Fatalf("AlbumImageDir: %v", err)
	}

	first, err := s.Save(dir, "cover.jpg", []byte("one"))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second, err := s.Save(dir, "cover.jpg", []byte("two"))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct paths, both %q", first)
	}
	if !strings.HasSuffix(second, ".jpg") {
		t.Fatalf("suffix path lost its extension: %q", second)
	}

	data, err := os.ReadFile(first)
	if err != nil || string(data) != "one" {
		t.Fatalf("first file overwritten: %q %v", data, err)
	}
}

func TestCheckAudioFilename(t *testing.T) {
	if err := CheckAudioFilename("song.mp3"); err != nil {
		t.Fatalf("mp3 rejected: %v", err)
	}
	if err := CheckAudioFilename("song.MP3"); err != nil {
		t.Fatalf("uppercase extension rejected: %v", err)
	}
	if err := CheckAudioFilename("song.wav"); err != ErrUnsupportedAudioFormat {
		t.Fatalf("wav error = %v, want ErrUnsupportedAudioFormat", err)
	}
}

func TestResizeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		for y := 0; y < 480; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode source: %v", err)
	}

	out, err := ResizeImage(buf.Bytes(), SmallImageSize, SmallImageSize)
	if err != nil {
		t.Fatalf("ResizeImage: %v", err)
	}

	resized, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", format)
	}
	bounds := resized.Bounds()
	if bounds.Dx() != SmallImageSize || bounds.Dy() != SmallImageSize {
		t.Fatalf("size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), SmallImageSize, SmallImageSize)
	}
}

func TestResizeImageRejectsGarbage(t *testing.T) {
	if _, err := ResizeImage([]byte("not an image"), 100, 100); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	if _, err := Duration([]byte("not audio")); err == nil {
		t.Fatal("expected decode error")
	}
}
