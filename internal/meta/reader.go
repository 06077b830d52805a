package meta

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/lutyjj/photkey-server/internal/domain"
)

// Coordinates is a GPS position extracted from photo metadata.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Meta holds the capture metadata of a photo. Both fields are optional:
// a photo without EXIF data yields an empty Meta, not an error.
type Meta struct {
	TakenAt *time.Time
	GPS     *Coordinates
}

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Read extracts capture time and GPS coordinates from photo bytes.
// It returns domain.ErrUnreadableImage only when the bytes are not a
// recognized image at all; missing or malformed metadata fields are
// reported as absent.
func (r *Reader) Read(data []byte) (Meta, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// JPEG/PNG без EXIF-блока — нормальный случай, а не ошибка.
		if _, _, cfgErr := image.DecodeConfig(bytes.NewReader(data)); cfgErr != nil {
			return Meta{}, fmt.Errorf("%w: %v", domain.ErrUnreadableImage, err)
		}
		return Meta{}, nil
	}

	var m Meta
	if t, err := x.DateTime(); err == nil {
		m.TakenAt = &t
	}
	if lat, lon, err := x.LatLong(); err == nil {
		m.GPS = &Coordinates{Lat: lat, Lon: lon}
	}
	return m, nil
}
