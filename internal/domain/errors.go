package domain

import "errors"

var (
	// ErrUnreadableImage means the uploaded bytes are not a recognized image.
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrGeoUnavailable means the reverse-geocoding endpoint could not be
	// reached at the network layer. A reachable endpoint returning no place
	// is not an error.
	ErrGeoUnavailable = errors.New("geocoding service unavailable")

	// ErrDuplicateName means a photo with the same name already exists.
	ErrDuplicateName = errors.New("photo name already exists")

	// ErrBadDate means a date filter string does not match the configured
	// date pattern.
	ErrBadDate = errors.New("malformed date")

	// ErrPhotoNotFound means no record exists for the given id or name.
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrContentNotFound means the record exists but the photo bytes are
	// missing from the content store.
	ErrContentNotFound = errors.New("photo content not found")
)
