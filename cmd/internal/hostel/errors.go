package hostel

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrNoRoomAvailable = errors.New("no vacant room of this type")
)
