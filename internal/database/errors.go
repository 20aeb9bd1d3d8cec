package database

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRequestNotFound = errors.New("item request not found")

	// ErrEmailTaken возвращается при нарушении уникальности email
	ErrEmailTaken = errors.New("email already in use")

	// ErrConcurrentModification возвращается, когда версия записи
	// изменилась между чтением и записью
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
