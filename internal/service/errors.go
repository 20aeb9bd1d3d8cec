package service

import "errors"

// Ошибки бизнес-логики. API-слой переводит их в HTTP-статусы.
var (
	ErrInvalidDates      = errors.New("booking dates are invalid")
	ErrItemUnavailable   = errors.New("item is not available")
	ErrOwnItemBooking    = errors.New("owner cannot book own item")
	ErrAlreadyDecided    = errors.New("booking is already approved")
	ErrAccessDenied      = errors.New("access denied")
	ErrNotItemOwner      = errors.New("user is not the item owner")
	ErrCommentNotAllowed = errors.New("comment requires a finished booking")
	ErrEmptyComment      = errors.New("comment text is empty")
	ErrInvalidPage       = errors.New("invalid pagination parameters")
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidEmail      = errors.New("email is invalid")
	ErrInvalidChatID     = errors.New("chat id is invalid")
	ErrEmptyDescription  = errors.New("description is required")
)
