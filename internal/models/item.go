package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	OwnerID     int64     `json:"owner_id"`
	RequestID   int64     `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemPatch — частичное обновление вещи. nil-поле означает "не менять".
type ItemPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// ItemWithBookings дополняет вещь проекцией последнего и следующего
// подтвержденного бронирования. Заполняется только для владельца.
type ItemWithBookings struct {
	Item
	LastBooking *BookingDate `json:"last_booking,omitempty"`
	NextBooking *BookingDate `json:"next_booking,omitempty"`
	Comments    []Comment    `json:"comments"`
}
