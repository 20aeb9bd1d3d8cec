package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// BookingRequest — входные данные нового бронирования.
type BookingRequest struct {
	ItemID int64     `json:"itemId"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// BookingView — бронирование с вложенными вещью и автором, то, что
// отдается наружу из сервиса.
type BookingView struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status Status    `json:"status"`
	Item   Item      `json:"item"`
	Booker User      `json:"booker"`
}

// BookingDate — краткая проекция для карточки вещи (last/next booking).
type BookingDate struct {
	ID       int64     `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BookerID int64     `json:"booker_id"`
	Status   Status    `json:"status"`
}

// ItemAvailability — результат проекции доступности вещи.
type ItemAvailability struct {
	ItemID int64        `json:"item_id"`
	Last   *BookingDate `json:"last,omitempty"`
	Next   *BookingDate `json:"next,omitempty"`
}

func (b *Booking) ToDate() *BookingDate {
	return &BookingDate{
		ID:       b.ID,
		Start:    b.Start,
		End:      b.End,
		BookerID: b.BookerID,
		Status:   b.Status,
	}
}
