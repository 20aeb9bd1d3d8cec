package models

import "time"

// ItemRequest — запрос на вещь, которой еще нет в каталоге.
type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requester_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemRequestWithItems — запрос вместе с вещами, созданными в ответ.
type ItemRequestWithItems struct {
	ItemRequest
	Items []Item `json:"items"`
}
