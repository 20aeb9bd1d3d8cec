package domain

import (
	"context"
	"time"

	"prokat/internal/models"
)

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id int64, name, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UpdateUserChatID(ctx context.Context, id, chatID int64) error

	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, limit, offset int) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.Status) error
	ListByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, limit, offset int) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, limit, offset int) ([]*models.Booking, error)
	LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)

	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	GetOtherRequests(ctx context.Context, requesterID int64, limit, offset int) ([]*models.ItemRequest, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker принимает задачи на выгрузку бронирований во внешнюю таблицу.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

// Notifier отправляет пользователю уведомление о событии бронирования.
// Реализация не возвращает ошибок наружу: уведомления best-effort.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, owner *models.User, booking *models.Booking, item *models.Item)
	NotifyBookingDecided(ctx context.Context, booker *models.User, booking *models.Booking, item *models.Item)
}

// AvailabilityCache кэширует проекцию last/next бронирования вещи.
type AvailabilityCache interface {
	Get(ctx context.Context, itemID int64) (*models.ItemAvailability, bool, error)
	Set(ctx context.Context, availability *models.ItemAvailability) error
	Invalidate(ctx context.Context, itemID int64) error
}

type BookingService interface {
	AddBooking(ctx context.Context, bookerID int64, req models.BookingRequest) (*models.BookingView, error)
	ChangeStatus(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.BookingView, error)
	GetBookingByID(ctx context.Context, callerID, bookingID int64) (*models.BookingView, error)
	ListByBooker(ctx context.Context, bookerID int64, state models.State, from, size int) ([]*models.BookingView, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.State, from, size int) ([]*models.BookingView, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetItemByID(ctx context.Context, callerID, itemID int64) (*models.ItemWithBookings, error)
	GetItems(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemWithBookings, error)
	SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	ProjectAvailability(ctx context.Context, itemID int64, now time.Time) (*models.ItemAvailability, error)
	CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
}

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	LinkTelegram(ctx context.Context, id, chatID int64) error
}

type RequestService interface {
	CreateRequest(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error)
	GetOwnRequests(ctx context.Context, requesterID int64) ([]*models.ItemRequestWithItems, error)
	GetOtherRequests(ctx context.Context, requesterID int64, from, size int) ([]*models.ItemRequestWithItems, error)
	GetRequestByID(ctx context.Context, callerID, requestID int64) (*models.ItemRequestWithItems, error)
}
