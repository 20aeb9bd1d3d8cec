package service

import (
	"context"
	"time"

	"prokat/internal/domain"
	"prokat/internal/events"
	"prokat/internal/metrics"
	"prokat/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	worker   domain.SyncWorker
	notifier domain.Notifier
	cache    domain.AvailabilityCache
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, worker domain.SyncWorker, notifier domain.Notifier, cache domain.AvailabilityCache, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		worker:   worker,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
	}
}

func validateDates(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidDates
	}
	if !end.After(start) {
		return ErrInvalidDates
	}
	if start.Before(now) {
		return ErrInvalidDates
	}
	return nil
}

// canManage — распоряжаться заявкой (подтверждать и отклонять) может
// только владелец вещи.
func canManage(callerID int64, item *models.Item) bool {
	return callerID == item.OwnerID
}

// canView — бронирование видят только его автор и владелец вещи.
func canView(callerID int64, booking *models.Booking, item *models.Item) bool {
	return callerID == booking.BookerID || callerID == item.OwnerID
}

func (s *BookingService) AddBooking(ctx context.Context, bookerID int64, req models.BookingRequest) (*models.BookingView, error) {
	booker, err := s.repo.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if err := validateDates(req.Start, req.End, time.Now()); err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, ErrItemUnavailable
	}

	// Владелец не может бронировать собственную вещь.
	if item.OwnerID == bookerID {
		return nil, ErrOwnItemBooking
	}

	booking := &models.Booking{
		Start:    req.Start,
		End:      req.End,
		ItemID:   item.ID,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(string(models.StatusWaiting))
	s.publishEvent(ctx, events.EventBookingCreated, booking, item)
	s.enqueueSync(ctx, booking, "upsert")
	s.notifyOwner(ctx, booking, item)
	s.invalidateAvailability(ctx, item.ID)

	return s.buildView(booking, item, booker), nil
}

func (s *BookingService) ChangeStatus(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Повторное решение по уже подтвержденной заявке блокируется до
	// проверки прав: порядок значим и закреплен тестами.
	if booking.Status == models.StatusApproved {
		return nil, ErrAlreadyDecided
	}

	item, err := s.repo.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if !canManage(ownerID, item) {
		return nil, ErrAccessDenied
	}

	// Подтверждением считается только approved=true по заявке в статусе
	// WAITING, любое другое решение переводит заявку в REJECTED.
	newStatus := models.StatusRejected
	if approved && booking.Status == models.StatusWaiting {
		newStatus = models.StatusApproved
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, newStatus); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(string(newStatus))
	eventType := events.EventBookingRejected
	if newStatus == models.StatusApproved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(ctx, eventType, updated, item)
	s.enqueueSync(ctx, updated, "update_status")
	s.notifyBooker(ctx, updated, item)
	s.invalidateAvailability(ctx, item.ID)

	booker, err := s.repo.GetUserByID(ctx, updated.BookerID)
	if err != nil {
		return nil, err
	}
	return s.buildView(updated, item, booker), nil
}

func (s *BookingService) GetBookingByID(ctx context.Context, callerID, bookingID int64) (*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if !canView(callerID, booking, item) {
		return nil, ErrAccessDenied
	}

	booker, err := s.repo.GetUserByID(ctx, booking.BookerID)
	if err != nil {
		return nil, err
	}
	return s.buildView(booking, item, booker), nil
}

func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, state models.State, from, size int) ([]*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, bookerID); err != nil {
		return nil, err
	}
	limit, offset, err := pageBounds(from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByBooker(ctx, bookerID, state, time.Now(), limit, offset)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, bookings)
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state models.State, from, size int) ([]*models.BookingView, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	limit, offset, err := pageBounds(from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByOwner(ctx, ownerID, state, time.Now(), limit, offset)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, bookings)
}

// pageBounds переводит from/size в limit/offset. from — смещение,
// которое округляется вниз до начала страницы: номер страницы
// считается целочисленным делением from / size.
func pageBounds(from, size int) (limit, offset int, err error) {
	if from < 0 || size < 0 {
		return 0, 0, ErrInvalidPage
	}
	if size == 0 {
		size = models.DefaultPageSize
	}
	return size, (from / size) * size, nil
}

func (s *BookingService) buildView(booking *models.Booking, item *models.Item, booker *models.User) *models.BookingView {
	return &models.BookingView{
		ID:     booking.ID,
		Start:  booking.Start,
		End:    booking.End,
		Status: booking.Status,
		Item:   *item,
		Booker: *booker,
	}
}

func (s *BookingService) buildViews(ctx context.Context, bookings []*models.Booking) ([]*models.BookingView, error) {
	items := make(map[int64]*models.Item)
	users := make(map[int64]*models.User)

	views := make([]*models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		item, ok := items[b.ItemID]
		if !ok {
			var err error
			item, err = s.repo.GetItemByID(ctx, b.ItemID)
			if err != nil {
				return nil, err
			}
			items[b.ItemID] = item
		}

		booker, ok := users[b.BookerID]
		if !ok {
			var err error
			booker, err = s.repo.GetUserByID(ctx, b.BookerID)
			if err != nil {
				return nil, err
			}
			users[b.BookerID] = booker
		}

		views = append(views, s.buildView(b, item, booker))
	}
	return views, nil
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, booking *models.Booking, item *models.Item) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.worker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = string(booking.Status)
	}

	if err := s.worker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}

func (s *BookingService) notifyOwner(ctx context.Context, booking *models.Booking, item *models.Item) {
	if s.notifier == nil {
		return
	}
	owner, err := s.repo.GetUserByID(ctx, item.OwnerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", item.OwnerID).Msg("notify: owner lookup error")
		return
	}
	s.notifier.NotifyBookingCreated(ctx, owner, booking, item)
}

func (s *BookingService) notifyBooker(ctx context.Context, booking *models.Booking, item *models.Item) {
	if s.notifier == nil {
		return
	}
	booker, err := s.repo.GetUserByID(ctx, booking.BookerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("booker_id", booking.BookerID).Msg("notify: booker lookup error")
		return
	}
	s.notifier.NotifyBookingDecided(ctx, booker, booking, item)
}

func (s *BookingService) invalidateAvailability(ctx context.Context, itemID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, itemID); err != nil {
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("availability cache invalidate error")
	}
}
