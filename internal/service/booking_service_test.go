package service

import (
	"context"
	"io"
	"testing"
	"time"

	"prokat/internal/database"
	"prokat/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	repo     *mockRepo
	bus      *mockEventBus
	worker   *mockWorker
	notifier *mockNotifier
	cache    *mockCache
	svc      *BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		repo:     new(mockRepo),
		bus:      new(mockEventBus),
		worker:   new(mockWorker),
		notifier: new(mockNotifier),
		cache:    new(mockCache),
	}
	logger := zerolog.New(io.Discard)
	f.svc = NewBookingService(f.repo, f.bus, f.worker, f.notifier, f.cache, &logger)
	return f
}

func TestAddBooking(t *testing.T) {
	ctx := context.Background()
	booker := &models.User{ID: 2, Name: "Renter"}
	owner := &models.User{ID: 1, Name: "Owner"}
	item := &models.Item{ID: 5, Name: "Drill", Available: true, OwnerID: 1}
	start := time.Now().Add(time.Hour)
	end := start.Add(24 * time.Hour)

	t.Run("creates waiting booking", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()
		f.repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
		f.bus.On("PublishJSON", "booking_created", mock.Anything).Return(nil).Once()
		f.worker.On("EnqueueTask", ctx, "upsert", mock.Anything, mock.Anything, "").Return(nil).Once()
		f.repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil).Once()
		f.notifier.On("NotifyBookingCreated", ctx, owner, mock.Anything, item).Once()
		f.cache.On("Invalidate", ctx, int64(5)).Return(nil).Once()

		view, err := f.svc.AddBooking(ctx, 2, models.BookingRequest{ItemID: 5, Start: start, End: end})
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, view.Status)
		assert.Equal(t, int64(5), view.Item.ID)
		assert.Equal(t, int64(2), view.Booker.ID)
		f.repo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("unknown booker", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(99)).Return(nil, database.ErrUserNotFound).Once()

		_, err := f.svc.AddBooking(ctx, 99, models.BookingRequest{ItemID: 5, Start: start, End: end})
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(77)).Return(nil, database.ErrItemNotFound).Once()

		_, err := f.svc.AddBooking(ctx, 2, models.BookingRequest{ItemID: 77, Start: start, End: end})
		assert.ErrorIs(t, err, database.ErrItemNotFound)
	})

	t.Run("invalid dates", func(t *testing.T) {
		cases := []struct {
			name       string
			start, end time.Time
		}{
			{"end before start", end, start},
			{"end equals start", start, start},
			{"start in past", time.Now().Add(-time.Hour), end},
			{"zero start", time.Time{}, end},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newBookingFixture()
				f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
				f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()

				_, err := f.svc.AddBooking(ctx, 2, models.BookingRequest{ItemID: 5, Start: tc.start, End: tc.end})
				assert.ErrorIs(t, err, ErrInvalidDates)
			})
		}
	})

	t.Run("item unavailable", func(t *testing.T) {
		f := newBookingFixture()
		unavailable := &models.Item{ID: 5, Available: false, OwnerID: 1}
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(unavailable, nil).Once()

		_, err := f.svc.AddBooking(ctx, 2, models.BookingRequest{ItemID: 5, Start: start, End: end})
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("owner books own item", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()

		_, err := f.svc.AddBooking(ctx, 1, models.BookingRequest{ItemID: 5, Start: start, End: end})
		assert.ErrorIs(t, err, ErrOwnItemBooking)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 5, Name: "Drill", Available: true, OwnerID: 1}
	owner := &models.User{ID: 1, Name: "Owner"}
	booker := &models.User{ID: 2, Name: "Renter"}

	decide := func(t *testing.T, approved bool, initial, want models.Status, event string) {
		f := newBookingFixture()
		booking := &models.Booking{ID: 10, ItemID: 5, BookerID: 2, Status: initial, Version: 3}
		updated := &models.Booking{ID: 10, ItemID: 5, BookerID: 2, Status: want, Version: 4}

		f.repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil).Once()
		f.repo.On("GetBooking", ctx, int64(10)).Return(booking, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()
		f.repo.On("UpdateBookingStatusWithVersion", ctx, int64(10), int64(3), want).Return(nil).Once()
		f.repo.On("GetBooking", ctx, int64(10)).Return(updated, nil).Once()
		f.bus.On("PublishJSON", event, mock.Anything).Return(nil).Once()
		f.worker.On("EnqueueTask", ctx, "update_status", int64(10), updated, string(want)).Return(nil).Once()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil)
		f.notifier.On("NotifyBookingDecided", ctx, booker, updated, item).Once()
		f.cache.On("Invalidate", ctx, int64(5)).Return(nil).Once()

		view, err := f.svc.ChangeStatus(ctx, 1, 10, approved)
		require.NoError(t, err)
		assert.Equal(t, want, view.Status)
		f.repo.AssertExpectations(t)
		f.cache.AssertExpectations(t)
	}

	t.Run("approve waiting", func(t *testing.T) {
		decide(t, true, models.StatusWaiting, models.StatusApproved, "booking_approved")
	})

	t.Run("reject waiting", func(t *testing.T) {
		decide(t, false, models.StatusWaiting, models.StatusRejected, "booking_rejected")
	})

	// Подтвердить можно только заявку в статусе WAITING: approve по
	// уже отклоненной заявке оставляет REJECTED.
	t.Run("approve rejected stays rejected", func(t *testing.T) {
		decide(t, true, models.StatusRejected, models.StatusRejected, "booking_rejected")
	})

	// Блокировка повторного решения срабатывает раньше проверки прав.
	t.Run("already approved", func(t *testing.T) {
		f := newBookingFixture()
		booking := &models.Booking{ID: 10, ItemID: 5, BookerID: 2, Status: models.StatusApproved, Version: 3}
		f.repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil).Once()
		f.repo.On("GetBooking", ctx, int64(10)).Return(booking, nil).Once()

		_, err := f.svc.ChangeStatus(ctx, 1, 10, false)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
		f.repo.AssertNotCalled(t, "GetItemByID", ctx, int64(5))
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newBookingFixture()
		booking := &models.Booking{ID: 10, ItemID: 5, BookerID: 2, Status: models.StatusWaiting, Version: 1}
		f.repo.On("GetUserByID", ctx, int64(42)).Return(&models.User{ID: 42}, nil).Once()
		f.repo.On("GetBooking", ctx, int64(10)).Return(booking, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()

		_, err := f.svc.ChangeStatus(ctx, 42, 10, true)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown owner", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(99)).Return(nil, database.ErrUserNotFound).Once()

		_, err := f.svc.ChangeStatus(ctx, 99, 10, true)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})

	t.Run("concurrent modification", func(t *testing.T) {
		f := newBookingFixture()
		booking := &models.Booking{ID: 10, ItemID: 5, BookerID: 2, Status: models.StatusWaiting, Version: 1}
		f.repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil).Once()
		f.repo.On("GetBooking", ctx, int64(10)).Return(booking, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()
		f.repo.On("UpdateBookingStatusWithVersion", ctx, int64(10), int64(1), models.StatusApproved).
			Return(database.ErrConcurrentModification).Once()

		_, err := f.svc.ChangeStatus(ctx, 1, 10, true)
		assert.ErrorIs(t, err, database.ErrConcurrentModification)
	})
}

func TestGetBookingByID(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 5, OwnerID: 1}
	booker := &models.User{ID: 2}
	booking := &models.Booking{ID: 10, ItemID: 5, BookerID: 2, Status: models.StatusWaiting}

	view := func(t *testing.T, callerID int64) (*models.BookingView, error) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, callerID).Return(&models.User{ID: callerID}, nil).Once()
		f.repo.On("GetBooking", ctx, int64(10)).Return(booking, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Maybe()
		return f.svc.GetBookingByID(ctx, callerID, 10)
	}

	t.Run("booker sees booking", func(t *testing.T) {
		v, err := view(t, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(10), v.ID)
	})

	t.Run("owner sees booking", func(t *testing.T) {
		v, err := view(t, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), v.ID)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := view(t, 99)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown caller", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(7)).Return(nil, database.ErrUserNotFound).Once()

		_, err := f.svc.GetBookingByID(ctx, 7, 10)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		f.repo.AssertNotCalled(t, "GetBooking", ctx, int64(10))
	})
}

func TestListBookings(t *testing.T) {
	ctx := context.Background()
	booker := &models.User{ID: 2}
	item := &models.Item{ID: 5, OwnerID: 1}
	bookings := []*models.Booking{
		{ID: 11, ItemID: 5, BookerID: 2, Status: models.StatusWaiting},
		{ID: 10, ItemID: 5, BookerID: 2, Status: models.StatusApproved},
	}

	t.Run("by booker", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil)
		f.repo.On("ListByBooker", ctx, int64(2), models.StateWaiting, mock.AnythingOfType("time.Time"), 10, 0).
			Return(bookings, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()

		views, err := f.svc.ListByBooker(ctx, 2, models.StateWaiting, 0, 10)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, int64(11), views[0].ID)
		// Вещь и автор подгружаются по одному разу на страницу.
		f.repo.AssertNumberOfCalls(t, "GetItemByID", 1)
	})

	t.Run("by owner", func(t *testing.T) {
		f := newBookingFixture()
		owner := &models.User{ID: 1}
		f.repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil).Once()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
		f.repo.On("ListByOwner", ctx, int64(1), models.StateAll, mock.AnythingOfType("time.Time"), 20, 40).
			Return(bookings, nil).Once()
		f.repo.On("GetItemByID", ctx, int64(5)).Return(item, nil).Once()

		views, err := f.svc.ListByOwner(ctx, 1, models.StateAll, 40, 20)
		require.NoError(t, err)
		assert.Len(t, views, 2)
	})

	// from округляется вниз до границы страницы: from=45, size=20 — это
	// третья страница, смещение 40.
	t.Run("from rounded to page start", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
		f.repo.On("ListByBooker", ctx, int64(2), models.StateAll, mock.AnythingOfType("time.Time"), 20, 40).
			Return([]*models.Booking{}, nil).Once()

		_, err := f.svc.ListByBooker(ctx, 2, models.StateAll, 45, 20)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("default page size", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()
		f.repo.On("ListByBooker", ctx, int64(2), models.StateAll, mock.AnythingOfType("time.Time"), models.DefaultPageSize, 0).
			Return([]*models.Booking{}, nil).Once()

		_, err := f.svc.ListByBooker(ctx, 2, models.StateAll, 0, 0)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("negative page", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(2)).Return(booker, nil).Once()

		_, err := f.svc.ListByBooker(ctx, 2, models.StateAll, -1, 10)
		assert.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.On("GetUserByID", ctx, int64(99)).Return(nil, database.ErrUserNotFound).Once()

		_, err := f.svc.ListByOwner(ctx, 99, models.StateAll, 0, 10)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})
}
