package database

import (
	"context"
	"testing"
	"time"

	"prokat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateFilterBoundaries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	booker := seedUser(t, db, "booker")
	item := seedItem(t, db, owner.ID, "drill", true)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	past := seedBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	// заканчивается ровно сейчас: это еще CURRENT, не PAST
	edge := seedBooking(t, db, item.ID, booker.ID, now.Add(-24*time.Hour), now, models.StatusApproved)
	// начинается ровно сейчас: уже CURRENT, не FUTURE
	starting := seedBooking(t, db, item.ID, booker.ID, now, now.Add(12*time.Hour), models.StatusApproved)
	future := seedBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)
	rejected := seedBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusRejected)

	ids := func(bookings []*models.Booking) []int64 {
		out := make([]int64, 0, len(bookings))
		for _, b := range bookings {
			out = append(out, b.ID)
		}
		return out
	}

	all, err := db.ListByBooker(ctx, booker.ID, models.StateAll, now, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	// свежие первыми
	assert.Equal(t, []int64{rejected.ID, future.ID, starting.ID, edge.ID, past.ID}, ids(all))

	pastList, err := db.ListByBooker(ctx, booker.ID, models.StatePast, now, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{past.ID}, ids(pastList))

	current, err := db.ListByBooker(ctx, booker.ID, models.StateCurrent, now, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{starting.ID, edge.ID}, ids(current))

	futureList, err := db.ListByBooker(ctx, booker.ID, models.StateFuture, now, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{rejected.ID, future.ID}, ids(futureList))

	waiting, err := db.ListByBooker(ctx, booker.ID, models.StateWaiting, now, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{future.ID}, ids(waiting))

	rejectedList, err := db.ListByBooker(ctx, booker.ID, models.StateRejected, now, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{rejected.ID}, ids(rejectedList))
}

func TestListByOwnerPagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	booker := seedUser(t, db, "booker")
	item := seedItem(t, db, owner.ID, "saw", true)
	otherOwner := seedUser(t, db, "other-owner")
	foreignItem := seedItem(t, db, otherOwner.ID, "foreign", true)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		start := now.Add(time.Duration(24*(i+1)) * time.Hour)
		seedBooking(t, db, item.ID, booker.ID, start, start.Add(12*time.Hour), models.StatusWaiting)
	}
	// чужая бронь в выборку владельца не попадает
	seedBooking(t, db, foreignItem.ID, booker.ID, now.Add(24*time.Hour), now.Add(36*time.Hour), models.StatusWaiting)

	first, err := db.ListByOwner(ctx, owner.ID, models.StateAll, now, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := db.ListByOwner(ctx, owner.ID, models.StateAll, now, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)

	// страницы не пересекаются
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[1].ID, second[0].ID)
	for _, b := range append(first, second...) {
		assert.Equal(t, item.ID, b.ItemID)
	}
}

func TestUpdateBookingStatusOptimisticLock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	booker := seedUser(t, db, "booker")
	item := seedItem(t, db, owner.ID, "drill", true)

	now := time.Now().UTC()
	booking := seedBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)
	require.EqualValues(t, 1, booking.Version)

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, booking.ID, 1, models.StatusApproved))

	updated, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.EqualValues(t, 2, updated.Version)

	// устаревшая версия
	err = db.UpdateBookingStatusWithVersion(ctx, booking.ID, 1, models.StatusRejected)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	unchanged, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, unchanged.Status)
}

func TestApprovedProjectionQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	booker := seedUser(t, db, "booker")
	item := seedItem(t, db, owner.ID, "drill", true)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	seedBooking(t, db, item.ID, booker.ID, now.Add(-120*time.Hour), now.Add(-96*time.Hour), models.StatusApproved)
	lastExpected := seedBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	nextExpected := seedBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusApproved)
	seedBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusApproved)
	// неподтвержденные брони проекция не видит
	seedBooking(t, db, item.ID, booker.ID, now.Add(-24*time.Hour), now.Add(-12*time.Hour), models.StatusWaiting)
	seedBooking(t, db, item.ID, booker.ID, now.Add(2*time.Hour), now.Add(4*time.Hour), models.StatusRejected)

	last, err := db.LastApprovedBooking(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, lastExpected.ID, last.ID)

	next, err := db.NextApprovedBooking(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, nextExpected.ID, next.ID)
}

func TestProjectionQueriesEmpty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	item := seedItem(t, db, owner.ID, "drill", true)

	last, err := db.LastApprovedBooking(ctx, item.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, last)

	next, err := db.NextApprovedBooking(ctx, item.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestHasFinishedBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	booker := seedUser(t, db, "booker")
	item := seedItem(t, db, owner.ID, "drill", true)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	ok, err := db.HasFinishedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// идущая бронь права на комментарий не дает
	seedBooking(t, db, item.ID, booker.ID, now.Add(-24*time.Hour), now.Add(24*time.Hour), models.StatusApproved)
	ok, err = db.HasFinishedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	seedBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	ok, err = db.HasFinishedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
