package service

import (
	"context"
	"strings"
	"time"

	"prokat/internal/domain"
	"prokat/internal/metrics"
	"prokat/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	cache  domain.AvailabilityCache
	logger *zerolog.Logger
}

func NewItemService(repo domain.Repository, cache domain.AvailabilityCache, logger *zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, cache: cache, logger: logger}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(item.Description) == "" {
		return nil, ErrEmptyDescription
	}
	if item.RequestID != 0 {
		if _, err := s.repo.GetRequestByID(ctx, item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, ErrNotItemOwner
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetItemByID(ctx context.Context, callerID, itemID int64) (*models.ItemWithBookings, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	// Проекцию last/next видит только владелец вещи.
	if callerID == item.OwnerID {
		return s.decorate(ctx, item, time.Now())
	}

	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return &models.ItemWithBookings{Item: *item, Comments: comments}, nil
}

func (s *ItemService) GetItems(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemWithBookings, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	limit, offset, err := pageBounds(from, size)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]*models.ItemWithBookings, 0, len(items))
	for _, item := range items {
		decorated, err := s.decorate(ctx, item, now)
		if err != nil {
			return nil, err
		}
		result = append(result, decorated)
	}
	return result, nil
}

func (s *ItemService) SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	limit, offset, err := pageBounds(from, size)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchItems(ctx, text, limit, offset)
}

// ProjectAvailability вычисляет проекцию last/next по подтвержденным
// бронированиям. Если последнего нет, а следующее есть, следующее
// переносится на место последнего.
func (s *ItemService) ProjectAvailability(ctx context.Context, itemID int64, now time.Time) (*models.ItemAvailability, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, itemID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("availability cache read error")
		} else if ok {
			metrics.IncAvailabilityCache("hit")
			return cached, nil
		}
		metrics.IncAvailabilityCache("miss")
	}

	last, err := s.repo.LastApprovedBooking(ctx, itemID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.repo.NextApprovedBooking(ctx, itemID, now)
	if err != nil {
		return nil, err
	}

	if last == nil && next != nil {
		last, next = next, nil
	}

	availability := &models.ItemAvailability{ItemID: itemID}
	if last != nil {
		availability.Last = last.ToDate()
	}
	if next != nil {
		availability.Next = next.ToDate()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, availability); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("availability cache write error")
		}
	}
	return availability, nil
}

func (s *ItemService) CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}

	// Комментировать можно только после завершенной аренды.
	finished, err := s.repo.HasFinishedBooking(ctx, itemID, authorID, time.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, ErrCommentNotAllowed
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   itemID,
		AuthorID: authorID,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorName = author.Name
	return comment, nil
}

func (s *ItemService) decorate(ctx context.Context, item *models.Item, now time.Time) (*models.ItemWithBookings, error) {
	availability, err := s.ProjectAvailability(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return &models.ItemWithBookings{
		Item:        *item,
		LastBooking: availability.Last,
		NextBooking: availability.Next,
		Comments:    comments,
	}, nil
}
