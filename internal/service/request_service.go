package service

import (
	"context"
	"strings"

	"prokat/internal/domain"
	"prokat/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: requesterID,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RequestService) GetOwnRequests(ctx context.Context, requesterID int64) ([]*models.ItemRequestWithItems, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetOtherRequests(ctx context.Context, requesterID int64, from, size int) ([]*models.ItemRequestWithItems, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	limit, offset, err := pageBounds(from, size)
	if err != nil {
		return nil, err
	}
	requests, err := s.repo.GetOtherRequests(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetRequestByID(ctx context.Context, callerID, requestID int64) (*models.ItemRequestWithItems, error) {
	if _, err := s.repo.GetUserByID(ctx, callerID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	result, err := s.withItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestWithItems, error) {
	result := make([]*models.ItemRequestWithItems, 0, len(requests))
	for _, request := range requests {
		items, err := s.repo.GetItemsByRequest(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		answers := make([]models.Item, 0, len(items))
		for _, item := range items {
			answers = append(answers, *item)
		}
		result = append(result, &models.ItemRequestWithItems{
			ItemRequest: *request,
			Items:       answers,
		})
	}
	return result, nil
}
