package profile

import (
	"context"
	"fmt"
	"strings"

	"canchapp/internal/common/validation"
	"canchapp/internal/models"
)

// MyReviews lists the reviews written by the current user.
func (s *Service) MyReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.api.Get(ctx, "/resenas/mis-resenas", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Service) UpdateReview(ctx context.Context, id, rating int, comment string) (string, error) {
	req := models.UpdateReviewRequest{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := validation.ReviewUpdateSchema.Check(req); err != nil {
		return "", err
	}
	var resp models.MessageResponse
	if err := s.api.Put(ctx, fmt.Sprintf("/resenas/%d", id), req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *Service) DeleteReview(ctx context.Context, id int) error {
	return s.api.Delete(ctx, fmt.Sprintf("/resenas/%d", id), nil)
}
