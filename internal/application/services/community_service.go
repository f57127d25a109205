package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// CommunityService handles the forum, health events, and groups
type CommunityService struct {
	repo       repositories.CommunityRepository
	reconciler *ReconcilerService
}

// NewCommunityService creates a new community service
func NewCommunityService(repo repositories.CommunityRepository, reconciler *ReconcilerService) *CommunityService {
	return &CommunityService{
		repo:       repo,
		reconciler: reconciler,
	}
}

// CreatePost publishes a forum post
func (s *CommunityService) CreatePost(ctx context.Context, post *entities.CommunityPost) error {
	if post.AuthorID == "" {
		return apperrors.NewValidationError("author id is required")
	}
	if post.Title == "" || post.Content == "" {
		return apperrors.NewValidationError("title and content are required")
	}

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.CreatedAt = time.Now()

	return s.repo.CreatePost(ctx, post)
}

// ListPosts returns recent posts with author names attached
func (s *CommunityService) ListPosts(ctx context.Context, limit int) ([]*entities.PostView, error) {
	posts, err := s.repo.ListPosts(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.reconciler.PostViews(ctx, posts)
}

// LikePost records a like; a second like of the same post is a conflict
func (s *CommunityService) LikePost(ctx context.Context, postID, userID string) error {
	return s.repo.LikePost(ctx, postID, userID)
}

// CreateEvent publishes a health event
func (s *CommunityService) CreateEvent(ctx context.Context, event *entities.HealthEvent) error {
	if event.OrganizerID == "" {
		return apperrors.NewValidationError("organizer id is required")
	}
	if event.Title == "" || event.EventDate == "" {
		return apperrors.NewValidationError("title and event date are required")
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()

	return s.repo.CreateEvent(ctx, event)
}

// ListEvents returns upcoming events with participant counts
func (s *CommunityService) ListEvents(ctx context.Context, limit int) ([]*entities.HealthEvent, error) {
	return s.repo.ListEvents(ctx, limit)
}

// JoinEvent registers the user as a participant
func (s *CommunityService) JoinEvent(ctx context.Context, eventID, userID string) error {
	return s.repo.JoinEvent(ctx, eventID, userID)
}

// CreateGroup creates a community group
func (s *CommunityService) CreateGroup(ctx context.Context, group *entities.CommunityGroup) error {
	if group.Name == "" {
		return apperrors.NewValidationError("group name is required")
	}

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	group.CreatedAt = time.Now()

	return s.repo.CreateGroup(ctx, group)
}

// ListGroups returns groups with member counts, marking the ones the
// user has joined
func (s *CommunityService) ListGroups(ctx context.Context, userID string) ([]*entities.CommunityGroup, error) {
	return s.repo.ListGroups(ctx, userID)
}

// JoinGroup registers the user as a member
func (s *CommunityService) JoinGroup(ctx context.Context, groupID, userID string) error {
	return s.repo.JoinGroup(ctx, groupID, userID)
}
