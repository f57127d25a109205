package repositories

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// HealthRecordRepository defines the interface for the patient health
// timeline. Records carry symptom and medicine sub-rows.
type HealthRecordRepository interface {
	// Create inserts a record with its symptoms and medicines
	Create(ctx context.Context, record *entities.HealthRecord) error

	// ListByPatient retrieves a patient's timeline newest-first,
	// with symptoms and medicines populated
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.HealthRecord, error)
}

// CommunityRepository defines the interface for the community forum
type CommunityRepository interface {
	// CreatePost creates a forum post
	CreatePost(ctx context.Context, post *entities.CommunityPost) error

	// ListPosts retrieves posts newest-first with like counts
	ListPosts(ctx context.Context, limit int) ([]*entities.CommunityPost, error)

	// LikePost records a like; duplicate likes return a CONFLICT error
	LikePost(ctx context.Context, postID, userID string) error

	// CreateEvent creates a health event
	CreateEvent(ctx context.Context, event *entities.HealthEvent) error

	// ListEvents retrieves upcoming events ordered by date
	ListEvents(ctx context.Context, limit int) ([]*entities.HealthEvent, error)

	// JoinEvent records participation; duplicates return CONFLICT
	JoinEvent(ctx context.Context, eventID, userID string) error

	// CreateGroup creates a community group
	CreateGroup(ctx context.Context, group *entities.CommunityGroup) error

	// ListGroups retrieves groups with member counts; membership of
	// userID is marked when non-empty
	ListGroups(ctx context.Context, userID string) ([]*entities.CommunityGroup, error)

	// JoinGroup records membership; duplicates return CONFLICT
	JoinGroup(ctx context.Context, groupID, userID string) error
}
