package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/repositories"
	"github.com/kllinic/marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/kllinic/marketplace/pkg/errors"
)

// CommunityAdapter implements the CommunityRepository interface
type CommunityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCommunityAdapter creates a new community adapter
func NewCommunityAdapter(client *postgres.Client) repositories.CommunityRepository {
	return &CommunityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CreatePost creates a forum post
func (a *CommunityAdapter) CreatePost(ctx context.Context, post *entities.CommunityPost) error {
	query, args, err := a.db.Insert("community_posts").Rows(goqu.Record{
		"id":         post.ID,
		"author_id":  post.AuthorID,
		"title":      post.Title,
		"content":    post.Content,
		"category":   post.Category,
		"created_at": post.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create post", err)
	}

	return nil
}

// ListPosts retrieves posts newest-first with like counts
func (a *CommunityAdapter) ListPosts(ctx context.Context, limit int) ([]*entities.CommunityPost, error) {
	ds := a.db.Select(
		goqu.I("p.id"),
		goqu.I("p.author_id"),
		goqu.I("p.title"),
		goqu.I("p.content"),
		goqu.I("p.category"),
		goqu.COUNT(goqu.I("l.user_id")).As("likes"),
		goqu.I("p.created_at"),
	).From(goqu.T("community_posts").As("p")).
		LeftJoin(
			goqu.T("community_post_likes").As("l"),
			goqu.On(goqu.Ex{"l.post_id": goqu.I("p.id")}),
		).
		GroupBy(goqu.I("p.id")).
		Order(goqu.I("p.created_at").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list posts", err)
	}
	defer rows.Close()

	var posts []*entities.CommunityPost
	for rows.Next() {
		post := &entities.CommunityPost{}
		err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Title,
			&post.Content,
			&post.Category,
			&post.Likes,
			&post.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan post", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating posts", err)
	}

	return posts, nil
}

// LikePost records a like. Liking the same post twice is a conflict.
func (a *CommunityAdapter) LikePost(ctx context.Context, postID, userID string) error {
	query, args, err := a.db.Insert("community_post_likes").Rows(goqu.Record{
		"post_id": postID,
		"user_id": userID,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("post already liked")
		}
		return apperrors.NewInternalError("failed to like post", err)
	}

	return nil
}

// CreateEvent creates a health event
func (a *CommunityAdapter) CreateEvent(ctx context.Context, event *entities.HealthEvent) error {
	query, args, err := a.db.Insert("health_events").Rows(goqu.Record{
		"id":           event.ID,
		"organizer_id": event.OrganizerID,
		"title":        event.Title,
		"description":  event.Description,
		"event_date":   event.EventDate,
		"location":     event.Location,
		"created_at":   event.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create event", err)
	}

	return nil
}

// ListEvents retrieves upcoming events ordered by date with
// participant counts
func (a *CommunityAdapter) ListEvents(ctx context.Context, limit int) ([]*entities.HealthEvent, error) {
	ds := a.db.Select(
		goqu.I("e.id"),
		goqu.I("e.organizer_id"),
		goqu.I("e.title"),
		goqu.I("e.description"),
		goqu.I("e.event_date"),
		goqu.I("e.location"),
		goqu.COUNT(goqu.I("p.user_id")).As("participants"),
		goqu.I("e.created_at"),
	).From(goqu.T("health_events").As("e")).
		LeftJoin(
			goqu.T("health_event_participants").As("p"),
			goqu.On(goqu.Ex{"p.event_id": goqu.I("e.id")}),
		).
		GroupBy(goqu.I("e.id")).
		Order(goqu.I("e.event_date").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list events", err)
	}
	defer rows.Close()

	var events []*entities.HealthEvent
	for rows.Next() {
		event := &entities.HealthEvent{}
		err := rows.Scan(
			&event.ID,
			&event.OrganizerID,
			&event.Title,
			&event.Description,
			&event.EventDate,
			&event.Location,
			&event.Participants,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan event", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating events", err)
	}

	return events, nil
}

// JoinEvent records participation. Joining twice is a conflict.
func (a *CommunityAdapter) JoinEvent(ctx context.Context, eventID, userID string) error {
	query, args, err := a.db.Insert("health_event_participants").Rows(goqu.Record{
		"event_id": eventID,
		"user_id":  userID,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("already joined this event")
		}
		return apperrors.NewInternalError("failed to join event", err)
	}

	return nil
}

// CreateGroup creates a community group
func (a *CommunityAdapter) CreateGroup(ctx context.Context, group *entities.CommunityGroup) error {
	query, args, err := a.db.Insert("community_groups").Rows(goqu.Record{
		"id":          group.ID,
		"name":        group.Name,
		"description": group.Description,
		"created_at":  group.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create group", err)
	}

	return nil
}

// ListGroups retrieves groups with member counts. When userID is
// non-empty, groups the user belongs to are marked joined.
func (a *CommunityAdapter) ListGroups(ctx context.Context, userID string) ([]*entities.CommunityGroup, error) {
	ds := a.db.Select(
		goqu.I("g.id"),
		goqu.I("g.name"),
		goqu.I("g.description"),
		goqu.COUNT(goqu.I("m.user_id")).As("members"),
		goqu.COALESCE(
			goqu.MAX(goqu.Case().
				When(goqu.Ex{"m.user_id": userID}, 1).
				Else(0)),
			0,
		).As("joined"),
		goqu.I("g.created_at"),
	).From(goqu.T("community_groups").As("g")).
		LeftJoin(
			goqu.T("community_group_members").As("m"),
			goqu.On(goqu.Ex{"m.group_id": goqu.I("g.id")}),
		).
		GroupBy(goqu.I("g.id")).
		Order(goqu.I("g.name").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list groups", err)
	}
	defer rows.Close()

	var groups []*entities.CommunityGroup
	for rows.Next() {
		group := &entities.CommunityGroup{}
		var joined int
		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Members,
			&joined,
			&group.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan group", err)
		}
		group.Joined = joined == 1
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating groups", err)
	}

	return groups, nil
}

// JoinGroup records membership. Joining twice is a conflict.
func (a *CommunityAdapter) JoinGroup(ctx context.Context, groupID, userID string) error {
	query, args, err := a.db.Insert("community_group_members").Rows(goqu.Record{
		"group_id": groupID,
		"user_id":  userID,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("already a member of this group")
		}
		return apperrors.NewInternalError("failed to join group", err)
	}

	return nil
}
