package entities

import (
	"time"
)

// CommunityPost is a forum post authored by any account
type CommunityPost struct {
	ID        string    `json:"id" db:"id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Category  string    `json:"category" db:"category"`
	Likes     int       `json:"likes" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostView is a post with the author's display name attached
type PostView struct {
	CommunityPost
	AuthorName string `json:"author_name"`
}

// HealthEvent is a community health event
type HealthEvent struct {
	ID           string    `json:"id" db:"id"`
	OrganizerID  string    `json:"organizer_id" db:"organizer_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	EventDate    string    `json:"event_date" db:"event_date"`
	Location     string    `json:"location" db:"location"`
	Participants int       `json:"participants" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CommunityGroup is a support or interest group
type CommunityGroup struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Members     int       `json:"members" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Joined is relative to the requesting user
	Joined bool `json:"joined" db:"-"`
}
