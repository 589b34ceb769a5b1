package models

import "time"

// Tool is an entry in the AI tool directory.
type Tool struct {
	ID           int64     `json:"toolId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	WebsiteURL   string    `json:"websiteUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Category groups tools.
type Category struct {
	ID   int64  `json:"categoryId"`
	Name string `json:"categoryName"`
}

// Review is a rated opinion about a tool. New reviews wait for moderation.
type Review struct {
	ID        int64      `json:"reviewId"`
	ToolID    int64      `json:"toolId"`
	AccountID int64      `json:"userId"`
	Username  string     `json:"userName,omitempty"`
	Rating    int        `json:"rating"`
	Text      string     `json:"reviewText,omitempty"`
	Approved  bool       `json:"isApproved"`
	Flagged   bool       `json:"isFlagged"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Comment is a discussion entry on a tool, optionally attached to a review
// or replying to another comment.
type Comment struct {
	ID        int64      `json:"commentId"`
	ToolID    int64      `json:"toolId"`
	ReviewID  *int64     `json:"reviewId,omitempty"`
	ParentID  *int64     `json:"parentCommentId,omitempty"`
	AccountID int64      `json:"userId"`
	Username  string     `json:"userName,omitempty"`
	Text      string     `json:"commentText"`
	Approved  bool       `json:"isApproved"`
	Flagged   bool       `json:"isFlagged"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Rating summarises approved reviews of a tool.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Report is a user complaint about a review or comment.
type Report struct {
	ID        int64     `json:"reportId"`
	TargetID  int64     `json:"targetId"`
	AccountID int64     `json:"userId"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
