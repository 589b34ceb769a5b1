package dto

type ToolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId"`
	WebsiteURL  string `json:"websiteUrl"`
}

type ReviewRequest struct {
	ToolID int64  `json:"toolId"`
	Rating int    `json:"rating"`
	Text   string `json:"reviewText"`
}

type CommentRequest struct {
	ToolID   int64  `json:"toolId"`
	ReviewID *int64 `json:"reviewId"`
	ParentID *int64 `json:"parentCommentId"`
	Text     string `json:"commentText"`
}

type ReportRequest struct {
	TargetID int64  `json:"targetId"`
	Reason   string `json:"reason"`
}

type CountResponse struct {
	Count int `json:"count"`
}
