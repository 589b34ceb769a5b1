package models

import "time"

const (
	ConsultationDraft     = "draft"
	ConsultationSubmitted = "submitted"
)

// Consultation is an intake questionnaire filled in by an account.
type Consultation struct {
	ID            int64                `json:"consultationId"`
	AccountID     int64                `json:"userId"`
	ServiceTypeID int64                `json:"serviceTypeId"`
	Status        string               `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	Answers       []ConsultationAnswer `json:"answers,omitempty"`
}

// ConsultationAnswer is one answered question. Multi-select questions carry
// the chosen option ids.
type ConsultationAnswer struct {
	ID             int64     `json:"answerId"`
	ConsultationID int64     `json:"consultationId"`
	QuestionID     int64     `json:"questionId"`
	Value          string    `json:"answerValue"`
	SectionKey     string    `json:"sectionKey,omitempty"`
	QuestionKey    string    `json:"questionKey,omitempty"`
	OptionIDs      []int64   `json:"multiSelectOptionIds"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// ConsultationFilter narrows an account's consultation listing.
type ConsultationFilter struct {
	Status        string
	ServiceTypeID *int64
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
