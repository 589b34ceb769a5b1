package dto

import "github.com/hongminglow/itarix-api/internal/models"

type ConsultationRequest struct {
	ServiceTypeID int64                       `json:"serviceTypeId"`
	Status        string                      `json:"status"`
	Answers       []ConsultationAnswerRequest `json:"answers"`
}

type ConsultationAnswerRequest struct {
	QuestionID  int64   `json:"questionId"`
	AnswerValue string  `json:"answerValue"`
	SectionKey  string  `json:"sectionKey"`
	QuestionKey string  `json:"questionKey"`
	OptionIDs   []int64 `json:"multiSelectOptionIds"`
}

type ConsultationCreated struct {
	ConsultationID int64 `json:"consultationId"`
}

type ConsultationPage struct {
	Items  []models.Consultation `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type TotalResponse struct {
	Total int `json:"total"`
}
