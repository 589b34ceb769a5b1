package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hongminglow/itarix-api/internal/apperr"
	"github.com/hongminglow/itarix-api/internal/consultation"
	"github.com/hongminglow/itarix-api/internal/http/respond"
	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/models/dto"
)

// ConsultationHandler stores and lists the caller's questionnaires.
type ConsultationHandler struct {
	consultations *consultation.Service
	log           logging.Logger
}

func NewConsultationHandler(consultations *consultation.Service, log logging.Logger) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations, log: log}
}

func (h *ConsultationHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /consultations", authed(h.handleCreate))
	mux.Handle("GET /consultations", authed(h.handleList))
	mux.Handle("GET /consultations/count", authed(h.handleCount))
	mux.Handle("GET /consultations/latest", authed(h.handleLatest))
	mux.Handle("GET /consultations/{id}", authed(h.handleGet))
}

func (h *ConsultationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.ConsultationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c := models.Consultation{ServiceTypeID: req.ServiceTypeID, Status: req.Status}
	for _, a := range req.Answers {
		c.Answers = append(c.Answers, models.ConsultationAnswer{
			QuestionID:  a.QuestionID,
			Value:       a.AnswerValue,
			SectionKey:  a.SectionKey,
			QuestionKey: a.QuestionKey,
			OptionIDs:   a.OptionIDs,
		})
	}
	id, err := h.consultations.Create(r.Context(), identity(r).AccountID, c)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Consultation saved", dto.ConsultationCreated{ConsultationID: id})
}

func (h *ConsultationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := consultationQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := h.consultations.List(r.Context(), identity(r).AccountID, q)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ConsultationPage{Items: page.Items, Total: page.Total, Limit: page.Limit, Offset: page.Offset})
}

func (h *ConsultationHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	q, err := consultationQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	n, err := h.consultations.Count(r.Context(), identity(r).AccountID, q)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.TotalResponse{Total: n})
}

func (h *ConsultationHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	c, err := h.consultations.Latest(r.Context(), identity(r).AccountID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", c)
}

func (h *ConsultationHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.consultations.Get(r.Context(), identity(r).AccountID, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", c)
}

// consultationQuery reads status, serviceTypeId, from, to, limit and offset
// from the query string. Dates are RFC 3339 or YYYY-MM-DD; a bare "to" date
// covers the whole day.
func consultationQuery(r *http.Request) (consultation.Query, error) {
	v := r.URL.Query()
	q := consultation.Query{Status: v.Get("status")}

	var err error
	if q.Limit, err = queryInt(v.Get("limit"), "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(v.Get("offset"), "offset"); err != nil {
		return q, err
	}
	if raw := v.Get("serviceTypeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, apperr.New(apperr.Validation, "serviceTypeId must be an integer")
		}
		q.ServiceTypeID = &id
	}
	if q.From, err = queryTime(v.Get("from"), "from", false); err != nil {
		return q, err
	}
	if q.To, err = queryTime(v.Get("to"), "to", true); err != nil {
		return q, err
	}
	return q, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.Validation, name+" must be an integer")
	}
	return n, nil
}

func queryTime(raw, name string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperr.New(apperr.Validation, name+" must be a date")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
