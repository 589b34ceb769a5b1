package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/itarix-api/internal/models"
)

// CreateConsultation writes the consultation, its answers and their selected
// options in one transaction.
func (s *Store) CreateConsultation(ctx context.Context, c models.Consultation) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const header = `
			INSERT INTO consultations (account_id, service_type_id, status)
			VALUES ($1, $2, $3)
			RETURNING id;
		`
		if err := tx.QueryRow(ctx, header, c.AccountID, c.ServiceTypeID, c.Status).Scan(&id); err != nil {
			return mapError(err)
		}

		const answer = `
			INSERT INTO consultation_answers (consultation_id, question_id, answer_value, section_key, question_key)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;
		`
		const options = `
			INSERT INTO consultation_answer_options (answer_id, option_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING;
		`
		for _, a := range c.Answers {
			var answerID int64
			err := tx.QueryRow(ctx, answer, id, a.QuestionID, a.Value, a.SectionKey, a.QuestionKey).Scan(&answerID)
			if err != nil {
				return mapError(err)
			}
			if len(a.OptionIDs) == 0 {
				continue
			}
			if _, err := tx.Exec(ctx, options, answerID, a.OptionIDs); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListConsultationsByAccount returns one page of an account's consultations,
// newest first, without answers.
func (s *Store) ListConsultationsByAccount(ctx context.Context, accountID int64, filter models.ConsultationFilter) ([]models.Consultation, error) {
	where, args := consultationWhere(accountID, filter)
	query := `
		SELECT id, account_id, service_type_id, status, created_at
		FROM consultations
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return collect(rows, scanConsultation)
}

// CountConsultationsByAccount counts consultations matching filter, ignoring paging.
func (s *Store) CountConsultationsByAccount(ctx context.Context, accountID int64, filter models.ConsultationFilter) (int, error) {
	where, args := consultationWhere(accountID, filter)
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM consultations WHERE `+where, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// GetConsultation loads one consultation with its answers; accountID of zero
// skips the ownership check.
func (s *Store) GetConsultation(ctx context.Context, id, accountID int64) (models.Consultation, error) {
	const query = `
		SELECT id, account_id, service_type_id, status, created_at
		FROM consultations
		WHERE id = $1 AND ($2::bigint = 0 OR account_id = $2);
	`
	c, err := scanConsultation(s.pool.QueryRow(ctx, query, id, accountID))
	if err != nil {
		return models.Consultation{}, err
	}
	return s.withAnswers(ctx, c)
}

// LatestConsultation loads an account's most recent consultation with answers.
func (s *Store) LatestConsultation(ctx context.Context, accountID int64) (models.Consultation, error) {
	const query = `
		SELECT id, account_id, service_type_id, status, created_at
		FROM consultations
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1;
	`
	c, err := scanConsultation(s.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		return models.Consultation{}, err
	}
	return s.withAnswers(ctx, c)
}

func (s *Store) withAnswers(ctx context.Context, c models.Consultation) (models.Consultation, error) {
	const query = `
		SELECT ans.id, ans.consultation_id, ans.question_id, ans.answer_value, ans.section_key, ans.question_key,
		(
			SELECT COALESCE(array_agg(o.option_id ORDER BY o.option_id), '{}')
			FROM consultation_answer_options o
			WHERE o.answer_id = ans.id
		),
		ans.answered_at
		FROM consultation_answers ans
		WHERE ans.consultation_id = $1
		ORDER BY ans.id;
	`
	rows, err := s.pool.Query(ctx, query, c.ID)
	if err != nil {
		return models.Consultation{}, mapError(err)
	}
	answers, err := collect(rows, func(row pgx.Row) (models.ConsultationAnswer, error) {
		var a models.ConsultationAnswer
		err := row.Scan(&a.ID, &a.ConsultationID, &a.QuestionID, &a.Value, &a.SectionKey, &a.QuestionKey,
			&a.OptionIDs, &a.AnsweredAt)
		if err != nil {
			return models.ConsultationAnswer{}, mapError(err)
		}
		return a, nil
	})
	if err != nil {
		return models.Consultation{}, err
	}
	c.Answers = answers
	return c, nil
}

func consultationWhere(accountID int64, f models.ConsultationFilter) (string, []any) {
	clauses := []string{"account_id = $1"}
	args := []any{accountID}
	add := func(clause string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.ServiceTypeID != nil {
		add("service_type_id = $%d", *f.ServiceTypeID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	return strings.Join(clauses, " AND "), args
}

func scanConsultation(row pgx.Row) (models.Consultation, error) {
	var c models.Consultation
	if err := row.Scan(&c.ID, &c.AccountID, &c.ServiceTypeID, &c.Status, &c.CreatedAt); err != nil {
		return models.Consultation{}, mapError(err)
	}
	return c, nil
}
