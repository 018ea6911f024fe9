package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

var _ repository.TravelSurveyRepository = (*surveyRepo)(nil)

type surveyRepo struct {
	pool *pgxpool.Pool
}

func NewSurveyRepo(pool *pgxpool.Pool) *surveyRepo {
	return &surveyRepo{pool: pool}
}

func (r *surveyRepo) Save(ctx context.Context, tx repository.Tx, s *model.TravelSurvey) error {
	const q = `
INSERT INTO travel_surveys (id, owner_id, destination, start_date, end_date,
  people_count, budget_level, themes, free_text, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  destination=$3, start_date=$4, end_date=$5, people_count=$6,
  budget_level=$7, themes=$8, free_text=$9, updated_at=$11;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.OwnerID, s.Destination, s.StartDate, s.EndDate,
		s.PeopleCount, s.BudgetLevel, s.Themes, s.FreeText, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *surveyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TravelSurvey, error) {
	const q = `
SELECT id, owner_id, destination, start_date, end_date,
       people_count, budget_level, themes, free_text, created_at, updated_at
  FROM travel_surveys WHERE id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	s, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *surveyRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, offset, limit int) ([]*model.TravelSurvey, error) {
	const q = `
SELECT id, owner_id, destination, start_date, end_date,
       people_count, budget_level, themes, free_text, created_at, updated_at
  FROM travel_surveys WHERE owner_id=$1
 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`

	rows, err := pickRows(ctx, r.pool, tx, q, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TravelSurvey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *surveyRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM travel_surveys WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSurvey(row pgx.Row) (*model.TravelSurvey, error) {
	var s model.TravelSurvey
	err := row.Scan(&s.ID, &s.OwnerID, &s.Destination, &s.StartDate, &s.EndDate,
		&s.PeopleCount, &s.BudgetLevel, &s.Themes, &s.FreeText, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
