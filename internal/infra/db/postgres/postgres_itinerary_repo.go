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

var _ repository.ItineraryRepository = (*itineraryRepo)(nil)

// itineraryRepo stores the tree arena style: itineraries, itinerary_days and
// itinerary_places are independently keyed rows chained by foreign keys.
type itineraryRepo struct {
	pool *pgxpool.Pool
}

func NewItineraryRepo(pool *pgxpool.Pool) *itineraryRepo {
	return &itineraryRepo{pool: pool}
}

func (r *itineraryRepo) Create(ctx context.Context, tx repository.Tx, it *model.Itinerary) error {
	const qIt = `
INSERT INTO itineraries (id, owner_id, title, summary, start_date, end_date,
  trip_days, nights, people_count, tags, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`

	if _, err := execSQL(ctx, r.pool, tx, qIt,
		it.ID, it.OwnerID, it.Title, it.Summary, it.StartDate, it.EndDate,
		it.TripDays, it.Nights, it.PeopleCount, it.Tags, it.CreatedAt, it.UpdatedAt); err != nil {
		return err
	}
	for i := range it.Days {
		if err := r.insertDay(ctx, tx, &it.Days[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *itineraryRepo) insertDay(ctx context.Context, tx repository.Tx, day *model.ItineraryDay) error {
	const qDay = `
INSERT INTO itinerary_days (id, itinerary_id, day_number, visit_date)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET day_number=$3, visit_date=$4;`

	if _, err := execSQL(ctx, r.pool, tx, qDay, day.ID, day.ItineraryID, day.DayNumber, day.Date); err != nil {
		return err
	}
	for _, p := range day.Places {
		if err := r.upsertPlace(ctx, tx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *itineraryRepo) upsertPlace(ctx context.Context, tx repository.Tx, p model.ItineraryPlace) error {
	const qPlace = `
INSERT INTO itinerary_places (id, day_id, name, external_id, address,
  latitude, longitude, url, description, visit_sequence, visit_time)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  day_id=$2, name=$3, external_id=$4, address=$5,
  latitude=$6, longitude=$7, url=$8, description=$9,
  visit_sequence=$10, visit_time=$11;`

	_, err := execSQL(ctx, r.pool, tx, qPlace,
		p.ID, p.DayID, p.Name, p.ExternalID, p.Address,
		p.Latitude, p.Longitude, p.URL, p.Description, p.VisitSequence, p.VisitTime)
	return err
}

// Update persists the whole tree and prunes rows the tree no longer contains.
// Run it inside a transaction; the patch contract promises all-or-nothing.
func (r *itineraryRepo) Update(ctx context.Context, tx repository.Tx, it *model.Itinerary) error {
	const qIt = `
UPDATE itineraries SET
  title=$2, summary=$3, start_date=$4, end_date=$5,
  trip_days=$6, nights=$7, people_count=$8, tags=$9, updated_at=$10
WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, qIt,
		it.ID, it.Title, it.Summary, it.StartDate, it.EndDate,
		it.TripDays, it.Nights, it.PeopleCount, it.Tags, it.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	dayIDs := make([]string, 0, len(it.Days))
	for i := range it.Days {
		if err := r.insertDay(ctx, tx, &it.Days[i]); err != nil {
			return err
		}
		dayIDs = append(dayIDs, it.Days[i].ID)

		placeIDs := make([]string, 0, len(it.Days[i].Places))
		for _, p := range it.Days[i].Places {
			placeIDs = append(placeIDs, p.ID)
		}
		if _, err := execSQL(ctx, r.pool, tx,
			`DELETE FROM itinerary_places WHERE day_id=$1 AND NOT (id = ANY($2));`,
			it.Days[i].ID, placeIDs); err != nil {
			return err
		}
	}
	// Places of removed days go with them via ON DELETE CASCADE.
	if _, err := execSQL(ctx, r.pool, tx,
		`DELETE FROM itinerary_days WHERE itinerary_id=$1 AND NOT (id = ANY($2));`,
		it.ID, dayIDs); err != nil {
		return err
	}
	return nil
}

func (r *itineraryRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Itinerary, error) {
	const qIt = `
SELECT id, owner_id, title, summary, start_date, end_date,
       trip_days, nights, people_count, tags, created_at, updated_at
  FROM itineraries WHERE id=$1;`

	row, err := pickRow(ctx, r.pool, tx, qIt, id)
	if err != nil {
		return nil, err
	}
	it, err := scanItinerary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const qDays = `
SELECT id, itinerary_id, day_number, visit_date
  FROM itinerary_days WHERE itinerary_id=$1 ORDER BY day_number;`

	dayRows, err := pickRows(ctx, r.pool, tx, qDays, id)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var d model.ItineraryDay
		if err := dayRows.Scan(&d.ID, &d.ItineraryID, &d.DayNumber, &d.Date); err != nil {
			return nil, err
		}
		it.Days = append(it.Days, d)
	}
	if err := dayRows.Err(); err != nil {
		return nil, err
	}

	const qPlaces = `
SELECT p.id, p.day_id, p.name, p.external_id, p.address,
       p.latitude, p.longitude, p.url, p.description, p.visit_sequence, p.visit_time
  FROM itinerary_places p
  JOIN itinerary_days d ON d.id = p.day_id
 WHERE d.itinerary_id=$1
 ORDER BY d.day_number, p.visit_sequence;`

	placeRows, err := pickRows(ctx, r.pool, tx, qPlaces, id)
	if err != nil {
		return nil, err
	}
	defer placeRows.Close()

	byDay := make(map[string]*model.ItineraryDay, len(it.Days))
	for i := range it.Days {
		byDay[it.Days[i].ID] = &it.Days[i]
	}
	for placeRows.Next() {
		var p model.ItineraryPlace
		if err := placeRows.Scan(&p.ID, &p.DayID, &p.Name, &p.ExternalID, &p.Address,
			&p.Latitude, &p.Longitude, &p.URL, &p.Description, &p.VisitSequence, &p.VisitTime); err != nil {
			return nil, err
		}
		if d, ok := byDay[p.DayID]; ok {
			d.Places = append(d.Places, p)
		}
	}
	return it, placeRows.Err()
}

func (r *itineraryRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, offset, limit int) ([]*model.Itinerary, error) {
	const q = `
SELECT id, owner_id, title, summary, start_date, end_date,
       trip_days, nights, people_count, tags, created_at, updated_at
  FROM itineraries WHERE owner_id=$1
 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`

	rows, err := pickRows(ctx, r.pool, tx, q, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanItinerary(row pgx.Row) (*model.Itinerary, error) {
	var it model.Itinerary
	err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Summary, &it.StartDate, &it.EndDate,
		&it.TripDays, &it.Nights, &it.PeopleCount, &it.Tags, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
