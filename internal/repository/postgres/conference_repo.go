package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conferencecentral/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const conferenceColumns = `id, organizer_user_id, name, description, city, topics, start_date, end_date, month, max_attendees, seats_available, created_at, updated_at`

var conferenceQueryColumns = map[string]column{
	domain.PropCity:           {name: "city"},
	domain.PropTopics:         {name: "topics", array: true},
	domain.PropMonth:          {name: "month"},
	domain.PropMaxAttendees:   {name: "max_attendees"},
	domain.PropName:           {name: "name"},
	domain.PropSeatsAvailable: {name: "seats_available"},
}

type conferenceRepository struct {
	DB *sql.DB
}

// NewConferenceRepository returns a domain.ConferenceRepository implemented with Postgres.
func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner) (*domain.Conference, error) {
	c := &domain.Conference{}
	var startNull, endNull sql.NullTime
	var topics []string
	if err := row.Scan(
		&c.ID, &c.OrganizerUserID, &c.Name, &c.Description, &c.City, pq.Array(&topics),
		&startNull, &endNull, &c.Month, &c.MaxAttendees, &c.SeatsAvailable, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Topics = topics
	if c.Topics == nil {
		c.Topics = []string{}
	}
	if startNull.Valid {
		c.StartDate = &startNull.Time
	}
	if endNull.Valid {
		c.EndDate = &endNull.Time
	}
	return c, nil
}

func collectConferences(rows *sql.Rows) ([]*domain.Conference, error) {
	defer rows.Close()
	confs := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		confs = append(confs, c)
	}
	return confs, rows.Err()
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO conferences (id, organizer_user_id, name, description, city, topics, start_date, end_date, month, max_attendees, seats_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		c.ID, c.OrganizerUserID, c.Name, c.Description, c.City, pq.Array(c.Topics),
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: conference %s already exists", domain.ErrConflict, c.ID)
		}
		return err
	}
	return nil
}

func (r *conferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	return r.get(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE id = $1`, id)
}

func (r *conferenceRepository) GetForUpdate(ctx context.Context, id string) (*domain.Conference, error) {
	return r.get(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE id = $1 FOR UPDATE`, id)
}

func (r *conferenceRepository) get(ctx context.Context, query, id string) (*domain.Conference, error) {
	c, err := scanConference(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) Update(ctx context.Context, c *domain.Conference) error {
	query := `
		UPDATE conferences
		SET name = $1, description = $2, city = $3, topics = $4, start_date = $5, end_date = $6,
			month = $7, max_attendees = $8, seats_available = $9, updated_at = NOW()
		WHERE id = $10
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query,
		c.Name, c.Description, c.City, pq.Array(c.Topics), c.StartDate, c.EndDate,
		c.Month, c.MaxAttendees, c.SeatsAvailable, c.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, organizerUserID string) ([]*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE organizer_user_id = $1 ORDER BY name`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, organizerUserID)
	if err != nil {
		return nil, err
	}
	return collectConferences(rows)
}

func (r *conferenceRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	if len(ids) == 0 {
		return []*domain.Conference{}, nil
	}
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE id = ANY($1)`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return collectConferences(rows)
}

func (r *conferenceRepository) Query(ctx context.Context, plan domain.QueryPlan) ([]*domain.Conference, error) {
	clause, args, err := renderPlan(plan, domain.KindConference, conferenceQueryColumns)
	if errors.Is(err, errNoBranches) {
		return []*domain.Conference{}, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT `+conferenceColumns+` FROM conferences `+clause, args...)
	if err != nil {
		return nil, err
	}
	return collectConferences(rows)
}
