package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencecentral/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type speakerRepository struct {
	DB *sql.DB
}

// NewSpeakerRepository returns a domain.SpeakerRepository implemented with Postgres.
func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{DB: db}
}

func (r *speakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO speakers (id, name, bio, organization, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, s.Bio, s.Organization, s.CreatedAt)
	return err
}

func (r *speakerRepository) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	s := &domain.Speaker{}
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id, name, bio, organization, created_at FROM speakers WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Bio, &s.Organization, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *speakerRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Speaker, error) {
	if len(ids) == 0 {
		return []*domain.Speaker{}, nil
	}
	return r.list(ctx, `SELECT id, name, bio, organization, created_at FROM speakers WHERE id = ANY($1) ORDER BY name`, pq.Array(ids))
}

func (r *speakerRepository) List(ctx context.Context) ([]*domain.Speaker, error) {
	return r.list(ctx, `SELECT id, name, bio, organization, created_at FROM speakers ORDER BY name`)
}

func (r *speakerRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Speaker, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	speakers := make([]*domain.Speaker, 0)
	for rows.Next() {
		var s domain.Speaker
		if err := rows.Scan(&s.ID, &s.Name, &s.Bio, &s.Organization, &s.CreatedAt); err != nil {
			return nil, err
		}
		speakers = append(speakers, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return speakers, nil
}
