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

const sessionColumns = `id, conference_id, websafe_conference_key, name, highlights, duration, type_of_session, date, start_time, speaker_keys, created_at`

var sessionQueryColumns = map[string]column{
	domain.PropWebsafeConferenceKey: {name: "websafe_conference_key"},
	domain.PropStartTime:            {name: "start_time"},
	domain.PropTypeOfSession:        {name: "type_of_session"},
	domain.PropName:                 {name: "name"},
}

type sessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository returns a domain.SessionRepository implemented with Postgres.
func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{DB: db}
}

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	var wsck, typeOfSession string
	var dateNull sql.NullTime
	var startNull sql.NullInt64
	var speakerKeys []string
	if err := row.Scan(
		&s.ID, &s.ConferenceID, &wsck, &s.Name, &s.Highlights, &s.Duration,
		&typeOfSession, &dateNull, &startNull, pq.Array(&speakerKeys), &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	confKey, err := domain.DecodeKeyOfKind(wsck, domain.KindConference)
	if err != nil {
		return nil, fmt.Errorf("session %s: stored conference key: %w", s.ID, err)
	}
	s.ConferenceKey = confKey
	if s.TypeOfSession, err = domain.ParseTypeOfSession(typeOfSession); err != nil {
		return nil, fmt.Errorf("session %s: stored type: %w", s.ID, err)
	}
	if dateNull.Valid {
		s.Date = &dateNull.Time
	}
	if startNull.Valid {
		start := int(startNull.Int64)
		s.StartTime = &start
	}
	s.SpeakerKeys = speakerKeys
	if s.SpeakerKeys == nil {
		s.SpeakerKeys = []string{}
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]*domain.Session, error) {
	defer rows.Close()
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO sessions (id, conference_id, websafe_conference_key, name, highlights, duration, type_of_session, date, start_time, speaker_keys, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		s.ID, s.ConferenceID, s.WebsafeConferenceKey(), s.Name, s.Highlights, s.Duration,
		string(s.TypeOfSession), s.Date, s.StartTime, pq.Array(s.SpeakerKeys), s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session %s already exists", domain.ErrConflict, s.ID)
		}
		return err
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ListByConference(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE conference_id = $1 ORDER BY start_time NULLS LAST, created_at, id`
	return r.list(ctx, query, conferenceID)
}

func (r *sessionRepository) ListByConferenceAndType(ctx context.Context, conferenceID string, t domain.TypeOfSession) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE conference_id = $1 AND type_of_session = $2 ORDER BY start_time NULLS LAST, created_at, id`
	return r.list(ctx, query, conferenceID, string(t))
}

func (r *sessionRepository) ListBySpeaker(ctx context.Context, websafeSpeakerKey string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE $1 = ANY(speaker_keys) ORDER BY websafe_conference_key, start_time NULLS LAST, id`
	return r.list(ctx, query, websafeSpeakerKey)
}

func (r *sessionRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Session, error) {
	if len(ids) == 0 {
		return []*domain.Session{}, nil
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ANY($1)`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *sessionRepository) Query(ctx context.Context, plan domain.QueryPlan) ([]*domain.Session, error) {
	clause, args, err := renderPlan(plan, domain.KindSession, sessionQueryColumns)
	if errors.Is(err, errNoBranches) {
		return []*domain.Session{}, nil
	}
	if err != nil {
		return nil, err
	}
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions `+clause, args...)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}
