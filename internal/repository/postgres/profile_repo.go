package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conferencecentral/internal/domain"

	"github.com/lib/pq"
)

const profileColumns = `user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_wishlist_keys`

type profileRepository struct {
	DB *sql.DB
}

// NewProfileRepository returns a domain.ProfileRepository implemented with Postgres.
func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var size string
	var attending, wishlist []string
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.MainEmail, &size, pq.Array(&attending), pq.Array(&wishlist)); err != nil {
		return nil, err
	}
	var err error
	if p.TeeShirtSize, err = domain.ParseTeeShirtSize(size); err != nil {
		return nil, fmt.Errorf("profile %s: stored tee shirt size: %w", p.UserID, err)
	}
	p.ConferenceKeysToAttend = attending
	if p.ConferenceKeysToAttend == nil {
		p.ConferenceKeysToAttend = []string{}
	}
	p.SessionWishlistKeys = wishlist
	if p.SessionWishlistKeys == nil {
		p.SessionWishlistKeys = []string{}
	}
	return p, nil
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
}

func (r *profileRepository) GetForUpdate(ctx context.Context, userID string) (*domain.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *profileRepository) FindByDisplayName(ctx context.Context, displayName string) (*domain.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE display_name = $1 ORDER BY user_id LIMIT 1`, displayName)
}

func (r *profileRepository) get(ctx context.Context, query string, arg string) (*domain.Profile, error) {
	p, err := scanProfile(conn(ctx, r.DB).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Insert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_wishlist_keys)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize),
		pq.Array(p.ConferenceKeysToAttend), pq.Array(p.SessionWishlistKeys),
	)
	return err
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, tee_shirt_size = $2, conference_keys_to_attend = $3, session_wishlist_keys = $4
		WHERE user_id = $5
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query,
		p.DisplayName, string(p.TeeShirtSize),
		pq.Array(p.ConferenceKeysToAttend), pq.Array(p.SessionWishlistKeys), p.UserID,
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

func (r *profileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*domain.Profile, error) {
	if len(userIDs) == 0 {
		return []*domain.Profile{}, nil
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*domain.Profile, 0, len(userIDs))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) CountWishlisting(ctx context.Context, websafeSessionKey string) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM profiles WHERE $1 = ANY(session_wishlist_keys)`, websafeSessionKey,
	).Scan(&n)
	return n, err
}
