package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"conferencecentral/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conferenceRowColumns = []string{"id", "organizer_user_id", "name", "description", "city", "topics", "start_date", "end_date", "month", "max_attendees", "seats_available", "created_at", "updated_at"}

func TestConferenceRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		conf    *domain.Conference
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			conf: &domain.Conference{
				ID: "conf-1", OrganizerUserID: "user-1", Name: "GopherCon", City: "Berlin",
				Topics: []string{"Go"}, StartDate: &start, Month: 6, MaxAttendees: 100, SeatsAvailable: 100,
				CreatedAt: now, UpdatedAt: now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO conferences \(id, organizer_user_id, name`).
					WithArgs("conf-1", "user-1", "GopherCon", "", "Berlin", pq.Array([]string{"Go"}),
						start, nil, 6, 100, 100, now, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate id is a conflict",
			conf: &domain.Conference{ID: "conf-1", OrganizerUserID: "user-1", Name: "Dup"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO conferences`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewConferenceRepository(db)
			err = repo.Create(ctx, tt.conf)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConferenceRepository_CreateGeneratesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO conferences`).WillReturnResult(sqlmock.NewResult(0, 1))
	c := &domain.Conference{OrganizerUserID: "user-1", Name: "New"}
	require.NoError(t, NewConferenceRepository(db).Create(context.Background(), c))
	assert.Len(t, c.ID, 36)
}

func TestConferenceRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Conference
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM conferences WHERE id = \$1$`).
					WithArgs("conf-1").
					WillReturnRows(sqlmock.NewRows(conferenceRowColumns).
						AddRow("conf-1", "user-1", "GopherCon", "desc", "Berlin", "{Go,Cloud}", start, nil, 6, 100, 40, now, now))
			},
			want: &domain.Conference{
				ID: "conf-1", OrganizerUserID: "user-1", Name: "GopherCon", Description: "desc", City: "Berlin",
				Topics: []string{"Go", "Cloud"}, StartDate: &start, Month: 6, MaxAttendees: 100, SeatsAvailable: 40,
				CreatedAt: now, UpdatedAt: now,
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM conferences`).WithArgs("conf-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewConferenceRepository(db).GetByID(ctx, "conf-1")
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConferenceRepository_GetForUpdateLocksRowInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM conferences WHERE id = \$1 FOR UPDATE`).
		WithArgs("conf-1").
		WillReturnRows(sqlmock.NewRows(conferenceRowColumns).
			AddRow("conf-1", "user-1", "GopherCon", "", "Berlin", "{}", nil, nil, 0, 1, 1, now, now))
	mock.ExpectCommit()

	repo := NewConferenceRepository(db)
	tr := NewTransactor(db, 1, 0, discardLogger())
	err = tr.RunInTx(context.Background(), func(ctx context.Context) error {
		c, err := repo.GetForUpdate(ctx, "conf-1")
		if err != nil {
			return err
		}
		assert.Equal(t, []string{}, c.Topics)
		assert.Nil(t, c.StartDate)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConferenceRepository_Update(t *testing.T) {
	ctx := context.Background()
	c := &domain.Conference{ID: "conf-1", Name: "N", City: "C", Topics: []string{"a"}, Month: 0, MaxAttendees: 10, SeatsAvailable: 9}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE conferences`).
					WithArgs("N", "", "C", pq.Array([]string{"a"}), nil, nil, 0, 10, 9, "conf-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "no rows",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE conferences`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewConferenceRepository(db).Update(ctx, c)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConferenceRepository_Query(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("renders plan", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		plan := domain.QueryPlan{
			Kind: domain.KindConference,
			Where: []domain.Conjunction{{
				{Property: domain.PropSeatsAvailable, Operator: domain.OpLTEQ, Value: 5},
				{Property: domain.PropSeatsAvailable, Operator: domain.OpGT, Value: 0},
			}},
			Order: []string{domain.PropSeatsAvailable, domain.PropName},
		}
		mock.ExpectQuery(regexp.QuoteMeta(`FROM conferences WHERE (seats_available <= $1 AND seats_available > $2) ORDER BY seats_available, name`)).
			WithArgs(5, 0).
			WillReturnRows(sqlmock.NewRows(conferenceRowColumns).
				AddRow("conf-1", "user-1", "Almost full", "", "Berlin", "{}", nil, nil, 0, 10, 2, now, now))

		got, err := NewConferenceRepository(db).Query(ctx, plan)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Almost full", got[0].Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("topic inequality orders by smallest topic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		plan := domain.QueryPlan{
			Kind:  domain.KindConference,
			Where: []domain.Conjunction{{{Property: domain.PropTopics, Operator: domain.OpNE, Value: "Go"}}},
			Order: []string{domain.PropTopics, domain.PropName},
		}
		mock.ExpectQuery(regexp.QuoteMeta(`FROM conferences WHERE ($1 <> ANY(topics)) ORDER BY (SELECT min(v) FROM unnest(topics) AS v), name`)).
			WithArgs("Go").
			WillReturnRows(sqlmock.NewRows(conferenceRowColumns).
				AddRow("conf-2", "user-1", "Rust Summit", "", "Paris", "{Rust,Web}", nil, nil, 0, 100, 100, now, now))

		got, err := NewConferenceRepository(db).Query(ctx, plan)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"Rust", "Web"}, got[0].Topics)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty plan does not hit the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		got, err := NewConferenceRepository(db).Query(ctx, domain.QueryPlan{Kind: domain.KindConference})
		require.NoError(t, err)
		assert.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConferenceRepository_ListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM conferences WHERE id = ANY\(\$1\)`).
		WithArgs(pq.Array([]string{"a", "b"})).
		WillReturnRows(sqlmock.NewRows(conferenceRowColumns).
			AddRow("b", "u", "B", "", "", "{}", nil, nil, 0, 0, 0, now, now).
			AddRow("a", "u", "A", "", "", "{}", nil, nil, 0, 0, 0, now, now))

	repo := NewConferenceRepository(db)
	got, err := repo.ListByIDs(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	empty, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}
