package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"conferencecentral/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO speakers \(id, name, bio, organization, created_at\)`).
		WithArgs(sqlmock.AnyArg(), "Rob", "bio", "Go team", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &domain.Speaker{Name: "Rob", Bio: "bio", Organization: "Go team", CreatedAt: now}
	require.NoError(t, NewSpeakerRepository(db).Create(context.Background(), s))
	assert.NotEmpty(t, s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpeakerRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, bio, organization, created_at FROM speakers WHERE id = \$1`).
					WithArgs("sp-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio", "organization", "created_at"}).
						AddRow("sp-1", "Rob", "", "", now))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM speakers`).WillReturnError(sql.ErrNoRows)
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
			got, err := NewSpeakerRepository(db).GetByID(ctx, "sp-1")
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Rob", got.Name)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSpeakerRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "name", "bio", "organization", "created_at"}
	mock.ExpectQuery(`FROM speakers ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("a", "Ada", "", "", now).AddRow("b", "Rob", "", "", now))
	mock.ExpectQuery(`FROM speakers WHERE id = ANY\(\$1\) ORDER BY name`).
		WithArgs(pq.Array([]string{"b"})).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b", "Rob", "", "", now))

	repo := NewSpeakerRepository(db)
	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ada", all[0].Name)

	some, err := repo.ListByIDs(context.Background(), []string{"b"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
