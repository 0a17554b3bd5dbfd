package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func announcementRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "type", "category", "tag", "superfeatured", "active", "featured_image", "date_entered", "updated_at"}).
		AddRow(int64(101), "Fall Retreat", "Annual retreat", "event", "community", "retreat", false, true, nil, time.Now(), time.Now())
}

func TestAnnouncementRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, NewContentIDs(db))

	mock.ExpectQuery("SELECT (.+) FROM announcements WHERE").
		WillReturnRows(announcementRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM announcements WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	announcements, total, err := repo.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Len(t, announcements, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, NewContentIDs(db))

	mock.ExpectQuery("SELECT (.+) FROM announcements WHERE").
		WithArgs("%retreat%").
		WillReturnRows(announcementRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM announcements WHERE`).
		WithArgs("%retreat%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	announcements, total, err := repo.List(context.Background(), models.AnnouncementFilter{Search: "retreat"})
	require.NoError(t, err)
	assert.Len(t, announcements, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryCreateAllocatesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, NewContentIDs(db))

	mock.ExpectQuery(`SELECT nextval\('content_ids'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(202)))
	mock.ExpectExec("INSERT INTO announcements").
		WillReturnResult(sqlmock.NewResult(1, 1))

	announcement := &models.Announcement{Title: "Prayer Night", Description: "Weekly", Type: models.AnnouncementTypeAnnouncement, Active: true}
	err := repo.Create(context.Background(), announcement)
	require.NoError(t, err)
	assert.Equal(t, int64(202), announcement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryBulkSetActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, NewContentIDs(db))

	mock.ExpectExec("UPDATE announcements SET active").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.BulkSetActive(context.Background(), []int64{1, 2, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryHighlights(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, NewContentIDs(db))

	rows := announcementRows().
		AddRow(int64(102), "New Series", "Starting Sunday", "announcement", "worship", "", true, true, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM announcements").
		WillReturnRows(rows)

	highlights, err := repo.Highlights(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Len(t, highlights, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
