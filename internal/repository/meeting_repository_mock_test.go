package repository

import (
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockMeetingRepo(t *testing.T) (MeetingRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewMeetingRepository(db), mock
}

func TestMeetingRepository_PublishIsSingleConditionalUpdate(t *testing.T) {
	repo, mock := newMockMeetingRepo(t)

	mock.ExpectExec("UPDATE `meetings` SET .*`governance_snapshot`.*`published_at`.*`status`.* WHERE \\(id = \\? AND status = \\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Publish(5, datatypes.JSON(`{"quorum_percentage":50}`), time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_PublishLostRace(t *testing.T) {
	repo, mock := newMockMeetingRepo(t)

	mock.ExpectExec("UPDATE `meetings` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Publish(5, datatypes.JSON(`{}`), time.Now())
	require.True(t, errors.Is(err, ErrStaleState))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_SaveSnapshotGuardsPublished(t *testing.T) {
	repo, mock := newMockMeetingRepo(t)

	mock.ExpectExec("UPDATE `meetings` SET .* WHERE \\(id = \\? AND status = \\?\\) AND governance_snapshot IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveSnapshot(5, "PUBLISHED", datatypes.JSON(`{}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_DatabaseError(t *testing.T) {
	repo, mock := newMockMeetingRepo(t)

	mock.ExpectExec("UPDATE `meetings` SET").
		WillReturnError(errors.New("connection reset"))

	err := repo.Complete(5, time.Now())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrStaleState))
}
