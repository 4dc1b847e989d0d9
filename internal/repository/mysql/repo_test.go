package mysql

import (
	"context"
	"testing"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMessageDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &MessageRepository{DB: db}

	mock.ExpectExec("DELETE FROM `messages`").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 5))

	mock.ExpectExec("DELETE FROM `messages`").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageListVisibleFiltersBlocked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &MessageRepository{DB: db}

	rows := sqlmock.NewRows([]string{"id", "channel_id", "author_id", "author_name", "content", "created_at"}).
		AddRow(1, 3, 9, "Ana", "hello", time.Now())
	mock.ExpectQuery("SELECT messages.\\* FROM `messages` JOIN users u ON u.id = messages.author_id WHERE messages.channel_id = \\? AND u.blocked = \\?").
		WithArgs(3, false).
		WillReturnRows(rows)

	list, err := repo.ListVisible(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsMember(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CommunityMemberRepository{DB: db}

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `community_members`").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.IsMember(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinAlreadyMember(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CommunityMemberRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `communities`.*FOR SHARE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO `community_members`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	changed, err := repo.Join(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinMissingCommunity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CommunityMemberRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `communities`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 1, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAlreadyResolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &SubmissionRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `submissions` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `submissions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Resolve(context.Background(), 4, model.SubmissionApproved, 1, time.Now())
	assert.ErrorIs(t, err, repository.ErrStateChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveUnknownSubmission(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &SubmissionRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `submissions` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `submissions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := repo.Resolve(context.Background(), 4, model.SubmissionRejected, 1, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func submissionRows(status model.SubmissionStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "submitted_by", "name", "lat", "lng", "status"}).
		AddRow(4, 2, "Park Bars", 40.41, -3.70, string(status))
}

func TestResolveApproveWritesOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &SubmissionRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `submissions` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `submissions`").WillReturnRows(submissionRows(model.SubmissionApproved))
	mock.ExpectExec("INSERT INTO `spot_outbox`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sub, err := repo.Resolve(context.Background(), 4, model.SubmissionApproved, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionApproved, sub.Status)
	assert.Equal(t, "Park Bars", sub.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRejectSkipsOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &SubmissionRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `submissions` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `submissions`").WillReturnRows(submissionRows(model.SubmissionRejected))
	mock.ExpectCommit()

	sub, err := repo.Resolve(context.Background(), 4, model.SubmissionRejected, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionRejected, sub.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxMarkFailedIncrementsRetry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OutboxRepository{DB: db}

	mock.ExpectExec("UPDATE `spot_outbox` SET .*`retry`=retry \\+ 1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkFailed(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), repository.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), repository.ErrDuplicate)
}
