package service

import (
	"errors"
	"testing"
	"wellness_backend/internal/repository"
	"wellness_backend/internal/util"
	"wellness_backend/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig(logger.Silent))
	require.NoError(t, err)
	return db, mock
}

func TestInTxRetriesTransientErrors(t *testing.T) {
	db, mock := newMockDB(t)
	for i := 0; i < txAttempts; i++ {
		mock.ExpectBegin().WillReturnError(errors.New("connection reset by peer"))
	}

	calls := 0
	err := inTx(db, "test op", func(tx *gorm.DB) error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.True(t, util.IsTransient(err))
	assert.Equal(t, util.CodeStorageUnavailable, util.CodeOf(err))
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxDoesNotRetryBusinessErrors(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := inTx(db, "test op", func(tx *gorm.DB) error {
		calls++
		return util.ErrAlreadyAccepted
	})
	assert.True(t, errors.Is(err, util.ErrAlreadyAccepted))
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageFailureSurfacesAsTransient(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `mission_definitions`").WillReturnError(errors.New("i/o timeout"))

	svc := NewMissionService(repository.NewMissionRepository(db), repository.NewPointRepository(db), repository.NewTrackingRepository(db), nil, db)
	_, err := svc.ListCatalog()
	require.Error(t, err)
	assert.Equal(t, util.KindTransient, util.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackingWriteRollsBackWhenRecomputeFails(t *testing.T) {
	db, mock := newMockDB(t)
	for i := 0; i < txAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `tracking_entries`").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("SELECT (.+) FROM `user_missions`").WillReturnError(errors.New("Deadlock found when trying to get lock"))
		mock.ExpectRollback()
	}

	trackingRepo := repository.NewTrackingRepository(db)
	missions := NewMissionService(repository.NewMissionRepository(db), repository.NewPointRepository(db), trackingRepo, nil, db)
	tracking := NewTrackingService(trackingRepo, missions, NewAggregator(trackingRepo), db)

	res, err := tracking.LogWater(1, WaterRequest{AmountMl: 250})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, util.IsTransient(err))
	// 没有任何一次提交，重试不会产生重复记录
	assert.NoError(t, mock.ExpectationsWereMet())
}
