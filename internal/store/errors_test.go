package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockStore wires a sqlmock connection into the store so driver
// failures can be simulated.
func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &SQLiteStore{db: db}, mock
}

func TestStoreNotOpened(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore()

	_, err := s.ListExperiments(ctx, nil, 10, Sort{})
	assert.ErrorContains(t, err, "database not opened")

	_, err = s.GetExperiment(ctx, "exp-1")
	assert.ErrorContains(t, err, "database not opened")

	_, err = s.DeleteExperiments(ctx, []string{"exp-1"})
	assert.ErrorContains(t, err, "database not opened")

	_, err = s.AnnotationRanges(ctx)
	assert.ErrorContains(t, err, "database not opened")

	_, err = s.CountExperiments(ctx)
	assert.ErrorContains(t, err, "database not opened")

	assert.NoError(t, s.Close())
}

func TestListExperimentsQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, description").WillReturnError(assert.AnError)

	_, err := s.ListExperiments(context.Background(), nil, 10, Sort{Column: "createdAt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list experiments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExperimentsExecError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM experiments").WillReturnError(assert.AnError)

	_, err := s.DeleteExperiments(context.Background(), []string{"exp-1", "exp-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete experiments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExperimentsRowsAffected(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM experiments").
		WithArgs("exp-1", "exp-2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := s.DeleteExperiments(context.Background(), []string{"exp-1", "exp-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnotationRangesQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT name, MIN").WillReturnError(assert.AnError)

	_, err := s.AnnotationRanges(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query annotation ranges")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertExperimentBeginError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(assert.AnError)

	err := s.InsertExperiment(context.Background(), &Experiment{Name: "exp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}
