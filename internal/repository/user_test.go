package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db
}

// UserRepositoryTestSuite exercises the user store against SQLite.
type UserRepositoryTestSuite struct {
	suite.Suite
	repo *UserRepository
}

func (s *UserRepositoryTestSuite) SetupTest() {
	s.repo = NewUserRepository(newTestDB(s.T()))
}

func (s *UserRepositoryTestSuite) TestCreateAndGet() {
	ctx := context.Background()
	user := &model.User{Name: "Asha", Email: "asha@x.com", PasswordHash: "$argon2id$stub"}

	require.NoError(s.T(), s.repo.Create(ctx, user))
	assert.NotEmpty(s.T(), user.ID)
	assert.False(s.T(), user.CreatedAt.IsZero())

	byEmail, err := s.repo.GetByEmail(ctx, "asha@x.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, byEmail.ID)
	assert.Equal(s.T(), "Asha", byEmail.Name)
	assert.Equal(s.T(), "$argon2id$stub", byEmail.PasswordHash)

	byID, err := s.repo.GetByID(ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "asha@x.com", byID.Email)
	assert.True(s.T(), user.CreatedAt.Equal(byID.CreatedAt), "created_at round trip: %v vs %v", user.CreatedAt, byID.CreatedAt)
}

func (s *UserRepositoryTestSuite) TestDuplicateEmail() {
	ctx := context.Background()
	require.NoError(s.T(), s.repo.Create(ctx, &model.User{Name: "A", Email: "dup@x.com", PasswordHash: "h"}))

	second := &model.User{Name: "B", Email: "dup@x.com", PasswordHash: "h"}
	err := s.repo.Create(ctx, second)
	assert.ErrorIs(s.T(), err, ErrDuplicateEmail)
	assert.Empty(s.T(), second.ID)

	var count int
	require.NoError(s.T(), s.repo.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(s.T(), 1, count)
}

func (s *UserRepositoryTestSuite) TestNotFound() {
	ctx := context.Background()

	_, err := s.repo.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(s.T(), err, ErrUserNotFound)

	_, err = s.repo.GetByID(ctx, "missing")
	assert.ErrorIs(s.T(), err, ErrUserNotFound)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

func TestIsDuplicateEntryError(t *testing.T) {
	assert.False(t, isDuplicateEntryError(nil))
	assert.False(t, isDuplicateEntryError(ErrUserNotFound))
	assert.True(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'uq_users_email'"}))
	assert.False(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1045, Message: "Access denied"}))
	assert.True(t, isDuplicateEntryError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
}

func TestNewIDIsTimeOrdered(t *testing.T) {
	prev, err := NewID()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		next, err := NewID()
		require.NoError(t, err)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewDBUnsupportedDriver(t *testing.T) {
	_, err := NewDB(context.Background(), "oracle", "")
	assert.Error(t, err)
}
