package application_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/zero-sllm-auth/internal/application"
	"github.com/oksasatya/zero-sllm-auth/internal/domain/entity"
	"github.com/oksasatya/zero-sllm-auth/internal/domain/repository"
	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/migrations"
	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/sqlite"
	"github.com/oksasatya/zero-sllm-auth/pkg/helpers"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, events application.EventPublisher) (*application.Service, *sqlite.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, migrations.Run(migrations.DialectSQLite, path, "", quietLogger()))

	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Use the minimum cost for fast tests.
	return application.NewService(db.Users(), quietLogger(), events, bcrypt.MinCost, time.Second), db
}

func countByEmail(t *testing.T, db *sqlite.DB, email string) int {
	t.Helper()
	var n int
	require.NoError(t, db.SqlDB.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n))
	return n
}

type stubRepo struct {
	getErr    error
	createErr error
	created   int
}

func (r *stubRepo) Create(ctx context.Context, u *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created++
	u.ID = int64(r.created)
	u.CreatedAt = time.Now().UTC()
	return nil
}

func (r *stubRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return nil, repository.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	bodies []any
	err    error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, body)
	return p.err
}

func TestService_Register_Success(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	pub, err := svc.Register(ctx, application.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.NotZero(t, pub.ID)
	assert.Equal(t, "Alice", pub.Name)
	assert.Equal(t, "alice@example.com", pub.Email)
	assert.False(t, pub.CreatedAt.IsZero())

	stored, err := db.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, pub.ID, stored.ID)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "secret123"))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, application.RegisterInput{Name: "User 1", Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, application.RegisterInput{Name: "User 2", Email: "dup@example.com", Password: "password456"})
	assert.ErrorIs(t, err, application.ErrDuplicateEmail)

	assert.Equal(t, 1, countByEmail(t, db, "dup@example.com"))

	stored, err := db.Users().GetByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, "User 1", stored.Name)
}

func TestService_Register_SamePasswordDifferentHashes(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, application.RegisterInput{Name: "A", Email: "a@example.com", Password: "shared-pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, application.RegisterInput{Name: "B", Email: "b@example.com", Password: "shared-pw"})
	require.NoError(t, err)

	a, err := db.Users().GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	b, err := db.Users().GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(a.PasswordHash, "shared-pw"))
	assert.True(t, helpers.CompareHashAndPassword(b.PasswordHash, "shared-pw"))
}

func TestService_Register_ConcurrentSameEmail(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	const callers = 2
	errs := make([]error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Register(ctx, application.RegisterInput{Name: "Racer", Email: "race@example.com", Password: "password123"})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, application.ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)

	assert.Equal(t, 1, countByEmail(t, db, "race@example.com"))
}

func TestService_Register_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   application.RegisterInput
	}{
		{"malformed email", application.RegisterInput{Name: "Bob", Email: "not-an-email", Password: "pw"}},
		{"missing email", application.RegisterInput{Name: "Bob", Password: "pw"}},
		{"blank name", application.RegisterInput{Name: "   ", Email: "bob@example.com", Password: "pw"}},
		{"missing password", application.RegisterInput{Name: "Bob", Email: "bob@example.com"}},
		{"name too long", application.RegisterInput{Name: strings.Repeat("n", 256), Email: "bob@example.com", Password: "pw"}},
		{"multibyte name at limit plus one", application.RegisterInput{Name: strings.Repeat("é", 256), Email: "bob@example.com", Password: "pw"}},
		{"email too long", application.RegisterInput{Name: "Bob", Email: strings.Repeat("a", 60) + "@" + strings.Repeat("b", 60) + "." + strings.Repeat("c", 60) + "." + strings.Repeat("d", 60) + ".com", Password: "pw"}},
		{"NUL in name", application.RegisterInput{Name: "Bo\x00b", Email: "bob@example.com", Password: "pw"}},
		{"password too long", application.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: strings.Repeat("x", 73)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubRepo{}
			svc := application.NewService(repo, quietLogger(), nil, bcrypt.MinCost, time.Second)

			_, err := svc.Register(context.Background(), tc.in)
			assert.ErrorIs(t, err, application.ErrInvalidInput)
			assert.Zero(t, repo.created)
		})
	}
}

func TestService_Register_NameAtColumnWidth(t *testing.T) {
	repo := &stubRepo{}
	svc := application.NewService(repo, quietLogger(), nil, bcrypt.MinCost, time.Second)

	_, err := svc.Register(context.Background(), application.RegisterInput{Name: strings.Repeat("é", 255), Email: "wide@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.created)
}

func TestService_Register_StoreUnavailable(t *testing.T) {
	down := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	t.Run("lookup", func(t *testing.T) {
		repo := &stubRepo{getErr: down}
		svc := application.NewService(repo, quietLogger(), nil, bcrypt.MinCost, time.Second)

		_, err := svc.Register(context.Background(), application.RegisterInput{Name: "C", Email: "c@example.com", Password: "pw"})
		assert.ErrorIs(t, err, application.ErrStoreUnavailable)
		assert.ErrorIs(t, err, down)
		assert.Zero(t, repo.created)
	})

	t.Run("insert", func(t *testing.T) {
		repo := &stubRepo{createErr: down}
		svc := application.NewService(repo, quietLogger(), nil, bcrypt.MinCost, time.Second)

		_, err := svc.Register(context.Background(), application.RegisterInput{Name: "C", Email: "c@example.com", Password: "pw"})
		assert.ErrorIs(t, err, application.ErrStoreUnavailable)
	})
}

func TestService_Register_InsertConflictIsDuplicate(t *testing.T) {
	repo := &stubRepo{createErr: repository.ErrDuplicateEmail}
	svc := application.NewService(repo, quietLogger(), nil, bcrypt.MinCost, time.Second)

	_, err := svc.Register(context.Background(), application.RegisterInput{Name: "D", Email: "d@example.com", Password: "pw"})
	assert.ErrorIs(t, err, application.ErrDuplicateEmail)
}

func TestService_Register_PublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(t, pub)

	u, err := svc.Register(context.Background(), application.RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "pw"})
	require.NoError(t, err)

	require.Len(t, pub.bodies, 1)
	ev, ok := pub.bodies[0].(entity.UserRegistered)
	require.True(t, ok)
	assert.Equal(t, entity.EventUserRegistered, ev.Type)
	assert.Equal(t, u.ID, ev.UserID)
	assert.Equal(t, "eve@example.com", ev.Email)
}

func TestService_Register_PublishFailureDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	svc, db := newTestService(t, pub)

	_, err := svc.Register(context.Background(), application.RegisterInput{Name: "Fay", Email: "fay@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = db.Users().GetByEmail(context.Background(), "fay@example.com")
	assert.NoError(t, err)
}
