package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/database"
	"github.com/isdelr/hoot-be/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func newTestUserService(db *sql.DB) *UserService {
	return NewUserService(db, auth.NewJWTManager("test-secret"), bcrypt.MinCost)
}

func mustRegister(t *testing.T, users *UserService, username string) models.User {
	t.Helper()
	u, _, err := users.Register(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	return u
}

type published struct {
	topic, action string
	payload       interface{}
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) Publish(topic, action string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, action: action, payload: payload})
}

func (p *fakePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.action)
	}
	return out
}
