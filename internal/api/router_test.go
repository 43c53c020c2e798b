package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/database"
	"github.com/isdelr/hoot-be/internal/models"
	"github.com/isdelr/hoot-be/internal/services"
	"github.com/isdelr/hoot-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.New("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	jwtManager := auth.NewJWTManager("router-secret")
	events := services.NewEventService(db)
	router := NewRouter(Dependencies{
		Hub:            hub,
		Verifier:       jwtManager,
		UserService:    services.NewUserService(db, jwtManager, bcrypt.MinCost),
		HootService:    services.NewHootService(db, events, hub),
		CommentService: services.NewCommentService(db, events, hub, false),
		EventService:   events,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (s *testServer) signup(username, password string) authResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authResponse](s.t, rec)
}

func TestScenario(t *testing.T) {
	s := newTestServer(t)

	alice := s.signup("alice", "p1")
	assert.Equal(t, "alice", alice.User.Username)
	assert.NotEmpty(t, alice.Token)
	assert.NotContains(t, s.do(http.MethodPost, "/auth/signin", "", map[string]string{"username": "alice", "password": "p1"}).Body.String(), "password")

	rec := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"username": "alice", "password": "p2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bob := s.signup("bob", "p3")

	// A client-supplied author is ignored.
	rec = s.do(http.MethodPost, "/hoots", alice.Token, map[string]interface{}{
		"title": "T", "text": "hello", "category": "News", "author": bob.User.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hoot := decode[models.Hoot](t, rec)
	assert.Equal(t, "alice", hoot.Author.Username)
	assert.Equal(t, alice.User.ID, hoot.Author.ID)

	rec = s.do(http.MethodPut, "/hoots/"+hoot.ID, bob.Token, map[string]string{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/hoots/"+hoot.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/hoots/"+hoot.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T", decode[models.Hoot](t, rec).Title)

	rec = s.do(http.MethodPost, "/hoots/"+hoot.ID+"/comments", alice.Token, map[string]string{"text": "first", "author": bob.User.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[models.Comment](t, rec)
	assert.Equal(t, alice.User.ID, first.Author.ID)

	rec = s.do(http.MethodPost, "/hoots/"+hoot.ID+"/comments", bob.Token, map[string]string{"text": "second"})
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[models.Comment](t, rec)

	rec = s.do(http.MethodGet, "/hoots/"+hoot.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Hoot](t, rec)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, first.ID, got.Comments[0].ID)
	assert.Equal(t, "alice", got.Comments[0].Author.Username)
	assert.Equal(t, second.ID, got.Comments[1].ID)
	assert.Equal(t, "bob", got.Comments[1].Author.Username)

	rec = s.do(http.MethodPut, "/hoots/"+hoot.ID, alice.Token, map[string]string{"title": "T2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Hoot](t, rec)
	assert.Equal(t, "T2", updated.Title)
	assert.Len(t, updated.Comments, 2)

	rec = s.do(http.MethodPut, "/hoots/"+hoot.ID+"/comments/"+first.ID, bob.Token, map[string]string{"text": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"message": "Ok"}, decode[map[string]string](t, rec))

	rec = s.do(http.MethodDelete, "/hoots/"+hoot.ID+"/comments/"+second.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/hoots/"+hoot.ID, alice.Token, nil)
	got = decode[models.Hoot](t, rec)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "edited", got.Comments[0].Text)

	rec = s.do(http.MethodDelete, "/hoots/"+hoot.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, hoot.ID, decode[models.Hoot](t, rec).ID)

	rec = s.do(http.MethodGet, "/hoots/"+hoot.ID, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/events?limit=50", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]models.Event](t, rec)
	require.NotEmpty(t, events)
	assert.Equal(t, "hoot.deleted", events[0].Type)
}

func TestSignin(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice", "p1")

	rec := s.do(http.MethodPost, "/auth/signin", "", map[string]string{"username": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[authResponse](t, rec)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.Token)

	wrong := s.do(http.MethodPost, "/auth/signin", "", map[string]string{"username": "alice", "password": "nope"})
	unknown := s.do(http.MethodPost, "/auth/signin", "", map[string]string{"username": "ghost", "password": "p1"})
	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.NotContains(t, wrong.Body.String(), "token")
}

func TestMalformedInput(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "p1")

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/auth/signup", "", map[string]string{"username": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/hoots", alice.Token, map[string]string{"title": "T", "text": "x", "category": "Cooking"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/hoots/missing/comments", alice.Token, map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/hoots"},
		{http.MethodPost, "/hoots"},
		{http.MethodGet, "/hoots/x"},
		{http.MethodPut, "/hoots/x"},
		{http.MethodDelete, "/hoots/x"},
		{http.MethodPost, "/hoots/x/comments"},
		{http.MethodPut, "/hoots/x/comments/y"},
		{http.MethodDelete, "/hoots/x/comments/y"},
		{http.MethodGet, "/events"},
		{http.MethodGet, "/ws"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := s.do(rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = s.do(rt.method, rt.path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestListHoots_NewestFirst(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "p1")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		rec := s.do(http.MethodPost, "/hoots", alice.Token, map[string]string{"title": title, "text": "x", "category": "Games"})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[models.Hoot](t, rec).ID)
	}

	rec := s.do(http.MethodGet, "/hoots", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hoots := decode[[]models.Hoot](t, rec)
	require.Len(t, hoots, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{hoots[0].ID, hoots[1].ID, hoots[2].ID})
	for _, h := range hoots {
		assert.Equal(t, "alice", h.Author.Username)
	}
}
