package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/config"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// responseEnvelope mirrors the wire shape of every API response.
type responseEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// fakeValidator resolves the fixed test tokens to user ids.
type fakeValidator struct{}

func (fakeValidator) ValidateAccess(token string) (string, error) {
	switch token {
	case "user-token":
		return "u1", nil
	case "admin-token":
		return "admin", nil
	}
	return "", errors.New("invalid token")
}

type fakeAccounts struct {
	RegisterFunc     func(ctx context.Context, email, name, password string) (*models.User, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (*models.User, error)
	ProfileFunc      func(ctx context.Context, userID string) (*models.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	return f.RegisterFunc(ctx, email, name, password)
}
func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return f.AuthenticateFunc(ctx, email, password)
}
func (f *fakeAccounts) Profile(ctx context.Context, userID string) (*models.User, error) {
	return f.ProfileFunc(ctx, userID)
}

type fakeTokens struct {
	GeneratePairFunc func(userID string) (string, string, error)
	RefreshFunc      func(ctx context.Context, refreshToken string) (string, string, error)
}

func (f *fakeTokens) GeneratePair(userID string) (string, string, error) {
	return f.GeneratePairFunc(userID)
}
func (f *fakeTokens) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	return f.RefreshFunc(ctx, refreshToken)
}
func (f *fakeTokens) AccessTTL() time.Duration  { return 15 * time.Minute }
func (f *fakeTokens) RefreshTTL() time.Duration { return 7 * 24 * time.Hour }

type fakeNotes struct {
	CreateFunc func(ctx context.Context, ownerID string, in service.NoteInput) (*models.Note, error)
	GetFunc    func(ctx context.Context, viewerID, id string) (*models.Note, error)
	ListFunc   func(ctx context.Context, viewerID string, q service.ListQuery) ([]models.Note, int, error)
	UpdateFunc func(ctx context.Context, viewerID, id string, upd service.NoteUpdate) (*models.Note, error)
	DeleteFunc func(ctx context.Context, viewerID, id string) error
}

func (f *fakeNotes) Create(ctx context.Context, ownerID string, in service.NoteInput) (*models.Note, error) {
	return f.CreateFunc(ctx, ownerID, in)
}
func (f *fakeNotes) Get(ctx context.Context, viewerID, id string) (*models.Note, error) {
	return f.GetFunc(ctx, viewerID, id)
}
func (f *fakeNotes) List(ctx context.Context, viewerID string, q service.ListQuery) ([]models.Note, int, error) {
	return f.ListFunc(ctx, viewerID, q)
}
func (f *fakeNotes) Update(ctx context.Context, viewerID, id string, upd service.NoteUpdate) (*models.Note, error) {
	return f.UpdateFunc(ctx, viewerID, id, upd)
}
func (f *fakeNotes) Delete(ctx context.Context, viewerID, id string) error {
	return f.DeleteFunc(ctx, viewerID, id)
}

type fakeTags struct {
	CreateFunc func(ctx context.Context, name string) (*models.Tag, error)
	ListFunc   func(ctx context.Context) ([]models.Tag, error)
	UpdateFunc func(ctx context.Context, id, name string) (*models.Tag, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (f *fakeTags) Create(ctx context.Context, name string) (*models.Tag, error) {
	return f.CreateFunc(ctx, name)
}
func (f *fakeTags) List(ctx context.Context) ([]models.Tag, error) {
	return f.ListFunc(ctx)
}
func (f *fakeTags) Update(ctx context.Context, id, name string) (*models.Tag, error) {
	return f.UpdateFunc(ctx, id, name)
}
func (f *fakeTags) Delete(ctx context.Context, id string) error {
	return f.DeleteFunc(ctx, id)
}

type fakeAccess struct {
	ListFunc func(ctx context.Context, requesterID string) ([]models.SharedNoteAccess, error)
}

func (f *fakeAccess) List(ctx context.Context, requesterID string) ([]models.SharedNoteAccess, error) {
	return f.ListFunc(ctx, requesterID)
}

// testDeps bundles the fakes wired into a test router. Zero-value fields get
// handlers that fail the test if reached.
type testDeps struct {
	Accounts *fakeAccounts
	Tokens   *fakeTokens
	Notes    *fakeNotes
	Tags     *fakeTags
	Access   *fakeAccess
}

func newTestRouter(t *testing.T, deps testDeps) http.Handler {
	t.Helper()
	log := zap.NewNop()
	if deps.Accounts == nil {
		deps.Accounts = &fakeAccounts{}
	}
	if deps.Tokens == nil {
		deps.Tokens = &fakeTokens{}
	}
	if deps.Notes == nil {
		deps.Notes = &fakeNotes{}
	}
	if deps.Tags == nil {
		deps.Tags = &fakeTags{}
	}
	if deps.Access == nil {
		deps.Access = &fakeAccess{}
	}

	authHandler := &AuthHandler{
		Accounts: deps.Accounts,
		Tokens:   deps.Tokens,
		Cookie:   config.CookieOptions{HTTPOnly: true, SameSite: "lax"},
		Log:      log,
	}
	notesHandler := &NotesHandler{Notes: deps.Notes, Log: log}
	tagsHandler := &TagsHandler{Tags: deps.Tags, Log: log}
	accessHandler := &AccessHandler{Access: deps.Access, Log: log}

	return NewRouter(authHandler, notesHandler, tagsHandler, accessHandler, fakeValidator{}, log)
}

// doJSON performs a request against the router with a JSON content type and
// optionally an access cookie, returning the recorded response.
func doJSON(t *testing.T, h http.Handler, method, target, body, accessToken string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: "access", Value: accessToken})
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
