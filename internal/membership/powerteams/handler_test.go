package powerteams

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
)

type fakeRepo struct {
	Repository
	teams map[int64]PowerTeam
}

func (f *fakeRepo) Create(ctx context.Context, in Input) (PowerTeam, error) {
	id := int64(len(f.teams) + 1)
	t := PowerTeam{ID: id, Name: in.Name, ClubID: in.ClubID, CategoryID: in.CategoryID}
	f.teams[id] = t
	return t, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, in Input) (PowerTeam, error) {
	if _, ok := f.teams[id]; !ok {
		return PowerTeam{}, httpx.ErrNotFound
	}
	t := PowerTeam{ID: id, Name: in.Name, ClubID: in.ClubID, CategoryID: in.CategoryID}
	f.teams[id] = t
	return t, nil
}

func send(t *testing.T, h http.Handler, role rbac.RoleName, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), &rbac.Principal{ID: 2, Role: role, Active: true}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRouter() (http.Handler, *fakeRepo) {
	repo := &fakeRepo{teams: map[int64]PowerTeam{}}
	r := chi.NewRouter()
	r.Route("/power-teams", NewHandler(nil, NewService(repo, httpx.NewValidator(), nil), rbac.Middleware{Registry: rbac.DefaultRegistry()}).MountRoutes)
	return r, repo
}

func TestPresidentManagesPowerTeams(t *testing.T) {
	h, repo := newRouter()

	rec := send(t, h, rbac.RolePresident, http.MethodPost, "/power-teams", Input{Name: "Alpha", ClubID: 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Alpha", repo.teams[1].Name)

	rec = send(t, h, rbac.RolePresident, http.MethodPut, "/power-teams/1", Input{Name: "Alpha Prime", ClubID: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alpha Prime", repo.teams[1].Name)
}

func TestMemberCannotCreatePowerTeam(t *testing.T) {
	h, repo := newRouter()
	rec := send(t, h, rbac.RoleMember, http.MethodPost, "/power-teams", Input{Name: "Alpha", ClubID: 3})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.teams)
}

func TestPowerTeamRequiresClub(t *testing.T) {
	h, _ := newRouter()
	rec := send(t, h, rbac.RoleAdmin, http.MethodPost, "/power-teams", map[string]any{"name": "Orphans"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"club_id"`)
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	h, _ := newRouter()
	rec := send(t, h, rbac.RoleAdmin, http.MethodPost, "/power-teams", map[string]any{"name": "A", "club_id": 1, "captain": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateMissingPowerTeam(t *testing.T) {
	h, _ := newRouter()
	rec := send(t, h, rbac.RoleAdmin, http.MethodPut, "/power-teams/42", Input{Name: "Ghost", ClubID: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
