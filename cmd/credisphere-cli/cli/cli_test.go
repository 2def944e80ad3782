package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credisphere/credisphere/internal/client/apiclient"
	"github.com/credisphere/credisphere/internal/client/session"
	"github.com/credisphere/credisphere/internal/platform/httpx"
)

var member = apiclient.User{ID: 3, Email: "ana@credisphere.io", Name: "Ana", Role: "member", Active: true}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["email"] == "" {
			httpx.ValidationProblem(w, httpx.NewValidationError("email", "email is a required field"))
			return
		}
		if in["password"] != "secret-pass" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
			return
		}
		httpx.JSON(w, http.StatusOK, apiclient.LoginResult{Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour), User: member})
	})
	authed := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token revoked")
			return false
		}
		return true
	}
	r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			w.WriteHeader(http.StatusNoContent)
		}
	})
	r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			httpx.JSON(w, http.StatusOK, member)
		}
	})
	r.Get("/roles", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			httpx.JSON(w, http.StatusOK, map[string]any{"roles": map[string][]string{
				"member":    {"clubs.view"},
				"president": {"clubs.view", "clubs.edit"},
			}})
		}
	})
	r.Post("/clubs", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch {
		case in["name"] == nil, in["name"] == "":
			httpx.ValidationProblem(w, httpx.NewValidationError("name", "name is a required field"))
		case in["name"] == "Harbor":
			httpx.Problem(w, http.StatusConflict, "Conflict", "club already exists")
		default:
			in["id"] = 9
			httpx.JSON(w, http.StatusCreated, in)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, opts *Options, args ...string) result {
	t.Helper()
	cmd := Root(opts)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func signedIn(t *testing.T) *session.MemoryStorage {
	t.Helper()
	storage := session.NewMemoryStorage()
	raw, err := json.Marshal(member)
	require.NoError(t, err)
	require.NoError(t, storage.SetItem(session.TokenKey, "tok-1"))
	require.NoError(t, storage.SetItem(session.UserKey, string(raw)))
	return storage
}

func TestLoginStoresSession(t *testing.T) {
	srv := fakeAPI(t)
	storage := session.NewMemoryStorage()

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "login", "-e", member.Email, "-p", "secret-pass")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Logged in as ana@credisphere.io (member)")

	token, ok, err := storage.GetItem(session.TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestLoginReportsFieldErrors(t *testing.T) {
	srv := fakeAPI(t)
	storage := session.NewMemoryStorage()

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "login", "-p", "secret-pass")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "  email: email is a required field")

	_, ok, err := storage.GetItem(session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginReportsNotification(t *testing.T) {
	srv := fakeAPI(t)

	res := run(t, &Options{Storage: session.NewMemoryStorage()}, "--url", srv.URL, "login", "-e", member.Email, "-p", "wrong")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "invalid email or password")
}

func TestCommandsRequireSession(t *testing.T) {
	srv := fakeAPI(t)
	for _, args := range [][]string{{"whoami"}, {"roles"}, {"logout"}, {"can", "clubs.edit"}, {"create", "clubs"}, {"list", "clubs"}} {
		res := run(t, &Options{Storage: session.NewMemoryStorage()}, append([]string{"--url", srv.URL}, args...)...)
		assert.ErrorIs(t, res.err, errNotLoggedIn, args[0])
	}
}

func TestWhoamiInvalidatesRejectedToken(t *testing.T) {
	srv := fakeAPI(t)
	storage := session.NewMemoryStorage()
	require.NoError(t, storage.SetItem(session.TokenKey, "tok-stale"))
	raw, _ := json.Marshal(member)
	require.NoError(t, storage.SetItem(session.UserKey, string(raw)))

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "whoami")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "session expired")

	_, ok, err := storage.GetItem(session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = storage.GetItem(session.UserKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWhoamiAndLogout(t *testing.T) {
	srv := fakeAPI(t)
	storage := signedIn(t)

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "whoami")
	require.NoError(t, res.err)
	assert.Equal(t, "Ana <ana@credisphere.io> role=member active=true\n", res.stdout)

	res = run(t, &Options{Storage: storage}, "--url", srv.URL, "logout")
	require.NoError(t, res.err)
	_, ok, err := storage.GetItem(session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRolesAndCan(t *testing.T) {
	srv := fakeAPI(t)
	storage := signedIn(t)

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "roles")
	require.NoError(t, res.err)
	assert.Equal(t, "member: clubs.view\npresident: clubs.view, clubs.edit\n", res.stdout)

	res = run(t, &Options{Storage: storage}, "--url", srv.URL, "can", "clubs.view")
	require.NoError(t, res.err)
	assert.Equal(t, "yes\n", res.stdout)

	res = run(t, &Options{Storage: storage}, "--url", srv.URL, "can", "clubs.edit")
	require.Error(t, res.err)
	assert.Equal(t, "no\n", res.stdout)
}

func TestCreateMapsServerErrors(t *testing.T) {
	srv := fakeAPI(t)
	storage := signedIn(t)

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "create", "clubs", "--field", "name=", "--field", "city=Lisbon")
	require.Error(t, res.err)
	assert.Equal(t, "  name: name is a required field\n", res.stderr)

	res = run(t, &Options{Storage: storage}, "--url", srv.URL, "create", "clubs", "-f", "name=Harbor")
	require.Error(t, res.err)
	assert.Equal(t, "club already exists\n", res.stderr)

	res = run(t, &Options{Storage: storage}, "--url", srv.URL, "create", "clubs", "-f", "name=Tidewater", "-f", "category_id=4")
	require.NoError(t, res.err)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &created))
	assert.Equal(t, "Tidewater", created["name"])
	assert.EqualValues(t, 4, created["category_id"])
}

func TestCreateShowsErrorsForOmittedFields(t *testing.T) {
	srv := fakeAPI(t)
	storage := signedIn(t)

	res := run(t, &Options{Storage: storage}, "--url", srv.URL, "create", "clubs", "-f", "city=Lisbon")
	require.Error(t, res.err)
	assert.Equal(t, "  name: name is a required field\n", res.stderr)
}

func TestKnownFields(t *testing.T) {
	assert.Equal(t, []string{"name", "city", "category_id", "motto"}, knownFields("clubs", []string{"city", "motto"}))
	assert.Equal(t, []string{"motto"}, knownFields("unknown", []string{"motto"}))
	for _, resource := range resources {
		assert.NotEmpty(t, formFields[resource], resource)
	}
}

func TestParseFields(t *testing.T) {
	payload, known, err := parseFields([]string{"name=Harbor", "is_active=false", "club_id=12", "name=Dock"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "is_active", "club_id"}, known)
	assert.Equal(t, "Dock", payload["name"])
	assert.Equal(t, false, payload["is_active"])
	assert.EqualValues(t, 12, payload["club_id"])

	_, _, err = parseFields([]string{"no-separator"})
	assert.Error(t, err)
	_, _, err = parseFields([]string{"=value"})
	assert.Error(t, err)
}

type queueStub struct {
	retain time.Duration
	err    error
	closed bool
}

func (q *queueStub) TriggerPrune(_ context.Context, retain time.Duration) (*asynq.TaskInfo, error) {
	q.retain = retain
	if q.err != nil {
		return nil, q.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: "default", Type: "sessions:prune"}, nil
}

func (q *queueStub) InspectQueue(context.Context) (QueueStats, error) {
	return QueueStats{Queue: "default", Pending: 2, Retry: 1}, q.err
}

func (q *queueStub) Close() error {
	q.closed = true
	return nil
}

func TestJobsCommands(t *testing.T) {
	queue := &queueStub{}

	res := run(t, &Options{Jobs: queue}, "jobs", "prune", "--retain-revoked", "24h")
	require.NoError(t, res.err)
	assert.Equal(t, 24*time.Hour, queue.retain)
	assert.Equal(t, "Enqueued sessions:prune as task-1 on queue default\n", res.stdout)
	assert.True(t, queue.closed)

	res = run(t, &Options{Jobs: queue}, "jobs", "stats")
	require.NoError(t, res.err)
	assert.Equal(t, "queue=default pending=2 active=0 scheduled=0 retry=1\n", res.stdout)

	res = run(t, &Options{Jobs: &queueStub{err: errors.New("redis down")}}, "jobs", "stats")
	assert.ErrorContains(t, res.err, "redis down")
}

func TestSessionFilePersistsAcrossInvocations(t *testing.T) {
	srv := fakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")

	res := run(t, &Options{}, "--url", srv.URL, "--session-file", path, "login", "-e", member.Email, "-p", "secret-pass")
	require.NoError(t, res.err)

	res = run(t, &Options{}, "--url", srv.URL, "--session-file", path, "whoami")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ana@credisphere.io")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
