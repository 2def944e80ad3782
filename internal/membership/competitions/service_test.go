package competitions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/shared"
)

type captureRepo struct {
	Repository
	last    Input
	deleted []int64
}

func (c *captureRepo) Create(ctx context.Context, in Input) (Competition, error) {
	c.last = in
	return Competition{ID: 9, Title: in.Title, StartsAt: in.StartsAt, EndsAt: in.EndsAt}, nil
}

func (c *captureRepo) Delete(ctx context.Context, id int64) error {
	c.deleted = append(c.deleted, id)
	return nil
}

type auditSpy struct{ logs []shared.AuditLog }

func (a *auditSpy) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestCreateCompetitionStoresUTC(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo, httpx.NewValidator(), nil)

	zone := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, zone)
	_, err := svc.Create(context.Background(), Input{Title: "Spring Cup", StartsAt: start, EndsAt: start.Add(6 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, repo.last.StartsAt.Location())
	assert.True(t, repo.last.StartsAt.Equal(start))
}

func TestCompetitionMustEndAfterStart(t *testing.T) {
	svc := NewService(&captureRepo{}, httpx.NewValidator(), nil)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), Input{Title: "Backwards", StartsAt: start, EndsAt: start.Add(-time.Hour)})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"ends_at"}, verr.Fields[0].Path)
}

func TestCompetitionRequiresSchedule(t *testing.T) {
	svc := NewService(&captureRepo{}, httpx.NewValidator(), nil)
	_, err := svc.Create(context.Background(), Input{Title: "Unscheduled"})

	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Path[0])
	}
	assert.Contains(t, fields, "starts_at")
	assert.Contains(t, fields, "ends_at")
}

func TestDeleteCompetitionIsAudited(t *testing.T) {
	repo := &captureRepo{}
	audit := &auditSpy{}
	svc := NewService(repo, httpx.NewValidator(), audit)

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, []int64{4}, repo.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, shared.AuditDelete, audit.logs[0].Action)
	assert.Equal(t, "4", audit.logs[0].EntityID)
}
