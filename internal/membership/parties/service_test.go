package parties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credisphere/credisphere/internal/platform/httpx"
)

type captureRepo struct {
	Repository
	last Input
}

func (c *captureRepo) Create(ctx context.Context, in Input) (Party, error) {
	c.last = in
	return Party{ID: 1, Name: in.Name, Abbreviation: in.Abbreviation, Leader: in.Leader}, nil
}

func (c *captureRepo) Update(ctx context.Context, id int64, in Input) (Party, error) {
	c.last = in
	return Party{ID: id, Name: in.Name, Abbreviation: in.Abbreviation, Leader: in.Leader}, nil
}

func TestAbbreviationIsUppercased(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo, httpx.NewValidator(), nil)

	party, err := svc.Create(context.Background(), Input{Name: "Green Party", Abbreviation: " gp "})
	require.NoError(t, err)
	assert.Equal(t, "GP", party.Abbreviation)

	_, err = svc.Update(context.Background(), 1, Input{Name: "Green Party", Abbreviation: "grn"})
	require.NoError(t, err)
	assert.Equal(t, "GRN", repo.last.Abbreviation)
}

func TestAbbreviationValidation(t *testing.T) {
	svc := NewService(&captureRepo{}, httpx.NewValidator(), nil)

	cases := map[string]string{
		"too short":  "g",
		"too long":   "ABCDEFGHIJK",
		"has spaces": "G P",
		"missing":    "",
	}
	for name, abbr := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), Input{Name: "Party", Abbreviation: abbr})
			var verr *httpx.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{"abbreviation"}, verr.Fields[0].Path)
		})
	}
}
