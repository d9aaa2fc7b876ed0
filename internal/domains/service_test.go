package domains

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-scout/internal/model"
)

type stubSearch struct {
	verdict model.DomainVerdict
	err     error
	calls   int
}

func (s *stubSearch) Search(_ context.Context, _ string, _ model.Hints) (model.DomainVerdict, error) {
	s.calls++
	return s.verdict, s.err
}

func TestDiscover_SingleValidCandidateWins(t *testing.T) {
	t.Parallel()

	svc := NewService(fakeWeb(map[string]string{
		"acmesoftware.com": acmePage,
	}))
	verdict := svc.Discover(context.Background(), "Acme Software Inc", model.Hints{})

	require.True(t, verdict.Valid)
	assert.Equal(t, "https://acmesoftware.com", verdict.URL)
	assert.Equal(t, model.MethodDirect, verdict.Method)
}

func TestDiscover_HigherCompositeScoreWins(t *testing.T) {
	t.Parallel()

	// Both hosts validate with the same page, but .com beats .io on the
	// composite tie-break.
	svc := NewService(fakeWeb(map[string]string{
		"acmesoftware.com": acmePage,
		"acmesoftware.io":  acmePage,
	}))
	verdict := svc.Discover(context.Background(), "Acme Software Inc", model.Hints{})

	require.True(t, verdict.Valid)
	assert.Equal(t, "https://acmesoftware.com", verdict.URL)
}

func TestDiscover_LowerConfidenceComLosesToStrongIO(t *testing.T) {
	t.Parallel()

	weak := `<html><title>Welcome</title><body>Acme Software is mentioned once.</body></html>`
	svc := NewService(fakeWeb(map[string]string{
		"acmesoftware.com": weak,     // 0.3 + 0.1 (.com) + 0.05 (ssl) = 0.45
		"acmesoftware.io":  acmePage, // 0.9 + 0.05 (ssl) = 0.95
	}))
	verdict := svc.Discover(context.Background(), "Acme Software Inc", model.Hints{})

	require.True(t, verdict.Valid)
	assert.Equal(t, "https://acmesoftware.io", verdict.URL)
}

func TestDiscover_NoCandidateFallsBackToSearch(t *testing.T) {
	t.Parallel()

	search := &stubSearch{verdict: model.DomainVerdict{
		URL:        "https://found-by-search.com",
		Valid:      true,
		Confidence: 0.6,
	}}
	svc := NewService(fakeWeb(nil), WithSearchStrategy(search))

	verdict := svc.Discover(context.Background(), "Acme Software Inc", model.Hints{})

	assert.Equal(t, 1, search.calls)
	assert.Equal(t, "https://found-by-search.com", verdict.URL)
	assert.Equal(t, model.MethodSearch, verdict.Method)
}

func TestDiscover_NothingFound(t *testing.T) {
	t.Parallel()

	svc := NewService(fakeWeb(nil))
	verdict := svc.Discover(context.Background(), "Acme Software Inc", model.Hints{})

	assert.Empty(t, verdict.URL)
	assert.False(t, verdict.Valid)
	assert.Zero(t, verdict.Confidence)
	assert.Equal(t, model.MethodNone, verdict.Method)
}

func TestDiscover_SearchErrorDegradesToNone(t *testing.T) {
	t.Parallel()

	search := &stubSearch{err: eris.New("search API down")}
	svc := NewService(fakeWeb(nil), WithSearchStrategy(search))

	verdict := svc.Discover(context.Background(), "Acme Software Inc", model.Hints{})
	assert.Equal(t, model.MethodNone, verdict.Method)
	assert.Empty(t, verdict.URL)
}

func TestDiscover_EmptyName(t *testing.T) {
	t.Parallel()

	svc := NewService(fakeWeb(nil))
	verdict := svc.Discover(context.Background(), "", model.Hints{})
	assert.Equal(t, model.MethodNone, verdict.Method)
}
