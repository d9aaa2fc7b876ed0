package domains

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
)

// fakeResolver resolves every host except those listed as dead.
type fakeResolver struct {
	dead map[string]bool
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if r.dead[host] {
		return nil, eris.Errorf("no such host: %s", host)
	}
	return []string{"192.0.2.1"}, nil
}

// hostTransport serves canned HTML bodies keyed by host, simulating the live
// web without network access. Hosts not in the map return 404.
type hostTransport struct {
	pages map[string]string // host -> body
}

func (t *hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, ok := t.pages[req.URL.Hostname()]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = "not found"
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// fakeWeb builds a validator backed by canned pages for the given hosts.
func fakeWeb(pages map[string]string) *Validator {
	return NewValidator(
		WithHTTPClient(&http.Client{Transport: &hostTransport{pages: pages}}),
		WithResolver(&fakeResolver{}),
	)
}
