package fetcher_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/rfcFreq/fetcher"
	"github.com/mycok/rfcFreq/fetcher/mocks"
)

var _ = check.Suite(new(fetcherTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type fetcherTestSuite struct {
	ctrl        *gomock.Controller
	urlGetter   *mocks.MockURLGetter
	netDetector *mocks.MockPrivateNetworkDetector
}

func (s *fetcherTestSuite) SetUpTest(c *check.C) {
	s.ctrl = gomock.NewController(c)

	s.urlGetter = mocks.NewMockURLGetter(s.ctrl)
	s.netDetector = mocks.NewMockPrivateNetworkDetector(s.ctrl)
}

func (s *fetcherTestSuite) TearDownTest(c *check.C) {
	// Fails the test if an expected request or network check never happened.
	s.ctrl.Finish()

	s.urlGetter = nil
	s.netDetector = nil
}

func (s *fetcherTestSuite) TestSuccessfulFetch(c *check.C) {
	const url = "https://www.rfc-editor.org/rfc/rfc1.txt"
	s.urlGetter.EXPECT().Do(gomock.Any()).DoAndReturn(
		func(req *http.Request) (*http.Response, error) {
			c.Assert(req.Method, check.Equals, http.MethodGet)
			c.Assert(req.URL.String(), check.Equals, url)

			return makeResponse(200, "text/plain; charset=utf-8", "Host Software"), nil
		},
	)

	content, err := s.newFetcher(nil, 0).Fetch(context.TODO(), url)
	c.Assert(err, check.IsNil)
	c.Assert(content, check.Equals, "Host Software")
}

func (s *fetcherTestSuite) TestMissingContentTypeIsAccepted(c *check.C) {
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, "", "body"), nil)

	content, err := s.newFetcher(nil, 0).Fetch(context.TODO(), "http://example.com/a.txt")
	c.Assert(err, check.IsNil)
	c.Assert(content, check.Equals, "body")
}

func (s *fetcherTestSuite) TestTransportError(c *check.C) {
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := s.newFetcher(nil, 0).Fetch(context.TODO(), "http://example.com/a.txt")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
	c.Assert(err, check.ErrorMatches, ".*connection reset.*")
}

func (s *fetcherTestSuite) TestNonSuccessStatus(c *check.C) {
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(404, "text/html", "not found"), nil)

	_, err := s.newFetcher(nil, 0).Fetch(context.TODO(), "http://example.com/rfc/rfc9999.txt")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
	c.Assert(err, check.ErrorMatches, ".*unexpected status 404.*")
}

func (s *fetcherTestSuite) TestUnsupportedContentType(c *check.C) {
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, "application/pdf", "%PDF"), nil)

	_, err := s.newFetcher(nil, 0).Fetch(context.TODO(), "http://example.com/a.pdf")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
	c.Assert(err, check.ErrorMatches, `.*unsupported content type "application/pdf".*`)
}

func (s *fetcherTestSuite) TestTextualContentTypes(c *check.C) {
	specs := []struct {
		contentType string
		accepted    bool
	}{
		{"text/plain; charset=utf-8", true},
		{"text/html", true},
		{"TEXT/PLAIN", true},
		{"application/html", true},
		{"application/octet-stream", false},
		{"image/png", false},
		{"text/plain; charset", false},
	}

	for _, spec := range specs {
		s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, spec.contentType, "body"), nil)

		_, err := s.newFetcher(nil, 0).Fetch(context.TODO(), "http://example.com/a.txt")
		c.Assert(err == nil, check.Equals, spec.accepted, check.Commentf("content type %q", spec.contentType))
	}
}

func (s *fetcherTestSuite) TestInvalidUTF8Body(c *check.C) {
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, "text/plain", "caf\xe9"), nil)

	_, err := s.newFetcher(nil, 0).Fetch(context.TODO(), "http://example.com/a.txt")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
}

func (s *fetcherTestSuite) TestOversizedBodyIsNotTruncated(c *check.C) {
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, "text/plain", "0123456789"), nil)

	content, err := s.newFetcher(nil, 5).Fetch(context.TODO(), "http://example.com/a.txt")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
	c.Assert(content, check.Equals, "")
}

func (s *fetcherTestSuite) TestPrivateNetworkIsRefused(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("169.254.169.254").Return(true, nil)

	_, err := s.newFetcher(s.netDetector, 0).Fetch(context.TODO(), "http://169.254.169.254/latest")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
}

func (s *fetcherTestSuite) TestPublicNetworkWithPort(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, "text/plain", "hello"), nil)

	content, err := s.newFetcher(s.netDetector, 0).Fetch(context.TODO(), "http://example.com:1234/a.txt")
	c.Assert(err, check.IsNil)
	c.Assert(content, check.Equals, "hello")
}

func (s *fetcherTestSuite) TestAgainstHTTPServer(c *check.C) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rfc/rfc2.txt" {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Host software. B. Duvall.")
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Config{URLGetter: srv.Client()})

	content, err := f.Fetch(context.TODO(), srv.URL+"/rfc/rfc2.txt")
	c.Assert(err, check.IsNil)
	c.Assert(content, check.Equals, "Host software. B. Duvall.")

	_, err = f.Fetch(context.TODO(), srv.URL+"/rfc/rfc3.txt")
	c.Assert(errors.Is(err, fetcher.ErrFetch), check.Equals, true)
}

func (s *fetcherTestSuite) newFetcher(
	detector fetcher.PrivateNetworkDetector, maxBytes int64,
) *fetcher.Fetcher {

	return fetcher.New(fetcher.Config{
		URLGetter:              s.urlGetter,
		PrivateNetworkDetector: detector,
		MaxContentBytes:        maxBytes,
	})
}

func makeResponse(code int, contentType, body string) *http.Response {
	resp := new(http.Response)
	resp.Body = io.NopCloser(strings.NewReader(body))
	resp.StatusCode = code
	resp.Header = make(http.Header)

	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}

	return resp
}
