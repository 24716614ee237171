package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadverify/internal/model"
)

const fpsCardPage = `<html><body>
<div class="people-list">
  <div class="card">
    <h2>Jane Doe</h2>
    <a href="tel:5125550100">(512) 555-0100</a>
    <a href="tel:5125550101">(512) 555-0101</a>
    <a href="mailto:jane@example.com">jane@example.com</a>
  </div>
  <div class="card">
    <a href="tel:9995550000">(999) 555-0000</a>
  </div>
</div>
</body></html>`

func newFPSScraper(t *testing.T, baseURL string) Scraper {
	t.Helper()
	s, err := NewFastPeopleSearchScraper(Options{
		"base_url":            baseURL,
		"requests_per_second": 100.0,
		"timeout_secs":        5.0,
	})
	require.NoError(t, err)
	return s
}

func fpsLead() model.Lead {
	return model.Lead{
		FullName: "Jane Doe",
		City:     "Austin",
		State:    "TX",
		Metadata: map[string]string{"zip": "78701"},
	}
}

func TestFastPeopleSearch_ExtractsFirstCard(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(fpsCardPage))
	}))
	defer srv.Close()

	res, err := newFPSScraper(t, srv.URL).Verify(context.Background(), fpsLead())
	require.NoError(t, err)

	assert.Equal(t, "/name/jane-doe_austin-tx-78701", gotPath)
	assert.Equal(t, map[string]string{
		model.FieldPhone:        "(512) 555-0100",
		model.FieldPhone + "_2": "(512) 555-0101",
		model.FieldEmail:        "jane@example.com",
	}, res.Fields)
}

func TestFastPeopleSearch_NoResultsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>No results found for this search.</h1></body></html>`))
	}))
	defer srv.Close()

	res, err := newFPSScraper(t, srv.URL).Verify(context.Background(), fpsLead())
	require.NoError(t, err)
	assert.Empty(t, res.Fields)
}

func TestFastPeopleSearch_UnrecognizedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="totally-different">layout changed</div></body></html>`))
	}))
	defer srv.Close()

	_, err := newFPSScraper(t, srv.URL).Verify(context.Background(), fpsLead())
	require.Error(t, err)
	assert.Equal(t, KindParseFailure, KindOf(err))
}

func TestFastPeopleSearch_CaptchaPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Please complete the captcha to continue.</p></body></html>`))
	}))
	defer srv.Close()

	_, err := newFPSScraper(t, srv.URL).Verify(context.Background(), fpsLead())
	require.Error(t, err)
	assert.Equal(t, KindBlocked, KindOf(err))
}

func TestFastPeopleSearch_RateLimitedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newFPSScraper(t, srv.URL).Verify(context.Background(), fpsLead())
	require.Error(t, err)
	assert.Equal(t, KindBlocked, KindOf(err))
}

func TestFastPeopleSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "try later", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newFPSScraper(t, srv.URL).Verify(context.Background(), fpsLead())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestFastPeopleSearch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(fpsCardPage))
	}))
	defer srv.Close()

	s, err := NewFastPeopleSearchScraper(Options{
		"base_url":            srv.URL,
		"requests_per_second": 100.0,
		"timeout_secs":        0.05,
	})
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), fpsLead())
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestFastPeopleSearch_MissingName(t *testing.T) {
	_, err := newFPSScraper(t, "http://unused.invalid").Verify(context.Background(), model.Lead{})
	require.Error(t, err)
	assert.Equal(t, KindParseFailure, KindOf(err))
}

func TestFastPeopleSearch_RejectsBadOptions(t *testing.T) {
	_, err := NewFastPeopleSearchScraper(Options{"timeout_secs": -1.0})
	require.Error(t, err)
	assert.Equal(t, KindInvalidConfig, KindOf(err))

	_, err = NewFastPeopleSearchScraper(Options{"requests_per_second": 0.0})
	require.Error(t, err)
	assert.Equal(t, KindInvalidConfig, KindOf(err))
}

func TestFastPeopleSearch_SearchURL(t *testing.T) {
	s, err := NewFastPeopleSearchScraper(nil)
	require.NoError(t, err)
	fps := s.(*FastPeopleSearchScraper)

	assert.Equal(t,
		"https://www.fastpeoplesearch.com/name/jane-doe_austin-tx-78701",
		fps.searchURL("Jane Doe", "Austin, TX 78701"))
	assert.Equal(t,
		"https://www.fastpeoplesearch.com/name/jane-doe",
		fps.searchURL("Jane Doe", ""))
}
