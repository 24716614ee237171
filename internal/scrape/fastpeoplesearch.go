package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadverify/internal/model"
)

// FastPeopleSearchName is the registry identifier of the static-HTTP
// people-search scraper.
const FastPeopleSearchName = "fastpeoplesearch"

const (
	fpsDefaultBaseURL = "https://www.fastpeoplesearch.com"
	fpsUserAgent      = "Mozilla/5.0 (compatible; leadverify/1.0)"
	fpsMaxBodyBytes   = 512 * 1024
	fpsNoResultsText  = "no results found"
)

// FastPeopleSearchScraper looks a lead up on fastpeoplesearch.com over
// plain HTTP and parses the first person card for contact fields. The site
// serves static HTML for most traffic, so no browser is involved; an
// internal token bucket paces requests independently of the engine's
// configured rate limit.
type FastPeopleSearchScraper struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	ua      string
}

// NewFastPeopleSearchScraper builds the scraper from its options:
// base_url, user_agent, timeout_secs, and requests_per_second.
func NewFastPeopleSearchScraper(opts Options) (Scraper, error) {
	timeoutSecs := opts.Float("timeout_secs", 15)
	if timeoutSecs <= 0 {
		return nil, NewError(FastPeopleSearchName, KindInvalidConfig, "timeout_secs must be positive")
	}
	rps := opts.Float("requests_per_second", 0.5)
	if rps <= 0 {
		return nil, NewError(FastPeopleSearchName, KindInvalidConfig, "requests_per_second must be positive")
	}

	return &FastPeopleSearchScraper{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs * float64(time.Second)),
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		baseURL: strings.TrimRight(opts.String("base_url", fpsDefaultBaseURL), "/"),
		ua:      opts.String("user_agent", fpsUserAgent),
	}, nil
}

func (s *FastPeopleSearchScraper) Name() string         { return FastPeopleSearchName }
func (s *FastPeopleSearchScraper) Parallelizable() bool { return true }

// Verify fetches the search results page for the lead's name and location
// and extracts phones and emails from the best-match card.
func (s *FastPeopleSearchScraper) Verify(ctx context.Context, lead model.Lead) (*Result, error) {
	name := foldName(lead.Name())
	if name == "" {
		return nil, NewError(FastPeopleSearchName, KindParseFailure, "lead is missing a name")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(name, lead.Location()), nil)
	if err != nil {
		return nil, WrapError(FastPeopleSearchName, KindTransport, err)
	}
	req.Header.Set("User-Agent", s.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var uerr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
			return nil, WrapError(FastPeopleSearchName, KindTimeout, err)
		}
		return nil, WrapError(FastPeopleSearchName, KindTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, fpsMaxBodyBytes))
	if err != nil {
		return nil, WrapError(FastPeopleSearchName, KindTransport, err)
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, NewError(FastPeopleSearchName, KindBlocked,
			fmt.Sprintf("anti-bot challenge (%s)", blockType))
	}
	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(FastPeopleSearchName, KindBlocked,
			fmt.Sprintf("request refused with status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, NewError(FastPeopleSearchName, KindTransport,
			fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	fields, err := parsePersonCard(body)
	if err != nil {
		return nil, WrapError(FastPeopleSearchName, KindParseFailure, err)
	}
	return &Result{Fields: fields}, nil
}

// searchURL builds the site's path-style query:
// /name/<first-last>_<city-st> with the location part optional.
func (s *FastPeopleSearchScraper) searchURL(name, location string) string {
	path := "/name/" + url.PathEscape(slugify(name))
	if loc := slugify(strings.ReplaceAll(location, ",", " ")); loc != "" {
		path += "_" + url.PathEscape(loc)
	}
	return s.baseURL + path
}

// parsePersonCard extracts contact fields from the first person card on a
// results page. An explicit no-results page yields empty fields; a page
// with neither cards nor that marker is unparseable.
func parsePersonCard(body []byte) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	card := doc.Find("div.people-list div.card").First()
	if card.Length() == 0 {
		if strings.Contains(strings.ToLower(doc.Text()), fpsNoResultsText) {
			return map[string]string{}, nil
		}
		return nil, errors.New("person card not found in results page")
	}

	var phones, emails []string
	card.Find(`a[href^="tel:"]`).Each(func(_ int, sel *goquery.Selection) {
		phones = append(phones, sel.Text())
	})
	card.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
		emails = append(emails, sel.Text())
	})

	fields := make(map[string]string)
	setNumbered(fields, model.FieldPhone, phones)
	setNumbered(fields, model.FieldEmail, emails)
	return fields, nil
}
