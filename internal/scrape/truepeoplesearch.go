package scrape

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/sells-group/leadverify/internal/model"
)

// TruePeopleSearchName is the registry identifier of the browser-driven
// people-search scraper.
const TruePeopleSearchName = "truepeoplesearch"

const (
	tpsDefaultBaseURL = "https://www.truepeoplesearch.com"
	tpsUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	tpsNotFoundText   = "We could not find any records for that search criteria."
	tpsEmailSection   = "Email Addresses"
	tpsPhoneSection   = "Phone Numbers"
)

// TruePeopleSearchScraper drives headless Chrome against
// truepeoplesearch.com, which renders records client-side and challenges
// plain HTTP clients. Each Verify spawns one browser context, so instances
// are serialized by the engine rather than declared parallel-safe.
type TruePeopleSearchScraper struct {
	headless   bool
	baseURL    string
	navTimeout time.Duration
	throttle   time.Duration
}

// NewTruePeopleSearchScraper builds the scraper from its options:
// headless, base_url, navigation_timeout_secs, and throttle_seconds.
func NewTruePeopleSearchScraper(opts Options) (Scraper, error) {
	navSecs := opts.Float("navigation_timeout_secs", 30)
	if navSecs <= 0 {
		return nil, NewError(TruePeopleSearchName, KindInvalidConfig, "navigation_timeout_secs must be positive")
	}
	throttleSecs := opts.Float("throttle_seconds", 5)
	if throttleSecs < 0 {
		return nil, NewError(TruePeopleSearchName, KindInvalidConfig, "throttle_seconds must not be negative")
	}

	return &TruePeopleSearchScraper{
		headless:   opts.Bool("headless", true),
		baseURL:    strings.TrimRight(opts.String("base_url", tpsDefaultBaseURL), "/"),
		navTimeout: time.Duration(navSecs * float64(time.Second)),
		throttle:   time.Duration(throttleSecs * float64(time.Second)),
	}, nil
}

func (s *TruePeopleSearchScraper) Name() string { return TruePeopleSearchName }

// Verify renders the results page for the lead's name and location and
// extracts the email and phone sections.
func (s *TruePeopleSearchScraper) Verify(ctx context.Context, lead model.Lead) (*Result, error) {
	name := foldName(lead.Name())
	if name == "" {
		return nil, NewError(TruePeopleSearchName, KindParseFailure, "lead is missing a name")
	}

	html, err := s.renderResults(ctx, s.searchURL(name, lead.Location()))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, WrapError(TruePeopleSearchName, KindTimeout, err)
		}
		return nil, WrapError(TruePeopleSearchName, KindTransport, err)
	}

	fields, err := parseResultsPage(html)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, WrapError(TruePeopleSearchName, KindParseFailure, err)
	}
	return &Result{Fields: fields}, nil
}

// renderResults navigates a fresh browser context to the results page and
// returns the rendered document.
func (s *TruePeopleSearchScraper) renderResults(ctx context.Context, target string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.navTimeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.throttle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

func (s *TruePeopleSearchScraper) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	return append(opts,
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1366,900"),
		chromedp.UserAgent(tpsUserAgent),
	)
}

// searchURL builds the site's results query:
// /results?name=<name>&citystatezip=<location>&rid=0x0.
func (s *TruePeopleSearchScraper) searchURL(name, location string) string {
	params := url.Values{}
	params.Set("name", name)
	params.Set("citystatezip", location)
	params.Set("rid", "0x0")
	return s.baseURL + "/results?" + params.Encode()
}

// parseResultsPage classifies a rendered results document and extracts the
// contact sections. A captcha interstitial is a blocked signal; the site's
// no-records message yields empty fields.
func parseResultsPage(html string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	if doc.Find(`iframe[src*="captcha"]`).Length() > 0 {
		return nil, NewError(TruePeopleSearchName, KindBlocked, "captcha interstitial on results page")
	}
	if strings.Contains(doc.Find("div.record-count").Text(), tpsNotFoundText) {
		return map[string]string{}, nil
	}

	fields := make(map[string]string)
	setNumbered(fields, model.FieldEmail, sectionValues(doc, tpsEmailSection))
	setNumbered(fields, model.FieldPhone, sectionValues(doc, tpsPhoneSection))
	return fields, nil
}

// sectionValues locates the element whose entire text is the section title
// and returns the text of its following siblings, the layout the site uses
// for its contact blocks.
func sectionValues(doc *goquery.Document, title string) []string {
	var values []string
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != title {
			return true
		}
		sel.Parent().Children().Each(func(i int, child *goquery.Selection) {
			if i == 0 {
				return
			}
			if v := strings.TrimSpace(child.Text()); v != "" {
				values = append(values, v)
			}
		})
		return false
	})
	return values
}
