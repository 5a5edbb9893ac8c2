package scraper

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/wangxy/wfmaster/internal/match"
)

const (
	DefaultBaseURL = "https://chn.worldfootball.net"
	UserAgent      = "wfmaster/1.0 (github.com/wangxy/wfmaster)"
	Timeout        = 30 * time.Second

	maxRetries = 3
)

// Scraper fetches and parses competition schedules.
type Scraper struct {
	client  *http.Client
	baseURL string
	log     *logrus.Logger
}

// New creates a Scraper. An empty baseURL falls back to the production site.
func New(baseURL string, log *logrus.Logger) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logrus.New()
	}
	return &Scraper{
		client:  &http.Client{Timeout: Timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// FetchCompetition downloads and parses the all-matches page for one
// competition and season. slug is the site's URL component (e.g.
// "eng-premier-league"), competition the canonical name stamped onto every
// returned row.
func (s *Scraper) FetchCompetition(slug, season, competition string) ([]match.RawMatch, error) {
	url := fmt.Sprintf("%s/all_matches/%s-%s/", s.baseURL, slug, season)

	var body []byte
	fetch := func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			if resp.StatusCode >= 500 {
				return err
			}
			return backoff.Permanent(err)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading page: %w", err)
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
	if err := backoff.RetryNotify(fetch, policy, func(err error, wait time.Duration) {
		s.log.WithFields(logrus.Fields{"url": url, "wait": wait}).Warnf("retrying fetch: %v", err)
	}); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	rows, err := ParseSchedule(strings.NewReader(string(body)), season, competition)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	s.log.WithFields(logrus.Fields{"competition": competition, "matches": len(rows)}).Info("scraped schedule")
	return rows, nil
}

// leagueRoundPattern matches the site's league round headers, e.g. "1. Round".
var leagueRoundPattern = regexp.MustCompile(`^(\d+)\.\s*Round`)

// ParseSchedule extracts raw match rows from an all-matches page.
func ParseSchedule(r io.Reader, season, competition string) ([]match.RawMatch, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find("table.standard_tabelle").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no match table found")
	}

	rows := make([]match.RawMatch, 0)
	currentRound := ""
	currentDate := ""

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if th := tr.Find("th").First(); th.Length() > 0 {
			currentRound = roundLabel(strings.TrimSpace(th.Text()))
			return
		}

		cells := tr.Find("td")
		if cells.Length() < 6 {
			return
		}

		date := strings.TrimSpace(cells.Eq(0).Text())
		if date == "" {
			date = currentDate // dates are only printed on a day's first match
		} else {
			currentDate = date
		}

		rows = append(rows, match.RawMatch{
			Season:      season,
			Competition: competition,
			Round:       currentRound,
			Date:        date,
			Time:        strings.TrimSpace(cells.Eq(1).Text()),
			HomeTeam:    strings.TrimSpace(cells.Eq(2).Text()),
			AwayTeam:    strings.TrimSpace(cells.Eq(4).Text()),
			Score:       strings.TrimSpace(cells.Eq(5).Text()),
			MatchURL:    cellURL(cells.Eq(5)),
			HomeURL:     cellURL(cells.Eq(2)),
			AwayURL:     cellURL(cells.Eq(4)),
		})
	})

	return rows, nil
}

// roundLabel normalizes league round headers ("1. Round" -> "Round 01");
// cup stage headers pass through unchanged.
func roundLabel(header string) string {
	if m := leagueRoundPattern.FindStringSubmatch(header); m != nil {
		n, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("Round %02d", n)
	}
	return header
}

// cellURL extracts the first link in a cell as an absolute URL.
func cellURL(cell *goquery.Selection) string {
	href, ok := cell.Find("a").First().Attr("href")
	if !ok {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return DefaultBaseURL + "/" + strings.TrimLeft(href, "/")
}

// Pause returns a randomized delay between competition fetches, keeping the
// scrape rate polite.
func Pause() time.Duration {
	return time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
}
