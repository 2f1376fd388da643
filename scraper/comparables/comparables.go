package comparables

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"jaikod-scoring/config"
	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// Scraper collects comparable listings for a category from a marketplace
// search page. COMPARABLES_URL is a template with {category} and {page}
// placeholders.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.KeySet
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:   utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

type card struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	Condition string `json:"condition"`
	Location  string `json:"location"`
	URL       string `json:"url"`
}

// Scrape walks up to PagesToScrape result pages for category.
func (s *Scraper) Scrape(ctx context.Context, category string) ([]*models.RawListing, error) {
	if s.cfg.ComparablesURL == "" {
		return nil, fmt.Errorf("comparables: COMPARABLES_URL is not set")
	}

	s.logger.Info("[comparables] Starting %s: %d pages, %d listings/page",
		category, s.cfg.PagesToScrape, s.cfg.ListingsPerPage)

	chromeBin := s.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[comparables] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var listings []*models.RawListing

	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		pageURL := PageURL(s.cfg.ComparablesURL, category, page)
		s.logger.Info("[comparables] Page %d: %s", page, pageURL)

		cards, err := s.scrapePage(browserCtx, pageURL, page)
		if err != nil {
			s.logger.Error("[comparables] Page %d failed: %v", page, err)
			break
		}

		pageListings := toRawListings(cards, category, s.seen, time.Now())
		if len(pageListings) == 0 {
			s.logger.Warn("[comparables] Page %d returned no new listings, stopping", page)
			break
		}

		s.enrich(browserCtx, pageListings)

		listings = append(listings, pageListings...)

		s.logger.Info("[comparables] Page %d done: %d listings so far", page, len(listings))

		select {
		case <-ctx.Done():
			return listings, ctx.Err()
		case <-time.After(time.Duration(s.cfg.RateLimitMs) * time.Millisecond):
		}
	}

	s.logger.Info("[comparables] %s complete: %d raw listings (%d unique URLs seen)", category, len(listings), s.seen.Size())
	return listings, nil
}

func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string, pageNum int) ([]card, error) {
	var cards []card

	err := s.retry.Do(browserCtx, fmt.Sprintf("scrape-page-%d", pageNum), func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`
				(function() {
					var limit = `+strconv.Itoa(s.cfg.ListingsPerPage)+`;
					var selectors = [
						'[data-testid="listing-card"]',
						'[itemprop="itemListElement"]',
						'article'
					];
					var cards = [];
					for (var i = 0; i < selectors.length; i++) {
						cards = document.querySelectorAll(selectors[i]);
						if (cards.length > 0) break;
					}

					var pick = function(el, sels) {
						for (var i = 0; i < sels.length; i++) {
							var found = el.querySelector(sels[i]);
							if (found && found.innerText) return found.innerText.trim();
						}
						return '';
					};

					var results = [];
					for (var j = 0; j < cards.length && results.length < limit; j++) {
						var c = cards[j];
						var link = c.querySelector('a[href]');
						results.push({
							title:     pick(c, ['[data-testid="listing-title"]', 'h2', 'h3']),
							price:     pick(c, ['[data-testid="listing-price"]', '[itemprop="price"]', '[class*="price"]']),
							condition: pick(c, ['[data-testid="listing-condition"]', '[class*="condition"]']),
							location:  pick(c, ['[data-testid="listing-location"]', '[class*="location"]']),
							url:       link ? link.href : ''
						});
					}
					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}
		return nil
	})

	s.logger.Debug("[comparables] Page %d: %d cards", pageNum, len(cards))
	return cards, err
}

// enrich visits detail pages for listings whose card lacked a price or condition.
func (s *Scraper) enrich(browserCtx context.Context, listings []*models.RawListing) {
	for _, listing := range listings {
		l := listing
		if l.RawPrice != "" && l.Condition != "" {
			continue
		}
		s.pool.Submit(func() {
			d, err := s.scrapeDetailPage(browserCtx, l.URL)
			if err != nil {
				s.logger.Warn("[comparables] Detail page failed for %s: %v", l.URL, err)
				return
			}
			if l.RawPrice == "" {
				l.RawPrice = d.Price
			}
			if l.Condition == "" {
				l.Condition = d.Condition
			}
			if l.Location == "" {
				l.Location = d.Location
			}
			s.logger.Debug("[comparables] Enriched: %s", l.URL)
		})
	}
	s.pool.Wait()
}

func (s *Scraper) scrapeDetailPage(browserCtx context.Context, pageURL string) (card, error) {
	var detail card

	err := s.retry.Do(browserCtx, "detail-page", func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(`
				(function() {
					var text = function(sel) {
						var el = document.querySelector(sel);
						return el && el.innerText ? el.innerText.trim() : '';
					};
					return {
						title:     text('h1'),
						price:     text('[itemprop="price"]') || text('[data-testid="item-price"]'),
						condition: text('[data-testid="item-condition"]') || text('[class*="condition"]'),
						location:  text('[data-testid="item-location"]') || text('[class*="location"]'),
						url:       location.href
					};
				})()
			`, &detail),
		)
	})

	return detail, err
}

// PageURL fills the {category} and {page} placeholders of template.
func PageURL(template, category string, page int) string {
	r := strings.NewReplacer(
		"{category}", url.PathEscape(category),
		"{page}", strconv.Itoa(page),
	)
	return r.Replace(template)
}

func toRawListings(cards []card, category string, seen *utils.KeySet, now time.Time) []*models.RawListing {
	out := make([]*models.RawListing, 0, len(cards))
	for _, c := range cards {
		if c.URL == "" || !seen.Add(c.URL) {
			continue
		}
		out = append(out, &models.RawListing{
			Title:     c.Title,
			RawPrice:  c.Price,
			Condition: c.Condition,
			Location:  c.Location,
			URL:       c.URL,
			Category:  category,
			ScrapedAt: now,
		})
	}
	return out
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
