package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/store"
)

const metaDescriptionMax = 600

// FetcherOptions configures the source fetcher.
type FetcherOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxWorkers   int
	MaxBodyBytes int64
}

// Fetcher retrieves source pages and extracts their title and description,
// reading through a persistent cache so repeated verification runs do not
// re-hit museum servers.
type Fetcher struct {
	client *http.Client
	opts   FetcherOptions
	cache  store.Store

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a Fetcher. cache may be nil for uncached operation.
func NewFetcher(opts FetcherOptions, cache store.Store) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.MaxWorkers == 0 {
		opts.MaxWorkers = 8
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 200_000
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "curator-cli/1.0"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		cache:    cache,
		limiters: make(map[string]*rate.Limiter),
	}
}

// hostLimiter returns the per-host rate limiter, creating it on first use.
// Museum collection sites tolerate polite crawling; 2 rps is plenty.
func (f *Fetcher) hostLimiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(2, 2)
		f.limiters[host] = lim
	}
	return lim
}

// FetchAll retrieves every URL through a bounded worker pool and returns
// results keyed by the original URL. Individual fetch failures are recorded
// in the result status, never returned as errors.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) (map[string]model.FetchResult, error) {
	results := make(map[string]model.FetchResult, len(urls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.MaxWorkers)
	for _, u := range urls {
		g.Go(func() error {
			res := f.Fetch(gctx, u)
			mu.Lock()
			results[u] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Fetch retrieves one URL: cache first, then the Met collection API when the
// URL is a Met object page, then plain HTML retrieval.
func (f *Fetcher) Fetch(ctx context.Context, url string) model.FetchResult {
	if f.cache != nil {
		cached, err := f.cache.GetFetch(ctx, url)
		if err != nil {
			zap.L().Warn("fetch cache read failed", zap.String("url", url), zap.Error(err))
		} else if cached != nil {
			return *cached
		}
	}

	var res model.FetchResult
	if id := metObjectID(url); id != "" {
		res = f.fetchMetObject(ctx, url, id)
	} else {
		res = f.fetchHTML(ctx, url)
	}

	if f.cache != nil {
		if err := f.cache.SetFetch(ctx, url, res); err != nil {
			zap.L().Warn("fetch cache write failed", zap.String("url", url), zap.Error(err))
		}
	}
	return res
}

var metObjectPattern = regexp.MustCompile(`metmuseum\.org/art/collection/search/(\d+)`)

func metObjectID(url string) string {
	m := metObjectPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// fetchMetObject resolves a Met object page through the public collection
// API, which answers reliably where the HTML pages block automated clients.
func (f *Fetcher) fetchMetObject(ctx context.Context, url, objectID string) model.FetchResult {
	apiURL := "https://collectionapi.metmuseum.org/public/collection/v1/objects/" + objectID
	body, status, _, err := f.get(ctx, apiURL)
	if err != nil {
		return model.FetchResult{URL: url, Status: errStatus(err), FinalURL: url}
	}
	if status < 200 || status >= 300 {
		return model.FetchResult{URL: url, Status: fmt.Sprintf("http_%d", status), FinalURL: url}
	}

	var obj struct {
		Title             string `json:"title"`
		ArtistDisplayName string `json:"artistDisplayName"`
		ObjectDate        string `json:"objectDate"`
	}
	if err := json.Unmarshal(body, &obj); err != nil || obj.Title == "" {
		// Fall back to the HTML page if the API payload is unusable.
		return f.fetchHTML(ctx, url)
	}

	var descParts []string
	if obj.ArtistDisplayName != "" {
		descParts = append(descParts, obj.ArtistDisplayName)
	}
	if obj.ObjectDate != "" {
		descParts = append(descParts, obj.ObjectDate)
	}
	return model.FetchResult{
		URL:             url,
		Status:          fmt.Sprintf("http_%d", status),
		PageTitle:       obj.Title + " - The Metropolitan Museum of Art",
		MetaDescription: strings.Join(descParts, ", "),
		FinalURL:        url,
	}
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) model.FetchResult {
	body, status, finalURL, err := f.get(ctx, url)
	if err != nil {
		return model.FetchResult{URL: url, Status: errStatus(err), FinalURL: url}
	}
	res := model.FetchResult{
		URL:      url,
		Status:   fmt.Sprintf("http_%d", status),
		FinalURL: finalURL,
	}
	if status < 200 || status >= 400 {
		return res
	}

	title, metaDesc := parsePage(body)
	if title == "" {
		title = "(no title found)"
	}
	res.PageTitle = title
	res.MetaDescription = metaDesc
	return res
}

func (f *Fetcher) get(ctx context.Context, url string) (body []byte, status int, finalURL string, err error) {
	if host := Hostname(url); host != "" {
		if err := f.hostLimiter(host).Wait(ctx); err != nil {
			return nil, 0, "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, "", err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, "", err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, 0, "", err
	}
	return body, resp.StatusCode, resp.Request.URL.String(), nil
}

func errStatus(err error) string {
	return "url_error:" + err.Error()
}

// parsePage extracts the document title and the description (or
// og:description) meta content from an HTML body. Parsing is tolerant: a
// truncated body still yields whatever appeared before the cut.
func parsePage(body []byte) (title, metaDesc string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", ""
	}

	var ogDesc string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil {
					title = collapseWhitespace(textContent(n))
				}
			case "meta":
				var name, property, content string
				for _, a := range n.Attr {
					switch strings.ToLower(a.Key) {
					case "name":
						name = strings.ToLower(a.Val)
					case "property":
						property = strings.ToLower(a.Val)
					case "content":
						content = a.Val
					}
				}
				if content != "" {
					if name == "description" && metaDesc == "" {
						metaDesc = collapseWhitespace(content)
					}
					if property == "og:description" && ogDesc == "" {
						ogDesc = collapseWhitespace(content)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if metaDesc == "" {
		metaDesc = ogDesc
	}
	if r := []rune(metaDesc); len(r) > metaDescriptionMax {
		metaDesc = string(r[:metaDescriptionMax])
	}
	return title, metaDesc
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
