package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
)

// maxPageBytes bounds a single downloaded page.
const maxPageBytes = 16 << 20

// Web fetches pages and converts HTML to Markdown. With Depth > 0 links
// are followed breadth-first, one level at a time.
type Web struct {
	URLs    []string
	Depth   int
	Client  *http.Client
	Workers int
	Logger  *zap.Logger
}

type page struct {
	url   string
	rec   fileset.Record
	links []string
	err   error
}

// Fetch downloads every page concurrently. Pages that fail become failures.
// Links are only followed to the hosts of the starting URLs, and a page
// whose record path was already produced is dropped.
func (w *Web) Fetch(ctx context.Context) (fileset.Batch, error) {
	if w.Logger == nil {
		w.Logger = zap.NewNop()
	}
	if w.Client == nil {
		w.Client = http.DefaultClient
	}
	workers := w.Workers
	if workers <= 0 {
		workers = 4
	}

	var batch fileset.Batch
	visited := map[string]bool{}
	paths := map[string]bool{}
	hosts := map[string]bool{}
	for _, u := range w.URLs {
		if parsed, err := url.Parse(u); err == nil {
			hosts[parsed.Host] = true
		}
	}
	level := w.URLs
	for depth := 0; depth <= w.Depth && len(level) > 0; depth++ {
		var todo []string
		for _, u := range level {
			clean, err := cleanURL(u)
			if err != nil {
				batch.Failed = append(batch.Failed, fileset.Failure{Path: u, Reason: err.Error()})
				continue
			}
			if !visited[clean] {
				visited[clean] = true
				todo = append(todo, clean)
			}
		}

		pages := make([]page, len(todo))
		p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
		for i, u := range todo {
			i, u := i, u
			p.Go(func(ctx context.Context) error {
				pages[i] = w.fetchPage(ctx, u, depth < w.Depth)
				return nil
			})
		}
		_ = p.Wait()
		if err := ctx.Err(); err != nil {
			return fileset.Batch{}, fileset.Aborted(err)
		}

		level = nil
		for _, pg := range pages {
			if pg.err != nil {
				w.Logger.Warn("Failed to fetch URL", zap.String("url", pg.url), zap.Error(pg.err))
				batch.Failed = append(batch.Failed, fileset.Failure{Path: pg.url, Reason: pg.err.Error()})
				continue
			}
			if paths[pg.rec.Path] {
				w.Logger.Warn("Skipping page with duplicate path",
					zap.String("url", pg.url),
					zap.String("path", pg.rec.Path))
				continue
			}
			paths[pg.rec.Path] = true
			batch.Records = append(batch.Records, pg.rec)
			for _, l := range pg.links {
				if parsed, err := url.Parse(l); err == nil && hosts[parsed.Host] {
					level = append(level, l)
				}
			}
		}
	}
	return batch, nil
}

func (w *Web) fetchPage(ctx context.Context, u string, wantLinks bool) page {
	pg := page{url: u}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		pg.err = err
		return pg
	}
	res, err := w.Client.Do(req)
	if err != nil {
		pg.err = err
		return pg
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		pg.err = fmt.Errorf("status code %d", res.StatusCode)
		return pg
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		pg.err = fmt.Errorf("read body: %w", err)
		return pg
	}

	contentType := strings.ToLower(res.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") {
		if !fileset.IsText(body) {
			pg.err = fmt.Errorf("unsupported content type %q", contentType)
			return pg
		}
		pg.rec = fileset.NewRecord(pagePath(u, false), string(body))
		return pg
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		pg.err = fmt.Errorf("parse html: %w", err)
		return pg
	}
	markdown, err := md.NewConverter("", true, nil).ConvertString(string(body))
	if err != nil {
		pg.err = fmt.Errorf("convert html to markdown: %w", err)
		return pg
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		markdown = fmt.Sprintf("# %s\n\nSource: %s\n\n%s", title, u, markdown)
	}
	pg.rec = fileset.NewRecord(pagePath(u, true), markdown)
	if wantLinks {
		pg.links = extractLinks(doc, res.Request.URL.String())
	}
	return pg
}

func extractLinks(doc *goquery.Document, base string) []string {
	parsed, err := url.Parse(base)
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
			return
		}
		resolved, err := parsed.Parse(href)
		if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
			return
		}
		links = append(links, resolved.String())
	})
	return links
}

func cleanURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %s: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %s: scheme must be http or https", raw)
	}
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	return u.String(), nil
}

// pagePath maps a URL to a record path: host followed by the URL path,
// with ".md" appended to converted pages.
func pagePath(raw string, markdown bool) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		p = "index"
	}
	p = u.Host + "/" + p
	if u.RawQuery != "" {
		p += "_" + strings.NewReplacer("&", "_", "=", "-").Replace(u.RawQuery)
	}
	if markdown && !strings.HasSuffix(p, ".md") {
		p += ".md"
	}
	return p
}
