package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsreader/internal/config"
	"newsreader/internal/utils"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// NewsService proxies the upstream headline feed and extracts readable
// article bodies from third-party pages.
type NewsService struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
	baseURL   string
}

var newsService *NewsService

// GetNewsService returns the news service singleton.
func GetNewsService() *NewsService {
	if newsService == nil {
		newsService = &NewsService{
			client: &http.Client{
				Timeout: 30 * time.Second,
			},
			sanitizer: bluemonday.UGCPolicy(),
			baseURL:   config.Get().NewsBaseURL,
		}
	}
	return newsService
}

var allowedCategories = map[string]bool{
	"nasional":      true,
	"internasional": true,
	"ekonomi":       true,
	"olahraga":      true,
	"teknologi":     true,
	"hiburan":       true,
	"terbaru":       true,
}

// CategoryAllowed reports whether category is on the proxy allow-list.
func CategoryAllowed(category string) bool {
	return allowedCategories[category]
}

// FetchCategory proxies the upstream feed for a category. Responses are
// cached for 5 minutes so repeated browsing does not hammer the upstream.
func (s *NewsService) FetchCategory(category string) ([]byte, error) {
	cacheKey := "news:category:" + category
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]byte), nil
	}

	resp, err := s.client.Get(fmt.Sprintf("%s/%s", s.baseURL, category))
	if err != nil {
		return nil, fmt.Errorf("fetching news feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news feed status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading news feed: %w", err)
	}

	utils.GetCache().Set(cacheKey, body, 5*time.Minute)
	return body, nil
}

// ExtractedArticle is the result of readable-body extraction.
type ExtractedArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"` // sanitized HTML
	Excerpt string `json:"excerpt"`
}

// ExtractArticle fetches url and extracts the readable body with
// go-readability, then sanitizes the HTML before returning it.
func (s *NewsService) ExtractArticle(url string) (*ExtractedArticle, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Some news sites refuse requests without a browser UA
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading article: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), nil)
	if err != nil {
		return nil, fmt.Errorf("extracting article body: %w", err)
	}

	clean := s.sanitizer.Sanitize(article.Content)
	clean = stripRelatedLinks(clean)

	return &ExtractedArticle{
		Title:   article.Title,
		Content: clean,
		Excerpt: article.Excerpt,
	}, nil
}

// stripRelatedLinks removes "read more" style link lists that readability
// tends to keep inside news pages.
func stripRelatedLinks(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}

	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		links := list.Find("a").Length()
		items := list.Find("li").Length()
		if items > 0 && links >= items {
			list.Remove()
		}
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return content
	}
	return html
}
