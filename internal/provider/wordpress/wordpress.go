package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"postauto/internal/entity"
	"postauto/pkg/artifacts"
)

type CredentialsSource interface {
	GetWordPressConfig() (*entity.WordPressConfig, error)
}

type RateLimiter interface {
	CheckPostLimit() error
	RecordUsage(usageType entity.UsageType, count int, metadata map[string]interface{})
}

// Service publishes finished posts to a WordPress site over the REST API,
// uploading the generated images as media attachments first.
type Service struct {
	creds      CredentialsSource
	limiter    RateLimiter
	store      artifacts.Store
	httpClient *http.Client
}

func NewService(creds CredentialsSource, limiter RateLimiter, store artifacts.Store, timeout time.Duration) *Service {
	return &Service{
		creds:      creds,
		limiter:    limiter,
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PublishedPost carries the remote identifiers back onto the post record.
type PublishedPost struct {
	ID  string
	URL string
}

// UploadedMedia is a media attachment created on the site.
type UploadedMedia struct {
	ID  int
	URL string
}

type mediaResponse struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

type postRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// Publish uploads the post's images and creates a published post with the
// images distributed through the body. The post limit is checked before any
// remote write.
func (s *Service) Publish(ctx context.Context, post *entity.Post) (*PublishedPost, error) {
	cfg, err := s.creds.GetWordPressConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &entity.NotConfiguredError{Service: "WordPress"}
	}

	if err := s.limiter.CheckPostLimit(); err != nil {
		return nil, err
	}

	title := post.Title()

	media := make([]UploadedMedia, 0, len(post.GeneratedImages))
	for i, ref := range post.GeneratedImages {
		uploaded, err := s.uploadMedia(ctx, cfg, ref, fmt.Sprintf("%s (%d)", title, i+1))
		if err != nil {
			return nil, err
		}
		media = append(media, *uploaded)
	}

	content := distributeImages(post.HTMLContent, media)

	req := postRequest{
		Title:   title,
		Content: content,
		Status:  "publish",
	}
	if len(media) > 0 {
		req.FeaturedMedia = media[0].ID
	}

	created, err := s.createPost(ctx, cfg, req)
	if err != nil {
		return nil, err
	}

	s.limiter.RecordUsage(entity.UsagePostCreation, 1, map[string]interface{}{"post_id": post.ID, "wordpress_id": created.ID})

	return &PublishedPost{
		ID:  fmt.Sprintf("%d", created.ID),
		URL: created.Link,
	}, nil
}

// TestConnection verifies the stored credentials against the users endpoint.
func (s *Service) TestConnection(ctx context.Context) error {
	cfg, err := s.creds.GetWordPressConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		return &entity.NotConfiguredError{Service: "WordPress"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL(cfg, "/users/me"), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(cfg.User, cfg.AppPassword)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &entity.ProviderError{Provider: "WordPress", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &entity.ProviderError{Provider: "WordPress", Message: fmt.Sprintf("authentication check failed with status %d", resp.StatusCode)}
	}
	return nil
}

func (s *Service) uploadMedia(ctx context.Context, cfg *entity.WordPressConfig, ref, altText string) (*UploadedMedia, error) {
	data, err := s.store.Read(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", ref, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filenameFromRef(ref))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.WriteField("alt_text", altText); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL(cfg, "/media"), &body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.User, cfg.AppPassword)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "WordPress", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "WordPress", Err: err}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &entity.ProviderError{Provider: "WordPress", Message: fmt.Sprintf("media upload failed with status %d", resp.StatusCode)}
	}

	var uploaded mediaResponse
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return nil, &entity.ProviderError{Provider: "WordPress", Message: "invalid media response", Err: err}
	}

	return &UploadedMedia{ID: uploaded.ID, URL: uploaded.SourceURL}, nil
}

func (s *Service) createPost(ctx context.Context, cfg *entity.WordPressConfig, post postRequest) (*postResponse, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL(cfg, "/posts"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.User, cfg.AppPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "WordPress", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "WordPress", Err: err}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &entity.ProviderError{Provider: "WordPress", Message: fmt.Sprintf("post creation failed with status %d", resp.StatusCode)}
	}

	var created postResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, &entity.ProviderError{Provider: "WordPress", Message: "invalid post response", Err: err}
	}

	return &created, nil
}

func apiURL(cfg *entity.WordPressConfig, path string) string {
	return strings.TrimRight(cfg.URL, "/") + "/wp-json/wp/v2" + path
}

func filenameFromRef(ref string) string {
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

// distributeImages interleaves image figures evenly between the content's
// paragraphs. With n images and p paragraphs, image i goes after paragraph
// (i+1)*p/(n+1), clamped to the last paragraph.
func distributeImages(html string, media []UploadedMedia) string {
	if len(media) == 0 {
		return html
	}

	paragraphs := strings.SplitAfter(html, "</p>")
	// SplitAfter leaves a trailing element for text after the last </p>;
	// keep it out of the position math when it is empty.
	if len(paragraphs) > 1 && strings.TrimSpace(paragraphs[len(paragraphs)-1]) == "" {
		paragraphs = paragraphs[:len(paragraphs)-1]
	}

	inserts := make(map[int][]string, len(media))
	for i, m := range media {
		pos := (i + 1) * len(paragraphs) / (len(media) + 1)
		if pos > len(paragraphs)-1 {
			pos = len(paragraphs) - 1
		}
		inserts[pos] = append(inserts[pos], imageFigure(m))
	}

	var b strings.Builder
	for i, paragraph := range paragraphs {
		b.WriteString(paragraph)
		for _, figure := range inserts[i] {
			b.WriteString("\n")
			b.WriteString(figure)
		}
	}
	return b.String()
}

func imageFigure(m UploadedMedia) string {
	return fmt.Sprintf(`<figure class="wp-block-image"><img src="%s" class="wp-image-%d"/></figure>`, m.URL, m.ID)
}
