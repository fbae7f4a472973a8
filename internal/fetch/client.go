package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tagdeck/internal/config"
	"tagdeck/internal/services"
)

// ErrNoRemoteMatch reports that the remote has no post for the hash.
var ErrNoRemoteMatch = errors.New("no remote match")

const maxResponseBytes = 8 << 20

// HTTPDoer describes the HTTP client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Post is the subset of a remote post tagdeck uses.
type Post struct {
	ID        int64  `json:"id"`
	MD5       string `json:"md5"`
	TagString string `json:"tag_string"`
	Source    string `json:"source"`
}

// Tags splits the space-separated tag string.
func (p Post) Tags() []string {
	return strings.Fields(p.TagString)
}

// Remote is one lookup answer.
type Remote struct {
	ContentHash string
	Tags        []string
	Source      string
}

// Client queries the remote tag source.
type Client struct {
	baseURL   string
	userAgent string
	apiKey    string
	client    HTTPDoer
}

// NewClient builds a Client from the fetch configuration.
func NewClient(cfg config.Fetch, timeout time.Duration) *Client {
	return NewHTTPClient(cfg.BaseURL, cfg.UserAgent, cfg.APIKey, &http.Client{Timeout: timeout})
}

// NewHTTPClient constructs a Client around an explicit HTTP doer.
func NewHTTPClient(baseURL, userAgent, apiKey string, client HTTPDoer) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent: strings.TrimSpace(userAgent),
		apiKey:    strings.TrimSpace(apiKey),
		client:    client,
	}
}

// Lookup fetches the post for hash. progress receives the fraction of the
// response body read when the server reports a length.
func (c *Client) Lookup(ctx context.Context, hash string, progress func(float64)) (Remote, error) {
	if c == nil || c.baseURL == "" {
		return Remote{}, services.Wrap(services.ErrConfiguration, "fetch", "lookup", "remote base url not configured", nil)
	}
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" {
		return Remote{}, services.Wrap(services.ErrValidation, "fetch", "lookup", "content hash is empty", nil)
	}

	query := url.Values{}
	query.Set("md5", hash)
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	endpoint := fmt.Sprintf("%s/posts.json?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Remote{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Remote{}, ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Remote{}, services.Wrap(services.ErrTimeout, "fetch", "lookup", "request timed out", err)
		}
		return Remote{}, services.Wrap(services.ErrTransient, "fetch", "lookup", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Remote{}, ErrNoRemoteMatch
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return Remote{}, services.Wrap(services.ErrTransient, "fetch", "lookup", fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return Remote{}, services.Wrap(services.ErrExternal, "fetch", "lookup", fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	}

	body, err := readAll(ctx, resp.Body, resp.ContentLength, progress)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Remote{}, ctxErr
		}
		return Remote{}, services.Wrap(services.ErrTransient, "fetch", "lookup", "read response", err)
	}
	post, err := decodePost(body, hash)
	if err != nil {
		return Remote{}, err
	}

	// An empty ContentHash is kept as is so reconciliation rejects the post.
	remoteHash := strings.ToLower(strings.TrimSpace(post.MD5))
	return Remote{
		ContentHash: remoteHash,
		Tags:        post.Tags(),
		Source:      c.sourceFor(post),
	}, nil
}

func (c *Client) sourceFor(post Post) string {
	if post.ID > 0 {
		return fmt.Sprintf("%s/posts/%d", c.baseURL, post.ID)
	}
	return c.baseURL
}

// decodePost accepts either a single post object or an array of posts. From
// an array it prefers the post whose md5 equals hash.
func decodePost(body []byte, hash string) (Post, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Post{}, ErrNoRemoteMatch
	}
	if trimmed[0] == '[' {
		var posts []Post
		if err := json.Unmarshal(trimmed, &posts); err != nil {
			return Post{}, services.Wrap(services.ErrExternal, "fetch", "decode", "malformed post list", err)
		}
		if len(posts) == 0 {
			return Post{}, ErrNoRemoteMatch
		}
		for _, post := range posts {
			if strings.EqualFold(strings.TrimSpace(post.MD5), hash) {
				return post, nil
			}
		}
		return posts[0], nil
	}
	var post Post
	if err := json.Unmarshal(trimmed, &post); err != nil {
		return Post{}, services.Wrap(services.ErrExternal, "fetch", "decode", "malformed post", err)
	}
	if post.ID == 0 && post.TagString == "" {
		return Post{}, ErrNoRemoteMatch
	}
	return post, nil
}

func readAll(ctx context.Context, r io.Reader, total int64, progress func(float64)) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	limited := io.LimitReader(r, maxResponseBytes+1)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := limited.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if buf.Len() > maxResponseBytes {
				return nil, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
			}
			if progress != nil && total > 0 {
				progress(min(float64(buf.Len())/float64(total), 1))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if progress != nil {
		progress(1)
	}
	return buf.Bytes(), nil
}
