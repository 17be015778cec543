// Package replay loads archived battles and turns them back into protocol
// batches.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is the public replay archive.
const DefaultBaseURL = "https://replay.pokemonshowdown.com"

// ErrEmptyReplay is returned when the archive answers with an empty body.
var ErrEmptyReplay = errors.New("replay response is empty")

// Replay is the archive document. Only the fields the client plays back are
// decoded.
type Replay struct {
	ID         string `json:"id"`
	Format     string `json:"format"`
	P1         string `json:"p1"`
	P2         string `json:"p2"`
	Log        string `json:"log"`
	UploadTime int64  `json:"uploadtime,omitempty"`
	Views      int64  `json:"views,omitempty"`
}

// Batches renders the replay as the two batches a live room would receive:
// the room init followed by the whole log.
func (r *Replay) Batches() []string {
	return []string{
		fmt.Sprintf(">%s\n|init|battle", r.ID),
		fmt.Sprintf(">%s\n%s", r.ID, strings.TrimRight(r.Log, "\n")),
	}
}

// Client downloads replays from the archive.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL, DefaultBaseURL when empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the replay with the given id ("gen9ou-2001234567").
func (c *Client) Fetch(ctx context.Context, id string) (*Replay, error) {
	id = strings.TrimSuffix(strings.TrimSpace(id), ".json")
	if id == "" {
		return nil, errors.New("replay id is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(id)+".json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("replay request returned status %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}

// Load reads a replay document from a file.
func Load(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a replay document and checks the fields playback needs.
func Decode(r io.Reader) (*Replay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyReplay
	}

	var rp Replay
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("error parsing replay json: %w", err)
	}
	if rp.ID == "" {
		return nil, errors.New("replay has no id")
	}
	if rp.Log == "" {
		return nil, errors.New("replay has no log")
	}
	return &rp, nil
}

// IsURLOrID reports whether source should be fetched rather than read from
// disk: anything that is not an existing file.
func IsURLOrID(source string) bool {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return true
	}
	_, err := os.Stat(source)
	return err != nil
}

// IDFromURL extracts the replay id from a replay page or document URL.
// Anything that does not parse as a URL is returned unchanged.
func IDFromURL(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return source
	}
	id := strings.Trim(u.Path, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return strings.TrimSuffix(id, ".json")
}

// Resolve loads source as a file when it exists, otherwise fetches it by id
// or URL from the archive.
func (c *Client) Resolve(ctx context.Context, source string) (*Replay, error) {
	if !IsURLOrID(source) {
		return Load(source)
	}
	return c.Fetch(ctx, IDFromURL(source))
}
