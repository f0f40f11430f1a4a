package lexicon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"vocabtrainer/internal/models"
)

const loaderRequestTimeout = 30 * time.Second

// Sources are the raw general and academic word collections
type Sources struct {
	General  []models.WordEntry
	Academic []models.WordEntry
}

// Loader reads word collections from disk or over HTTP
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader. A nil client gets a default with a request timeout.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: loaderRequestTimeout}
	}
	return &Loader{client: client}
}

// Load reads a JSON array of word entries from a file path or http(s) URL
func (l *Loader) Load(ctx context.Context, source string) ([]models.WordEntry, error) {
	if source == "" {
		return nil, nil
	}

	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "vocabtrainer")

		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s returned status: %s", source, resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", source, err)
		}
		r = f
	}
	defer r.Close()

	var entries []models.WordEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}
	return entries, nil
}

// LoadAll fetches both sources concurrently and returns once both have finished.
// A failed source is left empty and its error is joined into the returned error.
func (l *Loader) LoadAll(ctx context.Context, general, academic string) (Sources, error) {
	type result struct {
		entries []models.WordEntry
		err     error
	}

	generalCh := make(chan result, 1)
	academicCh := make(chan result, 1)

	go func() {
		entries, err := l.Load(ctx, general)
		generalCh <- result{entries, err}
	}()
	go func() {
		entries, err := l.Load(ctx, academic)
		academicCh <- result{entries, err}
	}()

	g, a := <-generalCh, <-academicCh
	return Sources{General: g.entries, Academic: a.entries}, errors.Join(g.err, a.err)
}
