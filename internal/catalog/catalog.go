// Package catalog holds the device-type reference data used to classify
// devices: vendor names by hardware-address prefix and keyword sets per
// device category.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"dhcpconsole/pkg/utils"
)

// maxResourceSize bounds a catalogue fetched over HTTP
const maxResourceSize = 4 << 20

// Category is a device category with its display icon and match keywords
type Category struct {
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Keywords []string `json:"keywords"`
}

// Catalogue maps hardware-address prefixes to vendors and lists the
// device categories in declaration order.
type Catalogue struct {
	Prefixes   map[string]string
	Categories []Category
}

// Empty returns a catalogue that classifies everything as unknown
func Empty() *Catalogue {
	return &Catalogue{
		Prefixes:   make(map[string]string),
		Categories: []Category{},
	}
}

// Vendor looks up the vendor name for the prefix of mac
func (c *Catalogue) Vendor(mac string) (string, bool) {
	if c == nil || len(c.Prefixes) == 0 {
		return "", false
	}
	vendor, ok := c.Prefixes[utils.MACPrefix(mac)]
	return vendor, ok
}

// Len returns the number of prefixes and categories
func (c *Catalogue) Len() (prefixes, categories int) {
	if c == nil {
		return 0, 0
	}
	return len(c.Prefixes), len(c.Categories)
}

type document struct {
	MACPrefixes      map[string]string `json:"mac_prefixes"`
	DeviceCategories categoryList      `json:"device_categories"`
}

// Parse decodes a catalogue document. Category order in the document is
// preserved since it decides ties between categories.
func Parse(data []byte) (*Catalogue, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse device catalogue: %w", err)
	}

	cat := Empty()
	for prefix, vendor := range doc.MACPrefixes {
		cat.Prefixes[utils.MACPrefix(prefix)] = vendor
	}
	if doc.DeviceCategories != nil {
		cat.Categories = doc.DeviceCategories
	}
	return cat, nil
}

// categoryList decodes a JSON object into a slice, keeping key order
type categoryList []Category

func (l *categoryList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("device_categories must be an object")
	}

	var out categoryList
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected category key %v", tok)
		}

		var body struct {
			Icon     string   `json:"icon"`
			Keywords []string `json:"keywords"`
		}
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("category %s: %w", name, err)
		}

		keywords := make([]string, 0, len(body.Keywords))
		for _, kw := range body.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}

		category := Category{Name: name, Icon: body.Icon, Keywords: keywords}
		if i, exists := index[name]; exists {
			out[i] = category
			continue
		}
		index[name] = len(out)
		out = append(out, category)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*l = out
	return nil
}

// Load reads a catalogue from a local file or an http(s) URL
func Load(ctx context.Context, source string, client *http.Client) (*Catalogue, error) {
	var (
		data []byte
		err  error
	)

	if isURL(source) {
		data, err = fetch(ctx, source, client)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read device catalogue %s: %w", source, err)
	}

	return Parse(data)
}

// LoadOrEmpty loads the catalogue and falls back to Empty on any failure
func LoadOrEmpty(ctx context.Context, source string, client *http.Client) *Catalogue {
	if source == "" {
		log.Printf("Warning: no device catalogue configured, classification disabled")
		return Empty()
	}

	cat, err := Load(ctx, source, client)
	if err != nil {
		log.Printf("Warning: could not load device catalogue: %v", err)
		return Empty()
	}

	prefixes, categories := cat.Len()
	log.Printf("Loaded device catalogue from %s (%d prefixes, %d categories)", source, prefixes, categories)
	return cat
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func fetch(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
}

// Store holds the catalogue currently in use
type Store struct {
	current atomic.Pointer[Catalogue]
}

// NewStore creates a store seeded with cat
func NewStore(cat *Catalogue) *Store {
	s := &Store{}
	s.Replace(cat)
	return s
}

// Current returns the catalogue in use, never nil
func (s *Store) Current() *Catalogue {
	if cat := s.current.Load(); cat != nil {
		return cat
	}
	return Empty()
}

// Replace swaps in a new catalogue
func (s *Store) Replace(cat *Catalogue) {
	if cat == nil {
		cat = Empty()
	}
	s.current.Store(cat)
}
