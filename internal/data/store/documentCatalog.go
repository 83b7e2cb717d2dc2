package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/pkg/logger_i"
)

// DocumentCatalog is the list of ingested documents, persisted as JSON next to the stored files.
type DocumentCatalog struct {
	lock   sync.RWMutex
	path   string
	docs   map[string]commonModels.Document
	logger *logger_i.Logger
}

// LoadCatalog reads the catalog in dir. A missing file gives an empty catalog; an unreadable one
// is logged and replaced.
func LoadCatalog(dir string) (*DocumentCatalog, error) {
	c := &DocumentCatalog{
		path:   filepath.Join(dir, config.CatalogFileName),
		docs:   make(map[string]commonModels.Document),
		logger: logger_i.NewLogger("document_catalog"),
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	data, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var docs []commonModels.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Warn("Catalog is unreadable, starting empty", "path", c.path, "error", err)
		return c, nil
	}
	for _, d := range docs {
		c.docs[d.Id] = d
	}
	return c, nil
}

func (c *DocumentCatalog) Has(id string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	_, ok := c.docs[id]
	return ok
}

func (c *DocumentCatalog) Get(id string) (commonModels.Document, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	d, ok := c.docs[id]
	return d, ok
}

func (c *DocumentCatalog) Put(doc commonModels.Document) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.docs[doc.Id] = doc
	return c.save()
}

func (c *DocumentCatalog) Remove(id string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.docs, id)
	return c.save()
}

func (c *DocumentCatalog) Clear() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.docs = make(map[string]commonModels.Document)
	return c.save()
}

// List returns the documents in ingestion order.
func (c *DocumentCatalog) List() []commonModels.Document {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.sorted()
}

func (c *DocumentCatalog) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.docs)
}

func (c *DocumentCatalog) sorted() []commonModels.Document {
	out := make([]commonModels.Document, 0, len(c.docs))
	for _, d := range c.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastIngestTimestamp.Equal(out[j].LastIngestTimestamp) {
			return out[i].Id < out[j].Id
		}
		return out[i].LastIngestTimestamp.Before(out[j].LastIngestTimestamp)
	})
	return out
}

// save replaces the catalog file atomically. Caller holds the lock.
func (c *DocumentCatalog) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	data, err := json.MarshalIndent(c.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
