// Package aliases loads brand alias maps from disk and keeps the registry current.
package aliases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/metrics"
)

// Parse reads a {"canonical": ["alias", ...], ...} object, keeping file order.
func Parse(r io.Reader) ([]brand.Group, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var groups []brand.Group
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read canonical: %w", err)
		}
		canonical, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected canonical name, got %v", tok)
		}

		var aliases []string
		if err := dec.Decode(&aliases); err != nil {
			return nil, fmt.Errorf("aliases of %q: %w", canonical, err)
		}
		groups = append(groups, brand.Group{Canonical: canonical, Aliases: aliases})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after alias object")
	}
	return groups, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read alias file: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// LoadFile parses the alias file at path into an alias map.
func LoadFile(path string) (*brand.AliasMap, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	groups, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return brand.NewAliasMap(groups), nil
}

// Loader (re)loads one alias file into a registry.
type Loader struct {
	path     string
	registry *brand.Registry
	logger   *zap.Logger
}

// Bootstrap loads path into a new registry. A missing or malformed file is a
// configuration error when required; otherwise the registry starts empty and
// publisher terms stay singletons until a reload succeeds.
func Bootstrap(path string, required bool, logger *zap.Logger) (*Loader, error) {
	l := &Loader{path: path, logger: logger}

	if path == "" {
		if required {
			return nil, fmt.Errorf("%w: alias file path is empty", domain.ErrConfiguration)
		}
		l.registry = brand.NewRegistry(nil, "")
		return l, nil
	}

	m, err := LoadFile(path)
	if err != nil {
		if required {
			return nil, fmt.Errorf("%w: load aliases: %w", domain.ErrConfiguration, err)
		}
		logger.Warn("Brand aliases unavailable, continuing without", zap.String("path", path), zap.Error(err))
		m = nil
	}

	l.registry = brand.NewRegistry(m, path)
	metrics.AliasGroups.Set(float64(m.Len()))
	return l, nil
}

// NewLoader wraps an existing registry.
func NewLoader(path string, registry *brand.Registry, logger *zap.Logger) *Loader {
	return &Loader{path: path, registry: registry, logger: logger}
}

// Registry returns the registry the loader maintains.
func (l *Loader) Registry() *brand.Registry { return l.registry }

// Path returns the alias file path.
func (l *Loader) Path() string { return l.path }

// Reload replaces the active map with the current file contents. On failure
// the previous map stays active.
func (l *Loader) Reload(_ context.Context) (brand.Status, error) {
	m, err := LoadFile(l.path)
	if err != nil {
		metrics.AliasReloadsTotal.WithLabelValues("error").Inc()
		l.logger.Warn("Alias reload failed, keeping previous map",
			zap.String("path", l.path),
			zap.Uint64("generation", l.registry.Status().Generation),
			zap.Error(err),
		)
		return l.registry.Status(), fmt.Errorf("reload aliases: %w", err)
	}

	st := l.registry.Replace(m, l.path)

	metrics.AliasReloadsTotal.WithLabelValues("ok").Inc()
	metrics.AliasGroups.Set(float64(st.Groups))
	l.logger.Info("Brand aliases reloaded",
		zap.String("path", l.path),
		zap.Int("groups", st.Groups),
		zap.Uint64("generation", st.Generation),
	)
	return st, nil
}
