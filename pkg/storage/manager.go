package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// ChangeFunc observes every configuration swap.
type ChangeFunc func(model.Configuration)

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithLogger routes lifecycle logs to logger.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefault overrides the document used when the store is empty or reset.
func WithDefault(doc Document) ManagerOption {
	return func(m *Manager) {
		if doc != nil {
			m.fallback = doc.Clone()
		}
	}
}

// WithOnChange registers a callback invoked after each successful swap.
func WithOnChange(fn ChangeFunc) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// Manager holds the active configuration. Every mutation validates the
// candidate first and swaps the document and its normalized form together,
// so a rejected import leaves the current state untouched. Writes are
// serialised from persisting through the swap, so the active document is
// always the one last written to the store.
type Manager struct {
	store     Store
	logger    *zap.Logger
	fallback  Document
	listeners []ChangeFunc

	// writeMu orders store writes together with the swap that follows them.
	writeMu sync.Mutex

	mu     sync.RWMutex
	doc    Document
	config model.Configuration
}

// NewManager builds a manager over store, starting from the default
// document until Load is called.
func NewManager(store Store, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("storage: store is required")
	}
	m := &Manager{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.fallback == nil {
		m.fallback = Default()
	}
	m.swap(m.fallback.Clone(), false)
	return m, nil
}

// Load reads the stored document. An empty store or an unreadable document
// falls back to the default; only store failures are returned.
func (m *Manager) Load(ctx context.Context) (model.Configuration, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	data, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		m.logger.Debug("no stored configuration, using default")
		return m.swap(m.fallback.Clone(), true), nil
	case err != nil:
		return model.Configuration{}, fmt.Errorf("storage: load: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		m.logger.Warn("stored configuration is unreadable, using default", zap.Error(err))
		return m.swap(m.fallback.Clone(), true), nil
	}
	m.logger.Info("configuration loaded", zap.Int("templates", len(doc.Configuration().Templates)))
	return m.swap(doc, true), nil
}

// Current returns the active normalized configuration.
func (m *Manager) Current() model.Configuration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Document returns a copy of the active raw document.
func (m *Manager) Document() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// Import parses data, persists it and makes it active.
func (m *Manager) Import(ctx context.Context, data []byte) (model.Configuration, error) {
	doc, err := Parse(data)
	if err != nil {
		m.logger.Warn("configuration import rejected", zap.Error(err))
		return model.Configuration{}, err
	}
	return m.Replace(ctx, doc)
}

// Replace validates doc, persists it and makes it active.
func (m *Manager) Replace(ctx context.Context, doc Document) (model.Configuration, error) {
	valid, err := Validate(doc)
	if err != nil {
		m.logger.Warn("configuration replace rejected", zap.Error(err))
		return model.Configuration{}, err
	}
	data, err := valid.Marshal()
	if err != nil {
		return model.Configuration{}, err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.store.Save(ctx, data); err != nil {
		return model.Configuration{}, fmt.Errorf("storage: save: %w", err)
	}
	cfg := m.swap(valid, true)
	m.logger.Info("configuration imported",
		zap.Int("sections", len(cfg.Form.Sections)),
		zap.Int("templates", len(cfg.Templates)),
	)
	return cfg, nil
}

// Reset clears the store and restores the default document.
func (m *Manager) Reset(ctx context.Context) (model.Configuration, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		return model.Configuration{}, fmt.Errorf("storage: clear: %w", err)
	}
	m.logger.Info("configuration reset to default")
	return m.swap(m.fallback.Clone(), true), nil
}

// Export encodes the active document as two-space indented JSON.
func (m *Manager) Export() ([]byte, error) {
	return m.Document().Marshal()
}

func (m *Manager) swap(doc Document, notify bool) model.Configuration {
	cfg := doc.Configuration()
	m.mu.Lock()
	m.doc = doc
	m.config = cfg
	m.mu.Unlock()
	if notify {
		for _, fn := range m.listeners {
			fn(cfg)
		}
	}
	return cfg
}
