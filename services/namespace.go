package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"biorel/belns"
	"biorel/models"
)

var (
	// ErrMissingNamespaceModel is returned when a manager is built without a namespace source.
	ErrMissingNamespaceModel = errors.New("namespace manager: no namespace source configured")
	// ErrMissingDatabase is returned when a manager is built without a database.
	ErrMissingDatabase = errors.New("namespace manager: no database configured")
)

const defaultBatchSize = 500

// Identifiers optionally override how a namespace identifies itself.
// Empty fields fall back to values derived from the module name.
type Identifiers struct {
	RecommendedName string
	Namespace       string // keyword, e.g. "UNIPROT"
	URL             string
	QueryURL        string // with "[VALUE]" placeholder
}

// NamespaceSource is the strategy a NamespaceManager synchronizes from.
// M is the identifier record type of the source.
type NamespaceSource[M any] interface {
	ModuleName() string
	Identifiers() Identifiers

	// IsPopulated reports whether the identifier records are already stored.
	IsPopulated(ctx context.Context) (bool, error)
	Populate(ctx context.Context) error
	Count(ctx context.Context) (int64, error)

	// Iterate calls fn for every record, always in the same order.
	Iterate(ctx context.Context, fn func(M) error) error

	Identifier(record M) string
	// Entry derives the namespace entry of record, or nil when none can be derived.
	Entry(record M) *models.NamespaceEntry
}

// UploadResult reports what Upload did.
type UploadResult struct {
	Namespace *models.Namespace
	Created   bool
	Added     int
	Skipped   int
}

// NamespaceOption configures a NamespaceManager.
type NamespaceOption func(*namespaceOptions)

type namespaceOptions struct {
	entryKey  func(models.NamespaceEntry) string
	batchSize int
	now       func() time.Time
}

// WithEntryKey overrides the key that decides whether an entry is already present.
// The default key is the entry identifier.
func WithEntryKey(key func(models.NamespaceEntry) string) NamespaceOption {
	return func(o *namespaceOptions) { o.entryKey = key }
}

// WithBatchSize sets how many entries are inserted per statement.
func WithBatchSize(n int) NamespaceOption {
	return func(o *namespaceOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func withClock(now func() time.Time) NamespaceOption {
	return func(o *namespaceOptions) { o.now = now }
}

// NamespaceManager keeps the namespace of one source in sync with the source's records.
// Upload and Drop are serialized per manager; on PostgreSQL their transactions also hold an
// advisory lock on the namespace identity, so separate processes do not interleave either.
type NamespaceManager[M any] struct {
	DB     *gorm.DB
	Source NamespaceSource[M]
	Logger *zap.Logger

	mu   sync.Mutex
	opts namespaceOptions
}

// NewNamespaceManager creates a manager for source. Both db and source are required.
func NewNamespaceManager[M any](db *gorm.DB, source NamespaceSource[M], logger *zap.Logger, opts ...NamespaceOption) (*NamespaceManager[M], error) {
	if source == nil {
		return nil, ErrMissingNamespaceModel
	}
	if db == nil {
		return nil, ErrMissingDatabase
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := namespaceOptions{
		entryKey:  func(e models.NamespaceEntry) string { return e.Identifier },
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &NamespaceManager[M]{
		DB:     db,
		Source: source,
		Logger: logger.With(zap.String("module", source.ModuleName())),
		opts:   o,
	}, nil
}

// Name returns the recommended name, or the module name.
func (m *NamespaceManager[M]) Name() string {
	if n := m.Source.Identifiers().RecommendedName; n != "" {
		return n
	}
	return m.Source.ModuleName()
}

// Keyword returns the namespace keyword, or the upper cased module name.
func (m *NamespaceManager[M]) Keyword() string {
	if k := m.Source.Identifiers().Namespace; k != "" {
		return k
	}
	return strings.ToUpper(m.Source.ModuleName())
}

// URL returns the namespace URL, or "_" followed by the upper cased module name.
func (m *NamespaceManager[M]) URL() string {
	if u := m.Source.Identifiers().URL; u != "" {
		return u
	}
	return "_" + strings.ToUpper(m.Source.ModuleName())
}

// Namespace returns the stored namespace, or nil when it does not exist.
func (m *NamespaceManager[M]) Namespace(ctx context.Context) (*models.Namespace, error) {
	return m.lookup(m.DB.WithContext(ctx))
}

func (m *NamespaceManager[M]) lookup(db *gorm.DB) (*models.Namespace, error) {
	var ns models.Namespace
	err := db.Where("keyword = ? AND url = ?", m.Keyword(), m.URL()).First(&ns).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup namespace %s: %w", m.Keyword(), err)
	}
	return &ns, nil
}

// Upload creates the namespace from the source's records. When the namespace exists and
// update is set, only entries whose key is not yet present are added. Otherwise the
// existing namespace is returned unchanged.
func (m *NamespaceManager[M]) Upload(ctx context.Context, update bool) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	populated, err := m.Source.IsPopulated(ctx)
	if err != nil {
		return nil, fmt.Errorf("check %s records: %w", m.Source.ModuleName(), err)
	}
	if !populated {
		m.Logger.Info("Populating identifier records")
		if err := m.Source.Populate(ctx); err != nil {
			return nil, fmt.Errorf("populate %s: %w", m.Source.ModuleName(), err)
		}
	}

	ns, err := m.Namespace(ctx)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return m.create(ctx)
	}
	if !update {
		m.Logger.Info("Namespace already exists", zap.Stringer("namespace", ns))
		return &UploadResult{Namespace: ns}, nil
	}
	return m.update(ctx, ns)
}

// collect derives the entries of all records. Records without an entry or without a
// name are counted as skipped. Entries whose key is in seen are dropped.
func (m *NamespaceManager[M]) collect(ctx context.Context, seen map[string]struct{}) ([]models.NamespaceEntry, int, error) {
	total, err := m.Source.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s records: %w", m.Source.ModuleName(), err)
	}
	entries := make([]models.NamespaceEntry, 0, total)
	skipped := 0
	err = m.Source.Iterate(ctx, func(record M) error {
		entry := m.Source.Entry(record)
		if entry == nil || entry.Name == "" {
			skipped++
			m.Logger.Debug("Skipping record without name", zap.String("identifier", m.Source.Identifier(record)))
			return nil
		}
		key := m.opts.entryKey(*entry)
		if _, ok := seen[key]; ok {
			return nil
		}
		seen[key] = struct{}{}
		entries = append(entries, *entry)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("iterate %s records: %w", m.Source.ModuleName(), err)
	}
	return entries, skipped, nil
}

func (m *NamespaceManager[M]) create(ctx context.Context) (*UploadResult, error) {
	entries, skipped, err := m.collect(ctx, make(map[string]struct{}))
	if err != nil {
		return nil, err
	}

	ids := m.Source.Identifiers()
	ns := &models.Namespace{
		Name:     m.Name(),
		Keyword:  m.Keyword(),
		URL:      m.URL(),
		Version:  m.opts.now().UTC().Format("2006-01-02T15:04:05"),
		Domain:   belns.DomainOther,
		QueryURL: ids.QueryURL,
	}

	err = m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.lock(tx); err != nil {
			return err
		}
		if err := tx.Create(ns).Error; err != nil {
			return fmt.Errorf("create namespace %s: %w", ns.Keyword, err)
		}
		return m.insert(tx, ns.ID, entries)
	})
	if err != nil {
		return nil, err
	}

	m.record(len(entries), skipped)
	m.Logger.Info("Created namespace",
		zap.Stringer("namespace", ns),
		zap.Int("entries", len(entries)),
		zap.Int("skipped", skipped))
	return &UploadResult{Namespace: ns, Created: true, Added: len(entries), Skipped: skipped}, nil
}

func (m *NamespaceManager[M]) update(ctx context.Context, ns *models.Namespace) (*UploadResult, error) {
	var added, skipped int
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.lock(tx); err != nil {
			return err
		}
		var existing []models.NamespaceEntry
		if err := tx.Where("namespace_id = ?", ns.ID).Find(&existing).Error; err != nil {
			return fmt.Errorf("load entries of %s: %w", ns.Keyword, err)
		}
		seen := make(map[string]struct{}, len(existing))
		for _, e := range existing {
			seen[m.opts.entryKey(e)] = struct{}{}
		}

		entries, s, err := m.collect(ctx, seen)
		if err != nil {
			return err
		}
		added, skipped = len(entries), s
		return m.insert(tx, ns.ID, entries)
	})
	if err != nil {
		return nil, err
	}

	m.record(added, skipped)
	m.Logger.Info("Updated namespace",
		zap.Stringer("namespace", ns),
		zap.Int("added", added),
		zap.Int("skipped", skipped))
	return &UploadResult{Namespace: ns, Added: added, Skipped: skipped}, nil
}

// lock takes a transaction scoped advisory lock on the namespace identity. Other
// dialects serialize writers on their own and are left alone.
func (m *NamespaceManager[M]) lock(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	h := fnv.New64a()
	h.Write([]byte(m.Keyword() + "\x00" + m.URL()))
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(h.Sum64())).Error; err != nil {
		return fmt.Errorf("lock namespace %s: %w", m.Keyword(), err)
	}
	return nil
}

func (m *NamespaceManager[M]) insert(tx *gorm.DB, namespaceID uint, entries []models.NamespaceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].ID = 0
		entries[i].NamespaceID = namespaceID
	}
	if err := tx.CreateInBatches(entries, m.opts.batchSize).Error; err != nil {
		return fmt.Errorf("insert namespace entries: %w", err)
	}
	return nil
}

func (m *NamespaceManager[M]) record(added, skipped int) {
	namespaceEntriesAdded.WithLabelValues(m.Keyword()).Add(float64(added))
	namespaceEntriesSkipped.WithLabelValues(m.Keyword()).Add(float64(skipped))
}

// Drop deletes the namespace and all of its entries. It returns the deleted namespace,
// or nil when there was none.
func (m *NamespaceManager[M]) Drop(ctx context.Context) (*models.Namespace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dropped *models.Namespace
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.lock(tx); err != nil {
			return err
		}
		ns, err := m.lookup(tx)
		if err != nil || ns == nil {
			return err
		}
		if err := tx.Where("namespace_id = ?", ns.ID).Delete(&models.NamespaceEntry{}).Error; err != nil {
			return fmt.Errorf("delete entries of %s: %w", ns.Keyword, err)
		}
		if err := tx.Delete(ns).Error; err != nil {
			return fmt.Errorf("delete namespace %s: %w", ns.Keyword, err)
		}
		dropped = ns
		return nil
	})
	if err != nil {
		return nil, err
	}
	if dropped == nil {
		m.Logger.Info("No namespace to drop")
	} else {
		m.Logger.Info("Dropped namespace", zap.Stringer("namespace", dropped))
	}
	return dropped, nil
}

// Write writes the namespace as a BEL namespace file built from the source's identifiers.
// Nothing is read from or written to the namespace tables.
func (m *NamespaceManager[M]) Write(ctx context.Context, w io.Writer) error {
	populated, err := m.Source.IsPopulated(ctx)
	if err != nil {
		return fmt.Errorf("check %s records: %w", m.Source.ModuleName(), err)
	}
	if !populated {
		if err := m.Source.Populate(ctx); err != nil {
			return fmt.Errorf("populate %s: %w", m.Source.ModuleName(), err)
		}
	}

	var values []string
	err = m.Source.Iterate(ctx, func(record M) error {
		values = append(values, m.Source.Identifier(record))
		return nil
	})
	if err != nil {
		return fmt.Errorf("iterate %s records: %w", m.Source.ModuleName(), err)
	}

	return belns.Write(w, belns.Header{
		Name:     m.Name(),
		Keyword:  m.Keyword(),
		Domain:   belns.DomainOther,
		QueryURL: m.Source.Identifiers().QueryURL,
		Created:  m.opts.now(),
	}, values)
}
