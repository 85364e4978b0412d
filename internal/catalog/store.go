package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrDecode     = errors.New("load catalog")
	ErrWrite      = errors.New("save catalog")
	ErrValidation = errors.New("invalid product")
	ErrDuplicate  = errors.New("duplicate product id")
)

type StoreDeps struct {
	Log     *zap.Logger
	Metrics *Metrics

	// Strict rejects duplicate ids, empty names and negative price/stock on
	// Add. Off by default: the catalog accepts any record as-is.
	Strict bool
}

// Store is the in-memory catalog plus the backend holding its last saved
// snapshot. It is not safe for concurrent use.
type Store struct {
	backend  Backend
	log      *zap.Logger
	metrics  *Metrics
	validate *validator.Validate

	products []Product
}

func NewStore(backend Backend, deps StoreDeps) *Store {
	s := &Store{
		backend: backend,
		log:     deps.Log,
		metrics: deps.Metrics,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if deps.Strict {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	s.metrics.setRecords(0)
	return s
}

func (s *Store) Backend() Backend { return s.backend }

// Load replaces the in-memory catalog with the persisted snapshot. A missing
// snapshot is not an error and leaves the catalog untouched; on any other
// failure the catalog also stays as it was.
func (s *Store) Load(ctx context.Context) ([]Product, error) {
	start := time.Now()
	log := s.log.With(zap.String("backend", s.backend.Name()))

	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNotExist) {
		s.metrics.observe(opLoad, resultMissing, start)
		log.Debug("no snapshot, keeping current catalog", zap.Int("records", len(s.products)))
		return s.List(), nil
	}
	if err != nil {
		s.metrics.observe(opLoad, resultError, start)
		log.Warn("read snapshot failed", zap.Error(err))
		return s.List(), fmt.Errorf("%w: %w", ErrDecode, err)
	}

	products, err := Decode(data)
	if err != nil {
		s.metrics.observe(opLoad, resultError, start)
		log.Warn("decode snapshot failed", zap.Error(err), zap.Int("bytes", len(data)))
		return s.List(), fmt.Errorf("%w: %w", ErrDecode, err)
	}

	s.products = products
	s.metrics.observe(opLoad, resultOK, start)
	s.metrics.setRecords(len(s.products))
	log.Debug("snapshot loaded", zap.Int("records", len(products)))
	return s.List(), nil
}

// Save writes the whole catalog, replacing the previous snapshot.
func (s *Store) Save(ctx context.Context) error {
	start := time.Now()
	log := s.log.With(zap.String("backend", s.backend.Name()))

	data, err := Encode(s.products)
	if err != nil {
		s.metrics.observe(opSave, resultError, start)
		log.Warn("encode snapshot failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := s.backend.Write(ctx, data); err != nil {
		s.metrics.observe(opSave, resultError, start)
		log.Warn("write snapshot failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s.metrics.observe(opSave, resultOK, start)
	log.Debug("snapshot saved", zap.Int("records", len(s.products)), zap.Int("bytes", len(data)))
	return nil
}

// Add appends p. It only fails in strict mode.
func (s *Store) Add(p Product) error {
	if s.validate != nil {
		if err := s.check(p); err != nil {
			return err
		}
	}

	s.products = append(s.products, p)
	s.metrics.setRecords(len(s.products))
	return nil
}

func (s *Store) check(p Product) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, dup := s.FindByID(p.ID); dup {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrDuplicate, p.ID)
	}
	return nil
}

// FindByID returns the first record with the given id in insertion order.
func (s *Store) FindByID(id int64) (Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Delete removes every record with the given id and reports how many went.
func (s *Store) Delete(id int64) int {
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	removed := len(s.products) - len(kept)
	clear(s.products[len(kept):])
	s.products = kept
	s.metrics.setRecords(len(s.products))
	return removed
}

// List returns a copy of the catalog in insertion order.
func (s *Store) List() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Len() int { return len(s.products) }
