package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/botutils/pkg/codec"
	"github.com/aescanero/botutils/pkg/ports"
	"github.com/aescanero/botutils/pkg/resolve"
)

// ErrUnknownModule is returned when a module name was never registered with the service
var ErrUnknownModule = errors.New("unknown module")

// Operation names reported to metrics
const (
	opSave   = "save"
	opLoad   = "load"
	opDelete = "delete"
)

// Service stores and loads typed bot state
type Service struct {
	storage   ports.StateStorage
	metrics   ports.MetricsCollector
	domain    *resolve.Domain
	codec     *codec.Codec
	validator *Validator
	logger    *zap.Logger
	ttl       time.Duration

	// Designated modules, resolvable only inside a Load scope
	mu      sync.RWMutex
	modules map[string]resolve.Module
}

// NewService creates a new state service
func NewService(
	storage ports.StateStorage,
	domain *resolve.Domain,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	ttl time.Duration,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:   storage,
		metrics:   metrics,
		domain:    domain,
		codec:     codec.New(domain),
		validator: NewValidator(),
		logger:    logger,
		ttl:       ttl,
		modules:   make(map[string]resolve.Module),
	}
}

// RegisterModule makes m addressable by its full name.
// The module is not loaded into the domain.
func (s *Service) RegisterModule(m resolve.Module) error {
	if m == nil {
		return resolve.ErrNilModule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.modules[m.FullName()] = m
	s.logger.Info("module registered", zap.String("module", m.FullName()))
	return nil
}

// Module returns a registered module by full name.
// Malformed identities are rejected before the lookup.
func (s *Service) Module(fullName string) (resolve.Module, error) {
	if _, err := resolve.ParseIdentity(fullName); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.modules[fullName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, fullName)
	}
	return m, nil
}

// Modules returns the full names of registered modules in sorted order
func (s *Service) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save encodes v as typeName from module m and stores it.
// An empty key is replaced by a generated one, which is returned.
func (s *Service) Save(ctx context.Context, key string, m resolve.Module, typeName string, v any) (string, error) {
	start := time.Now()

	if key == "" {
		key = uuid.New().String()
	}
	if err := s.validator.Validate(key); err != nil {
		s.record(opSave, start, err)
		return "", fmt.Errorf("validation failed: %w", err)
	}

	data, err := s.codec.Encode(m, typeName, v)
	if err != nil {
		s.record(opSave, start, err)
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	if err := s.storage.Save(ctx, key, data); err != nil {
		s.logger.Error("failed to save state",
			zap.String("key", key),
			zap.Error(err))
		s.record(opSave, start, err)
		return "", fmt.Errorf("failed to save state: %w", err)
	}

	if s.ttl > 0 {
		if err := s.storage.SetTTL(ctx, key, s.ttl); err != nil {
			// Do not leave an entry without expiry behind a failed save
			if delErr := s.storage.Delete(ctx, key); delErr != nil {
				s.logger.Error("failed to roll back state without TTL",
					zap.String("key", key),
					zap.Error(delErr))
			}
			s.record(opSave, start, err)
			return "", fmt.Errorf("failed to set state TTL: %w", err)
		}
	}

	s.record(opSave, start, nil)
	s.logger.Debug("state saved",
		zap.String("key", key),
		zap.String("type", codec.QualifiedTypeName(typeName, m.FullName())))

	return key, nil
}

// Load reads the state under key and decodes it with m available for
// resolution. The registration is released before Load returns.
func (s *Service) Load(ctx context.Context, key string, m resolve.Module) (value any, err error) {
	start := time.Now()
	defer func() { s.record(opLoad, start, err) }()

	if m == nil {
		return nil, resolve.ErrNilModule
	}

	data, err := s.LoadRaw(ctx, key)
	if err != nil {
		return nil, err
	}

	h := resolve.Begin(s.domain, m)
	defer h.End()

	value, err = s.codec.Decode(data)
	if err != nil {
		s.logger.Warn("failed to decode state",
			zap.String("key", key),
			zap.String("module", m.FullName()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to decode state %s: %w", key, err)
	}

	return value, nil
}

// LoadRaw returns the stored envelope without decoding it
func (s *Service) LoadRaw(ctx context.Context, key string) ([]byte, error) {
	if err := s.validator.Validate(key); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	data, err := s.storage.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes the state under key
func (s *Service) Delete(ctx context.Context, key string) error {
	start := time.Now()

	if err := s.validator.Validate(key); err != nil {
		s.record(opDelete, start, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	err := s.storage.Delete(ctx, key)
	s.record(opDelete, start, err)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	s.logger.Debug("state deleted", zap.String("key", key))
	return nil
}

// Keys lists stored state keys
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	return s.storage.List(ctx)
}

func (s *Service) record(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, ports.ErrStateNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	s.metrics.RecordStateOperation(operation, status, time.Since(start))
}
