package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

const groundingCacheTTL = 60 * time.Second

// InfoService manages knowledge-base entries and builds the grounding
// context supplied to the model for free-text answers.
type InfoService interface {
	Create(ctx context.Context, category, title, content string) (int64, error)
	Update(ctx context.Context, id int64, title, content string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListAll(ctx context.Context) ([]*domain.Info, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Info, error)
	// GroundingContext snapshots active events plus all info entries into a
	// text block. Cached for 60 seconds; staleness within the window is
	// acceptable for answering questions.
	GroundingContext(ctx context.Context) (string, error)
}

type infoService struct {
	info   repository.InfoRepository
	events repository.EventRepository
	logger *logger.Logger

	mu       sync.Mutex
	cached   string
	cachedAt time.Time
}

// NewInfoService creates a new InfoService
func NewInfoService(info repository.InfoRepository, events repository.EventRepository, log *logger.Logger) InfoService {
	return &infoService{info: info, events: events, logger: log}
}

func (s *infoService) Create(ctx context.Context, category, title, content string) (int64, error) {
	id, err := s.info.Create(ctx, category, title, content)
	if err != nil {
		return 0, fmt.Errorf("failed to create info entry: %w", err)
	}
	return id, nil
}

func (s *infoService) Update(ctx context.Context, id int64, title, content string) (bool, error) {
	return s.info.Update(ctx, id, title, content)
}

func (s *infoService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.info.Delete(ctx, id)
}

func (s *infoService) ListAll(ctx context.Context) ([]*domain.Info, error) {
	return s.info.ListAll(ctx)
}

func (s *infoService) ListByCategory(ctx context.Context, category string) ([]*domain.Info, error) {
	return s.info.ListByCategory(ctx, category)
}

func (s *infoService) GroundingContext(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" && time.Since(s.cachedAt) < groundingCacheTTL {
		return s.cached, nil
	}

	events, err := s.events.ListByStatus(ctx, domain.EventActive)
	if err != nil {
		return "", fmt.Errorf("failed to list active events: %w", err)
	}
	entries, err := s.info.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list info entries: %w", err)
	}

	var b strings.Builder
	b.WriteString("=== Active events ===")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("\n- %s | %s | %s | %s | %s",
			e.Title, e.DateStart.Format("2006-01-02"), e.Time, e.Place, e.Description))
	}
	b.WriteString("\n\n=== Information ===")
	for _, entry := range entries {
		b.WriteString(fmt.Sprintf("\n[%s] %s: %s", entry.Category, entry.Title, entry.Content))
	}

	s.cached = b.String()
	s.cachedAt = time.Now()
	return s.cached, nil
}
