package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// SheetWriter is the spreadsheet collaborator. Each call replaces one
// worksheet wholesale; the first row is the header.
type SheetWriter interface {
	WriteSheet(ctx context.Context, title string, rows [][]string) error
}

// ExportService dumps the domain tables to a spreadsheet. Stateless one-shot:
// no incremental sync, no export bookkeeping.
type ExportService interface {
	// ExportAll writes Users, Events, Registrations and Info sheets and
	// returns a per-sheet row-count summary.
	ExportAll(ctx context.Context) (string, error)
}

type exportService struct {
	users         repository.UserRepository
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	info          repository.InfoRepository
	writer        SheetWriter
	logger        *logger.Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	users repository.UserRepository,
	events repository.EventRepository,
	registrations repository.RegistrationRepository,
	info repository.InfoRepository,
	writer SheetWriter,
	log *logger.Logger,
) ExportService {
	return &exportService{
		users:         users,
		events:        events,
		registrations: registrations,
		info:          info,
		writer:        writer,
		logger:        log,
	}
}

func (s *exportService) ExportAll(ctx context.Context) (string, error) {
	var counts []string

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}
	rows := [][]string{{"telegram_id", "username", "full_name", "phone", "role", "created_at"}}
	for _, u := range users {
		rows = append(rows, []string{
			cellInt(u.TelegramID), u.Username, u.FullName, u.Phone,
			string(u.Role), cellTime(u.CreatedAt),
		})
	}
	if err := s.writer.WriteSheet(ctx, "Users", rows); err != nil {
		return "", fmt.Errorf("failed to write Users sheet: %w", err)
	}
	counts = append(counts, fmt.Sprintf("Users: %d", len(users)))

	events, err := s.events.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list events: %w", err)
	}
	rows = [][]string{{"id", "title", "type", "date_start", "date_end", "time",
		"place", "description", "max_participants", "status", "created_by", "created_at"}}
	for _, e := range events {
		dateEnd := ""
		if e.DateEnd != nil {
			dateEnd = e.DateEnd.Format("2006-01-02")
		}
		rows = append(rows, []string{
			cellInt(e.ID), e.Title, e.Type, e.DateStart.Format("2006-01-02"), dateEnd,
			e.Time, e.Place, e.Description, strconv.Itoa(e.MaxParticipants),
			string(e.Status), e.CreatedBy, cellTime(e.CreatedAt),
		})
	}
	if err := s.writer.WriteSheet(ctx, "Events", rows); err != nil {
		return "", fmt.Errorf("failed to write Events sheet: %w", err)
	}
	counts = append(counts, fmt.Sprintf("Events: %d", len(events)))

	regs, err := s.registrations.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list registrations: %w", err)
	}
	rows = [][]string{{"id", "event_id", "username", "telegram_id", "full_name",
		"phone", "level", "comment", "registered_at"}}
	for _, r := range regs {
		rows = append(rows, []string{
			cellInt(r.ID), cellInt(r.EventID), r.Username, cellInt(r.TelegramID),
			r.FullName, r.Phone, r.Level, r.Comment, cellTime(r.RegisteredAt),
		})
	}
	if err := s.writer.WriteSheet(ctx, "Registrations", rows); err != nil {
		return "", fmt.Errorf("failed to write Registrations sheet: %w", err)
	}
	counts = append(counts, fmt.Sprintf("Registrations: %d", len(regs)))

	entries, err := s.info.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list info entries: %w", err)
	}
	rows = [][]string{{"id", "category", "title", "content", "updated_at"}}
	for _, entry := range entries {
		rows = append(rows, []string{
			cellInt(entry.ID), entry.Category, entry.Title, entry.Content, cellTime(entry.UpdatedAt),
		})
	}
	if err := s.writer.WriteSheet(ctx, "Info", rows); err != nil {
		return "", fmt.Errorf("failed to write Info sheet: %w", err)
	}
	counts = append(counts, fmt.Sprintf("Info: %d", len(entries)))

	summary := strings.Join(counts, ", ")
	s.logger.Info("export completed", zap.String("summary", summary))
	return fmt.Sprintf("Экспорт завершён. %s", summary), nil
}

func cellInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func cellTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
