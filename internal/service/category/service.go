package category

import (
	"context"
	"io"
	"log"
	"strings"

	"pos-backend/internal/domain"
	"pos-backend/internal/repository/category"
)

// DefaultPresets are the categories offered for new products.
var DefaultPresets = []string{"Food", "Drinks", "Snacks", "Stationery", "Groceries", domain.DefaultCategory}

type Service struct {
	repo    category.Repository
	presets []string
	logger  *log.Logger
}

// New returns a Service. An empty presets list uses DefaultPresets.
func New(repo category.Repository, presets []string, logger *log.Logger) *Service {
	if len(presets) == 0 {
		presets = DefaultPresets
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, presets: presets, logger: logger}
}

// List returns the preset categories in preset order, each with the figures
// of its active products, followed by any other category in use.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Printf("category service: list error=%v", err)
		return nil, err
	}
	inUse := make(map[string]domain.Category, len(rows))
	for _, r := range rows {
		inUse[strings.ToLower(r.Name)] = r
	}

	out := make([]domain.Category, 0, len(s.presets)+len(rows))
	seen := make(map[string]struct{}, len(s.presets))
	for _, name := range s.presets {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if r, ok := inUse[key]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, domain.Category{Name: name})
	}
	for _, r := range rows {
		if _, ok := seen[strings.ToLower(r.Name)]; ok {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
