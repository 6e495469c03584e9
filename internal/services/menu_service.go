package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/repository"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/genai"
)

const (
	DescriptionNoKeyFallback = "Delicious authentic dish prepared with fresh ingredients."
	DescriptionErrorFallback = "Freshly prepared with authentic spices."
)

type MenuService interface {
	List() []models.MenuItem
	Get(id string) (models.MenuItem, error)
	UpdateDescription(ctx context.Context, user models.User, id, text string) (models.MenuItem, error)
	GenerateDescription(ctx context.Context, user models.User, id, ingredients string) (string, error)
}

type menuService struct {
	menu    Menu
	gen     genai.Generator
	repo    repository.MenuRepository
	timeout time.Duration
	logger  *slog.Logger
}

// NewMenuService builds the menu service. repo may be nil when no database
// is configured.
func NewMenuService(menu Menu, gen genai.Generator, repo repository.MenuRepository, timeout time.Duration, logger *slog.Logger) MenuService {
	if gen == nil {
		gen = genai.Unavailable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &menuService{menu: menu, gen: gen, repo: repo, timeout: timeout, logger: logger}
}

func (s *menuService) List() []models.MenuItem {
	return s.menu.List()
}

func (s *menuService) Get(id string) (models.MenuItem, error) {
	item, ok := s.menu.Get(id)
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, apperrors.ErrNotFound)
	}
	return item, nil
}

func (s *menuService) UpdateDescription(ctx context.Context, user models.User, id, text string) (models.MenuItem, error) {
	if user.Role != models.RoleAdmin {
		return models.MenuItem{}, fmt.Errorf("editing the menu: %w", apperrors.ErrForbidden)
	}
	item, err := s.menu.UpdateDescription(id, text)
	if err != nil {
		return models.MenuItem{}, err
	}
	if s.repo != nil {
		if err := s.repo.UpdateDescription(item.ID, item.Description); err != nil {
			s.logger.Warn("failed to archive menu description", "item_id", item.ID, "error", err)
		}
	}
	return item, nil
}

// GenerateDescription drafts new menu copy. The result is not saved; the
// owner confirms it through UpdateDescription.
func (s *menuService) GenerateDescription(ctx context.Context, user models.User, id, ingredients string) (string, error) {
	if user.Role != models.RoleAdmin {
		return "", fmt.Errorf("editing the menu: %w", apperrors.ErrForbidden)
	}
	item, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if !genai.Available(s.gen) {
		return DescriptionNoKeyFallback, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, descriptionPrompt(item.Name, ingredients))
	if err != nil {
		s.logger.Warn("description generation failed", "item_id", id, "error", err)
		return DescriptionErrorFallback, nil
	}
	return text, nil
}

func descriptionPrompt(name, ingredients string) string {
	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		ingredients = "traditional spices"
	}
	return fmt.Sprintf("Write a short, mouth-watering description (max 25 words) for a restaurant menu item named %q containing these ingredients: %s. Make it sound rustic and authentic for a Dhaba.", name, ingredients)
}
