package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/ports"
)

// CategoryService manages the category list and seeds the defaults the
// first time categories are requested from an empty store.
type CategoryService struct {
	store  ports.CategoryStore
	logger *applog.Logger

	seedMu sync.Mutex
}

func NewCategoryService(store ports.CategoryStore, logger *applog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger.WithComponent(applog.ComponentCategory),
	}
}

// List returns all categories in creation order.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) ensureSeeded(ctx context.Context) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	n, err := s.store.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	seeded, err := s.store.CreateCategories(ctx, core.DefaultCategories())
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	s.logger.InfoContext(ctx, "Seeded default categories", "count", len(seeded), applog.FieldOperation, applog.OpSeed)
	return nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c = normalizeCategory(c)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category created",
		applog.FieldCategoryID, created.ID,
		applog.FieldOperation, applog.OpCreate)
	return created, nil
}

// Update replaces name, type, icon and color. Existing transactions keep
// the type they were booked with.
func (s *CategoryService) Update(ctx context.Context, c core.Category) error {
	c = normalizeCategory(c)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	s.logger.InfoContext(ctx, "Category updated",
		applog.FieldCategoryID, c.ID,
		applog.FieldOperation, applog.OpUpdate)
	return nil
}

// Delete removes a category that no transaction references.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	n, err := s.store.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count transactions for category %s: %w", id, err)
	}
	if n > 0 {
		return core.ErrCategoryInUse
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, core.ErrCategoryInUse) {
			return err
		}
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Category deleted",
		applog.FieldCategoryID, id,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

func normalizeCategory(c core.Category) core.Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	return c
}
