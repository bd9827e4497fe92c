package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCategoryNotFound is returned when no category matches the requested ID.
var ErrCategoryNotFound = errors.New("category not found")

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

// List returns at most limit categories after skipping the first skip rows.
func (r *CategoriesRepository) List(ctx context.Context, skip, limit int) ([]Category, error) {
	categories := []Category{}
	if err := r.db.WithContext(ctx).
		Offset(skip).
		Limit(limit).
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return findCategory(r.db.WithContext(ctx), id)
}

func (r *CategoriesRepository) Create(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(category).Error
	})
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update writes only the columns present in changes and returns the row as
// stored after the commit. An empty changes map leaves the row untouched.
func (r *CategoriesRepository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*Category, error) {
	db := r.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, id)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(category).Updates(changes).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return findCategory(db, id)
}

func (r *CategoriesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, id)
		if err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func findCategory(db *gorm.DB, id uuid.UUID) (*Category, error) {
	var category Category
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err // Other DB error
	}
	return &category, nil
}
