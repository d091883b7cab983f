package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-backend/models"
	"travel-backend/utils"

	"gorm.io/gorm"
)

type CategoryService struct {
	DB *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

type CategoryInput struct {
	Name        string
	CustomName  *string
	Slug        string
	Description string
}

func (in CategoryInput) validate() error {
	var ve ValidationErrors
	if _, ok := models.CategoryLabels[in.Name]; !ok {
		ve.Add("name", CodeInvalid, fmt.Sprintf("%q is not a valid choice", in.Name))
	}
	return ve.Err()
}

// categorySlug follows the display name: the custom name for "other", else
// the predefined name.
func categorySlug(in CategoryInput) string {
	if in.Name == models.CategoryOther && in.CustomName != nil && strings.TrimSpace(*in.CustomName) != "" {
		return utils.Slugify(*in.CustomName)
	}
	return utils.Slugify(in.Name)
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.DB.WithContext(ctx).Order("name ASC, id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cat := models.Category{
		Name:        in.Name,
		CustomName:  in.CustomName,
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
	}
	if cat.Slug == "" {
		cat.Slug = categorySlug(in)
	}
	if err := s.save(ctx, &cat, true); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Update replaces the category's fields. An empty slug keeps the current one.
func (s *CategoryService) Update(ctx context.Context, slug string, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cat, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	cat.Name = in.Name
	cat.CustomName = in.CustomName
	cat.Description = in.Description
	if newSlug := strings.TrimSpace(in.Slug); newSlug != "" {
		cat.Slug = newSlug
	}
	if err := s.save(ctx, cat, false); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CategoryService) Delete(ctx context.Context, slug string) error {
	res := s.DB.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *CategoryService) save(ctx context.Context, cat *models.Category, create bool) error {
	if err := checkSlug(cat.Slug); err != nil {
		return err
	}
	db := s.DB.WithContext(ctx)
	var taken int64
	q := db.Unscoped().Model(&models.Category{}).Where("slug = ?", cat.Slug)
	if !create {
		q = q.Where("id <> ?", cat.ID)
	}
	if err := q.Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrSlugTaken.WithMessage("category with slug %q already exists", cat.Slug)
	}

	var err error
	if create {
		err = db.Create(cat).Error
	} else {
		err = db.Save(cat).Error
	}
	if isDuplicateKey(err) {
		return ErrSlugTaken
	}
	return err
}
