package repository

import (
	"context"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	GetAll(ctx context.Context) ([]model.Product, error)
	FindDemo(ctx context.Context) (*model.Product, error)
	FirstOrCreate(ctx context.Context, product *model.Product) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db}
}

func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).Order("price asc").Order("id asc").Find(&products).Error
	return products, err
}

func (r *productRepository) FindDemo(ctx context.Context) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("is_demo = ?", true).First(&product).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *productRepository) FirstOrCreate(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Where(model.Product{Name: product.Name}).FirstOrCreate(product).Error
}
