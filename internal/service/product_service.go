package service

import (
	"context"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product management. Stock set here is an admin
// operation; sales only ever decrement it through the checkout engine.
type ProductService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(st *store.Store) *ProductService {
	return &ProductService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest carries the fields of a new product
type CreateProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"required,min=0"`
	Stock    int    `json:"stock" binding:"min=0"`
	ImageURL string `json:"image_url"`
}

// CreateProduct inserts a new product with a generated id
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// GetProducts lists all products, newest first
func (s *ProductService) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// GetProduct retrieves a product by id
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// UpdateProductRequest carries the mutable fields of a product. Nil fields
// keep their current value.
type UpdateProductRequest struct {
	Name     *string `json:"name"`
	Price    *int64  `json:"price" binding:"omitempty,min=0"`
	Stock    *int    `json:"stock" binding:"omitempty,min=0"`
	ImageURL *string `json:"image_url"`
}

// UpdateProduct applies a partial update to a product
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}
