package service

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
)

type ProductService struct {
	products ProductRepository
}

func NewProductService(products ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// List pagina el catálogo. La vista pública pasa ActiveOnly=true.
func (s *ProductService) List(ctx context.Context, f model.ProductFilter, page, limit int64) (*dto.ProductPage, error) {
	f.Category = model.Category(strings.ToLower(strings.TrimSpace(string(f.Category))))
	f.Search = strings.TrimSpace(f.Search)
	page, limit = normalizePage(page, limit)

	products, err := s.products.List(ctx, f, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*model.Product{}
	}
	return &dto.ProductPage{
		Products:   products,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

// Get con activeOnly=true oculta los productos desactivados.
func (s *ProductService) Get(ctx context.Context, id string, activeOnly bool) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if activeOnly && !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	p := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       *req.Price,
		Category:    req.Category,
		Images:      req.Images,
		Sizes:       req.Sizes,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.products.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update es parcial: los campos nil no cambian.
func (s *ProductService) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error) {
	p, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Sizes != nil {
		p.Sizes = req.Sizes
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.products.Replace(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
