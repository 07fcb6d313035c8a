package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/repository"
	"github.com/mmeshcher/supplyhub/internal/validation"
)

// ProductInput описывает новый товар.
type ProductInput struct {
	Name        string
	Description string
	SKU         string
	PriceKZT    string
	StockQty    int64
	IsActive    bool
}

// ProductPatch описывает частичное изменение товара; nil-поля не меняются.
type ProductPatch struct {
	Name        *string
	Description *string
	SKU         *string
	PriceKZT    *string
	StockQty    *int64
	IsActive    *bool
}

// CreateProduct добавляет товар в каталог поставщика.
func (s *Service) CreateProduct(ctx context.Context, userID, supplierID int64, in ProductInput) (*model.Product, error) {
	p := model.Product{
		SupplierID:  supplierID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		SKU:         in.SKU,
		StockQty:    in.StockQty,
		IsActive:    in.IsActive,
	}

	price, err := validation.ParsePrice(in.PriceKZT)
	if err != nil {
		return nil, err
	}
	p.PriceKZT = price

	if err := checkProduct(p); err != nil {
		return nil, err
	}

	err = s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		if _, err := tx.GetSupplier(ctx, supplierID); err != nil {
			return err
		}
		if !access.CanManageProducts(actor, supplierID) {
			return denied("supplier", supplierID)
		}

		return tx.CreateProduct(ctx, &p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.Int64("supplier_id", supplierID))
	return &p, nil
}

// UpdateProduct применяет частичное изменение товара. Цены в уже созданных заказах не меняются.
func (s *Service) UpdateProduct(ctx context.Context, userID, productID int64, patch ProductPatch) (*model.Product, error) {
	var res model.Product

	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		cur, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !access.CanManageProducts(actor, cur.SupplierID) {
			return denied("product", productID)
		}

		res = *cur
		if patch.Name != nil {
			res.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			res.Description = *patch.Description
		}
		if patch.SKU != nil {
			res.SKU = *patch.SKU
		}
		if patch.PriceKZT != nil {
			if res.PriceKZT, err = validation.ParsePrice(*patch.PriceKZT); err != nil {
				return err
			}
		}
		if patch.StockQty != nil {
			res.StockQty = *patch.StockQty
		}
		if patch.IsActive != nil {
			res.IsActive = *patch.IsActive
		}

		if err := checkProduct(res); err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteProduct удаляет товар из каталога. Товар, который уже встречается в заказах, удалить
// нельзя: в этом случае возвращается ErrConflict и товар можно только деактивировать.
func (s *Service) DeleteProduct(ctx context.Context, userID, productID int64) error {
	var supplierID int64

	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		cur, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !access.CanManageProducts(actor, cur.SupplierID) {
			return denied("product", productID)
		}

		supplierID = cur.SupplierID
		return tx.DeleteProduct(ctx, productID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.Int64("product_id", productID), zap.Int64("supplier_id", supplierID))
	return nil
}

// Catalog возвращает товары поставщика. Потребитель видит только активные товары и только при
// принятой связи; владелец и менеджеры видят весь каталог.
func (s *Service) Catalog(ctx context.Context, userID, supplierID int64, f model.ListFilter) ([]model.Product, error) {
	f.Status = ""
	f.Limit, f.Offset = validation.NormalizeWindow(f.Limit, f.Offset)

	var res []model.Product
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		if actor.Authority(supplierID).CanManage() {
			res, err = tx.ListProducts(ctx, supplierID, false, f)
			return err
		}

		var link *model.Link
		if actor.IsConsumer() {
			if link, err = findLink(ctx, tx, actor.ConsumerID, supplierID); err != nil {
				return err
			}
		}
		if !access.CanBrowseCatalog(actor, link) {
			return fmt.Errorf("%w: no accepted link with supplier %d", model.ErrPermissionDenied, supplierID)
		}

		res, err = tx.ListProducts(ctx, supplierID, true, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func checkProduct(p model.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", model.ErrValidation)
	}
	if !validation.IsValidSKU(p.SKU) {
		return fmt.Errorf("%w: invalid sku %q", model.ErrValidation, p.SKU)
	}
	if p.StockQty < 0 {
		return fmt.Errorf("%w: stock must not be negative", model.ErrValidation)
	}
	return nil
}
