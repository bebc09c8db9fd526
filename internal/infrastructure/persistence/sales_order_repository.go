package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/erp/channelsync/internal/infrastructure/persistence/datascope"
	"github.com/erp/channelsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByChannelIdentifier finds the order a channel knows under identifier
func (r *GormSalesOrderRepository) FindByChannelIdentifier(ctx context.Context, channelID uuid.UUID, identifier string) (*trade.SalesOrder, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, shared.ErrNotFound
	}
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Where("channel_id = ? AND channel_identifier = ?", channelID, identifier).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sales orders matching the filter and returns the total count.
// Results are limited to the channels scoped on ctx, if any.
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter trade.SalesOrderFilter) ([]trade.SalesOrder, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Scopes(datascope.ChannelScopeFromContext(ctx, "sales_orders.channel_id"))
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(salesOrderSort.orderBy(filter.OrderBy, filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.SalesOrderModel
	if err := query.Preload("Lines", preloadLines).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Create inserts a new order with its lines
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	if order.Channel.HasIdentifier() {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.SalesOrderModel{}).
			Where("channel_id = ? AND channel_identifier = ?", order.Channel.ChannelID, order.Channel.Identifier).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return duplicateIdentifierError(order)
		}
	}

	model := models.SalesOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if order.Channel.HasIdentifier() {
				return duplicateIdentifierError(order)
			}
			return shared.ErrAlreadyExists
		}
		return err
	}
	order.Persisted = true
	return nil
}

// Save updates an order and its lines with optimistic locking (version check)
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	model := models.SalesOrderModelFromDomain(order)
	nextVersion := order.Version + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SalesOrderModel{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]interface{}{
				"channel_id":          model.ChannelID,
				"channel_identifier":  model.ChannelIdentifier,
				"party_id":            model.PartyID,
				"party_price_list_id": model.PartyPriceListID,
				"invoice_address":     model.InvoiceAddress,
				"company_id":          model.CompanyID,
				"warehouse_id":        model.WarehouseID,
				"currency":            model.Currency,
				"payment_term_id":     model.PaymentTermID,
				"price_list_id":       model.PriceListID,
				"invoice_method":      model.InvoiceMethod,
				"shipment_method":     model.ShipmentMethod,
				"status":              model.Status,
				"total_amount":        model.TotalAmount,
				"total_quantity":      model.TotalQuantity,
				"line_count":          model.LineCount,
				"cache_refreshed_at":  model.CacheRefreshedAt,
				"quoted_at":           model.QuotedAt,
				"confirmed_at":        model.ConfirmedAt,
				"processed_at":        model.ProcessedAt,
				"completed_at":        model.CompletedAt,
				"cancelled_at":        model.CancelledAt,
				"version":             nextVersion,
				"updated_at":          model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.SalesOrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		lineIDs := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			lineIDs[i] = model.Lines[i].ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(lineIDs) > 0 {
			stale = stale.Where("id NOT IN ?", lineIDs)
		}
		if err := stale.Delete(&models.SalesOrderLineModel{}).Error; err != nil {
			return err
		}
		for i := range model.Lines {
			if err := tx.Save(&model.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return duplicateIdentifierError(order)
		}
		return err
	}

	order.Version = nextVersion
	order.Persisted = true
	return nil
}

// StoreCache writes only the cached display fields of an order
func (r *GormSalesOrderRepository) StoreCache(ctx context.Context, order *trade.SalesOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"total_amount":       order.TotalAmount,
			"total_quantity":     order.TotalQuantity,
			"line_count":         order.LineCount,
			"cache_refreshed_at": order.CacheRefreshedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a sales order and its lines
func (r *GormSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.SalesOrderLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SalesOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GenerateOrderNumber generates a unique order number
// Format: SO-YYYY-NNNNN (e.g., SO-2026-00001)
func (r *GormSalesOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("SO-%d-", time.Now().Year())

	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error
	if err != nil {
		return "", err
	}

	var next int64 = 1
	if len(numbers) > 0 {
		var num int64
		if _, err := fmt.Sscanf(strings.TrimPrefix(numbers[0], prefix), "%d", &num); err == nil {
			next = num + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

// applyFilter applies the filter criteria without ordering or pagination
func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter trade.SalesOrderFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(sales_orders.order_number) LIKE ? OR LOWER(sales_orders.channel_identifier) LIKE ?",
			pattern, pattern)
	}
	if filter.ChannelID != nil {
		query = query.Where("sales_orders.channel_id = ?", *filter.ChannelID)
	}
	if filter.PartyID != nil {
		query = query.Where("sales_orders.party_id = ?", *filter.PartyID)
	}
	if filter.Status != nil {
		query = query.Where("sales_orders.status = ?", *filter.Status)
	}
	if filter.HasChannelException != nil {
		query = query.Scopes(ExceptionStateScope(*filter.HasChannelException))
	}
	return query
}

func duplicateIdentifierError(order *trade.SalesOrder) error {
	return trade.ErrDuplicateChannelIdentifier.Withf(
		"Channel identifier %q is already used on channel %s", order.Channel.Identifier, order.Channel.ChannelID)
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
