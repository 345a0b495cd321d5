package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// promoCodeRecord is the promo_codes row.
type promoCodeRecord struct {
	ID            uint            `gorm:"primaryKey"`
	Code          string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	DiscountType  string          `gorm:"type:varchar(20);not null"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MinPurchase   int             `gorm:"not null;default:0"`
	ValidUntil    time.Time       `gorm:"type:date;not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (promoCodeRecord) TableName() string { return "promo_codes" }

func (r promoCodeRecord) toPromoCode() PromoCode {
	return PromoCode{
		Code:         r.Code,
		DiscountType: DiscountType(r.DiscountType),
		Value:        r.DiscountValue,
		MinPurchase:  r.MinPurchase,
		ValidUntil:   r.ValidUntil,
	}
}

// GormRegistry serves promo codes from the promo_codes table.
type GormRegistry struct {
	db *gorm.DB
}

func NewGormRegistry(db *gorm.DB) *GormRegistry {
	return &GormRegistry{db: db}
}

// Migrate creates or updates the promo_codes table.
func (r *GormRegistry) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&promoCodeRecord{})
}

// FindByCode matches codes case-insensitively.
func (r *GormRegistry) FindByCode(ctx context.Context, code string) (*PromoCode, error) {
	var rec promoCodeRecord
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", normalizeCode(code)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}
	p := rec.toPromoCode()
	return &p, nil
}

// Upsert inserts codes, updating existing rows with the same code.
func (r *GormRegistry) Upsert(ctx context.Context, codes []PromoCode) error {
	if len(codes) == 0 {
		return nil
	}
	records := make([]promoCodeRecord, 0, len(codes))
	for _, c := range codes {
		if err := c.Validate(); err != nil {
			return err
		}
		records = append(records, promoCodeRecord{
			Code:          strings.ToUpper(strings.TrimSpace(c.Code)),
			DiscountType:  string(c.DiscountType),
			DiscountValue: c.Value,
			MinPurchase:   c.MinPurchase,
			ValidUntil:    c.ValidUntil,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"discount_type", "discount_value", "min_purchase", "valid_until", "updated_at"}),
		}).
		Create(&records).Error
}

// List returns all codes ordered by code.
func (r *GormRegistry) List(ctx context.Context) ([]PromoCode, error) {
	var recs []promoCodeRecord
	if err := r.db.WithContext(ctx).Order("code").Find(&recs).Error; err != nil {
		return nil, err
	}
	codes := make([]PromoCode, len(recs))
	for i, rec := range recs {
		codes[i] = rec.toPromoCode()
	}
	return codes, nil
}
