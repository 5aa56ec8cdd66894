package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

// CouponRepository stores coupons and their usage log. Redeem must run inside a unit of work so
// the counter update and the usage insert commit together.
type CouponRepository struct {
	coupons *mongo.Collection
	usages  *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{
		coupons: db.Collection(couponsCollection),
		usages:  db.Collection(usagesCollection),
	}
}

func (r *CouponRepository) ByCode(ctx context.Context, tenant domainrooms.TenantID, code string) (*domaincoupons.Coupon, error) {
	var doc couponDocument
	filter := bson.M{"tenant_id": string(tenant), "code": domaincoupons.NormalizeCode(code)}
	if err := r.coupons.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincoupons.ErrCouponNotFound
		}
		return nil, err
	}
	return doc.toCoupon()
}

func (r *CouponRepository) Save(ctx context.Context, c *domaincoupons.Coupon) error {
	doc, err := newCouponDocument(c)
	if err != nil {
		return err
	}
	_, err = r.coupons.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *CouponRepository) CountByCustomer(ctx context.Context, id domaincoupons.CouponID, email string) (int, error) {
	n, err := r.usages.CountDocuments(ctx, bson.M{"coupon_id": string(id), "customer_email": domaincoupons.NormalizeEmail(email)})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Redeem increments current_uses with a conditional filter so a coupon at its cap matches nothing.
// The usage insert shares the session in ctx; a concurrent redeem of the same coupon surfaces as a
// write conflict and aborts one of the transactions.
func (r *CouponRepository) Redeem(ctx context.Context, red domaincoupons.Redemption) error {
	email := domaincoupons.NormalizeEmail(red.CustomerEmail)
	if red.MaxUsesPerCustomer != nil {
		used, err := r.CountByCustomer(ctx, red.CouponID, email)
		if err != nil {
			return err
		}
		if used >= *red.MaxUsesPerCustomer {
			return domaincoupons.ErrCustomerLimitReached
		}
	}

	filter := bson.M{"_id": string(red.CouponID)}
	if red.MaxUses != nil {
		filter["current_uses"] = bson.M{"$lt": *red.MaxUses}
	}
	update := bson.M{
		"$inc": bson.M{"current_uses": 1},
		"$set": bson.M{"updated_at": red.At.UnixMilli()},
	}
	res, err := r.coupons.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.coupons.CountDocuments(ctx, bson.M{"_id": string(red.CouponID)})
		if err != nil {
			return err
		}
		if n == 0 {
			return domaincoupons.ErrCouponNotFound
		}
		return domaincoupons.ErrCouponExhausted
	}

	_, err = r.usages.InsertOne(ctx, usageDocument{
		ID:            red.UsageID,
		CouponID:      string(red.CouponID),
		CustomerEmail: email,
		BookingID:     red.BookingID,
		RedeemedAt:    red.At.UnixMilli(),
	})
	return err
}

type couponDocument struct {
	ID                 string                `bson:"_id"`
	TenantID           string                `bson:"tenant_id"`
	Code               string                `bson:"code"`
	Name               string                `bson:"name"`
	DiscountType       string                `bson:"discount_type"`
	DiscountValue      primitive.Decimal128  `bson:"discount_value"`
	IsActive           bool                  `bson:"is_active"`
	ValidFrom          *int64                `bson:"valid_from,omitempty"`
	ValidUntil         *int64                `bson:"valid_until,omitempty"`
	ApplicableRoomIDs  []string              `bson:"applicable_room_ids,omitempty"`
	MaxUses            *int                  `bson:"max_uses,omitempty"`
	CurrentUses        int                   `bson:"current_uses"`
	MaxUsesPerCustomer *int                  `bson:"max_uses_per_customer,omitempty"`
	MinBookingAmount   *primitive.Decimal128 `bson:"min_booking_amount,omitempty"`
	MinNights          *int                  `bson:"min_nights,omitempty"`
	CreatedAt          int64                 `bson:"created_at"`
	UpdatedAt          int64                 `bson:"updated_at"`
}

func newCouponDocument(c *domaincoupons.Coupon) (couponDocument, error) {
	value, err := toDecimal128(c.DiscountValue)
	if err != nil {
		return couponDocument{}, err
	}
	doc := couponDocument{
		ID:                 string(c.ID),
		TenantID:           string(c.TenantID),
		Code:               domaincoupons.NormalizeCode(c.Code),
		Name:               c.Name,
		DiscountType:       string(c.DiscountType),
		DiscountValue:      value,
		IsActive:           c.IsActive,
		ValidFrom:          toMillis(c.ValidFrom),
		ValidUntil:         toMillis(c.ValidUntil),
		MaxUses:            c.MaxUses,
		CurrentUses:        c.CurrentUses,
		MaxUsesPerCustomer: c.MaxUsesPerCustomer,
		MinNights:          c.MinNights,
		CreatedAt:          c.CreatedAt.UnixMilli(),
		UpdatedAt:          c.UpdatedAt.UnixMilli(),
	}
	for _, id := range c.ApplicableRoomIDs {
		doc.ApplicableRoomIDs = append(doc.ApplicableRoomIDs, string(id))
	}
	if c.MinBookingAmount != nil {
		min, err := toDecimal128(*c.MinBookingAmount)
		if err != nil {
			return couponDocument{}, err
		}
		doc.MinBookingAmount = &min
	}
	return doc, nil
}

// toCoupon keeps unknown discount types as stored; the engine reports them as integrity errors.
func (d couponDocument) toCoupon() (*domaincoupons.Coupon, error) {
	value, err := decimal.NewFromString(d.DiscountValue.String())
	if err != nil {
		return nil, fmt.Errorf("mongo: coupon %s discount value: %w", d.ID, err)
	}
	c := &domaincoupons.Coupon{
		ID:                 domaincoupons.CouponID(d.ID),
		TenantID:           domainrooms.TenantID(d.TenantID),
		Code:               d.Code,
		Name:               d.Name,
		DiscountType:       domaincoupons.DiscountType(d.DiscountType),
		DiscountValue:      value,
		IsActive:           d.IsActive,
		ValidFrom:          fromMillis(d.ValidFrom),
		ValidUntil:         fromMillis(d.ValidUntil),
		MaxUses:            d.MaxUses,
		CurrentUses:        d.CurrentUses,
		MaxUsesPerCustomer: d.MaxUsesPerCustomer,
		MinNights:          d.MinNights,
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
	}
	for _, id := range d.ApplicableRoomIDs {
		c.ApplicableRoomIDs = append(c.ApplicableRoomIDs, domainrooms.RoomID(id))
	}
	if d.MinBookingAmount != nil {
		min, err := decimal.NewFromString(d.MinBookingAmount.String())
		if err != nil {
			return nil, fmt.Errorf("mongo: coupon %s min booking amount: %w", d.ID, err)
		}
		c.MinBookingAmount = &min
	}
	return c, nil
}

type usageDocument struct {
	ID            string `bson:"_id"`
	CouponID      string `bson:"coupon_id"`
	CustomerEmail string `bson:"customer_email"`
	BookingID     string `bson:"booking_id"`
	RedeemedAt    int64  `bson:"redeemed_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func toMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := timestampToTime(*ms)
	return &t
}

var (
	_ domaincoupons.Repository      = (*CouponRepository)(nil)
	_ domaincoupons.UsageRepository = (*CouponRepository)(nil)
	_ domaincoupons.Redeemer        = (*CouponRepository)(nil)
)
