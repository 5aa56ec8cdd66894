package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

// CouponStore keeps coupons and usages in Postgres. Redeem runs in its own transaction and locks the
// coupon row, so the per-customer count and the global counter are checked against committed data.
type CouponStore struct {
	db *sql.DB
}

func NewCouponStore(db *sql.DB) *CouponStore {
	return &CouponStore{db: db}
}

const couponColumns = `
	id, tenant_id, code, name, discount_type, discount_value, is_active,
	valid_from, valid_until, applicable_room_ids, max_uses, current_uses,
	max_uses_per_customer, min_booking_amount, min_nights, created_at, updated_at`

func (s *CouponStore) ByCode(ctx context.Context, tenant domainrooms.TenantID, code string) (*domaincoupons.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE tenant_id = $1 AND code = $2`
	c, err := scanCoupon(s.db.QueryRowContext(ctx, query, string(tenant), domaincoupons.NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domaincoupons.ErrCouponNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CouponStore) Save(ctx context.Context, c *domaincoupons.Coupon) error {
	rooms := make([]string, 0, len(c.ApplicableRoomIDs))
	for _, id := range c.ApplicableRoomIDs {
		rooms = append(rooms, string(id))
	}
	var minAmount *string
	if c.MinBookingAmount != nil {
		v := c.MinBookingAmount.String()
		minAmount = &v
	}
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			is_active = EXCLUDED.is_active,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			applicable_room_ids = EXCLUDED.applicable_room_ids,
			max_uses = EXCLUDED.max_uses,
			current_uses = EXCLUDED.current_uses,
			max_uses_per_customer = EXCLUDED.max_uses_per_customer,
			min_booking_amount = EXCLUDED.min_booking_amount,
			min_nights = EXCLUDED.min_nights,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		string(c.ID),
		string(c.TenantID),
		domaincoupons.NormalizeCode(c.Code),
		c.Name,
		string(c.DiscountType),
		c.DiscountValue.String(),
		c.IsActive,
		c.ValidFrom,
		c.ValidUntil,
		pq.Array(rooms),
		c.MaxUses,
		c.CurrentUses,
		c.MaxUsesPerCustomer,
		minAmount,
		c.MinNights,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (s *CouponStore) CountByCustomer(ctx context.Context, id domaincoupons.CouponID, email string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND customer_email = $2`,
		string(id), domaincoupons.NormalizeEmail(email),
	).Scan(&n)
	return n, err
}

func (s *CouponStore) Redeem(ctx context.Context, r domaincoupons.Redemption) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stored sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT max_uses FROM coupons WHERE id = $1 FOR UPDATE`,
		string(r.CouponID),
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domaincoupons.ErrCouponNotFound
		}
		return err
	}

	email := domaincoupons.NormalizeEmail(r.CustomerEmail)
	if r.MaxUsesPerCustomer != nil {
		var used int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND customer_email = $2`,
			string(r.CouponID), email,
		).Scan(&used)
		if err != nil {
			return err
		}
		if used >= *r.MaxUsesPerCustomer {
			return domaincoupons.ErrCustomerLimitReached
		}
	}

	// The stored cap wins over the caller's snapshot when both are set.
	limit := r.MaxUses
	if stored.Valid {
		v := int(stored.Int64)
		limit = &v
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE coupons SET current_uses = current_uses + 1, updated_at = $2
		 WHERE id = $1 AND ($3::INTEGER IS NULL OR current_uses < $3)`,
		string(r.CouponID), r.At, limit,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domaincoupons.ErrCouponExhausted
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO coupon_usages (id, coupon_id, customer_email, booking_id, redeemed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.UsageID, string(r.CouponID), email, r.BookingID, r.At,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*domaincoupons.Coupon, error) {
	var (
		c          domaincoupons.Coupon
		id, tenant string
		kind       string
		value      string
		rooms      pq.StringArray
		validFrom  sql.NullTime
		validTo    sql.NullTime
		maxUses    sql.NullInt64
		perCust    sql.NullInt64
		minAmount  sql.NullString
		minNights  sql.NullInt64
	)
	err := row.Scan(
		&id, &tenant, &c.Code, &c.Name, &kind, &value, &c.IsActive,
		&validFrom, &validTo, &rooms, &maxUses, &c.CurrentUses,
		&perCust, &minAmount, &minNights, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = domaincoupons.CouponID(id)
	c.TenantID = domainrooms.TenantID(tenant)
	c.DiscountType = domaincoupons.DiscountType(kind)
	if c.DiscountValue, err = decimal.NewFromString(value); err != nil {
		return nil, fmt.Errorf("postgres: coupon %s discount value: %w", id, err)
	}
	c.ValidFrom = nullTime(validFrom)
	c.ValidUntil = nullTime(validTo)
	for _, r := range rooms {
		c.ApplicableRoomIDs = append(c.ApplicableRoomIDs, domainrooms.RoomID(r))
	}
	c.MaxUses = nullInt(maxUses)
	c.MaxUsesPerCustomer = nullInt(perCust)
	c.MinNights = nullInt(minNights)
	if minAmount.Valid {
		d, err := decimal.NewFromString(minAmount.String)
		if err != nil {
			return nil, fmt.Errorf("postgres: coupon %s min booking amount: %w", id, err)
		}
		c.MinBookingAmount = &d
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

var (
	_ domaincoupons.Repository      = (*CouponStore)(nil)
	_ domaincoupons.UsageRepository = (*CouponStore)(nil)
	_ domaincoupons.Redeemer        = (*CouponStore)(nil)
)
