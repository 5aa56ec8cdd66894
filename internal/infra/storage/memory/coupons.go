package memory

import (
	"context"
	"sync"

	domaincoupons "rentadmin/internal/domain/coupons"
	domainrooms "rentadmin/internal/domain/rooms"
)

type couponKey struct {
	tenant domainrooms.TenantID
	code   string
}

// CouponStore holds coupons and their usages behind one lock so redemption can check and
// increment in a single critical section.
type CouponStore struct {
	mu      sync.RWMutex
	coupons map[couponKey]*domaincoupons.Coupon
	byID    map[domaincoupons.CouponID]couponKey
	usages  []domaincoupons.Usage
}

func NewCouponStore() *CouponStore {
	return &CouponStore{
		coupons: make(map[couponKey]*domaincoupons.Coupon),
		byID:    make(map[domaincoupons.CouponID]couponKey),
	}
}

func (s *CouponStore) ByCode(ctx context.Context, tenant domainrooms.TenantID, code string) (*domaincoupons.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coupons[couponKey{tenant: tenant, code: domaincoupons.NormalizeCode(code)}]
	if !ok {
		return nil, domaincoupons.ErrCouponNotFound
	}
	return c.Clone(), nil
}

func (s *CouponStore) Save(ctx context.Context, coupon *domaincoupons.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := couponKey{tenant: coupon.TenantID, code: domaincoupons.NormalizeCode(coupon.Code)}
	if prev, ok := s.byID[coupon.ID]; ok && prev != key {
		delete(s.coupons, prev)
	}
	cp := coupon.Clone()
	cp.Code = key.code
	s.coupons[key] = cp
	s.byID[coupon.ID] = key
	return nil
}

func (s *CouponStore) CountByCustomer(ctx context.Context, id domaincoupons.CouponID, email string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(id, domaincoupons.NormalizeEmail(email)), nil
}

// Redeem increments CurrentUses only while it is below MaxUses and the customer is below the
// per-customer cap, then appends the usage.
func (s *CouponStore) Redeem(ctx context.Context, r domaincoupons.Redemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.byID[r.CouponID]
	if !ok {
		return domaincoupons.ErrCouponNotFound
	}
	c := s.coupons[key]
	if r.MaxUses != nil && c.CurrentUses >= *r.MaxUses {
		return domaincoupons.ErrCouponExhausted
	}
	email := domaincoupons.NormalizeEmail(r.CustomerEmail)
	if r.MaxUsesPerCustomer != nil && s.countLocked(r.CouponID, email) >= *r.MaxUsesPerCustomer {
		return domaincoupons.ErrCustomerLimitReached
	}
	c.CurrentUses++
	c.UpdatedAt = r.At
	s.usages = append(s.usages, domaincoupons.Usage{
		ID:            r.UsageID,
		CouponID:      r.CouponID,
		CustomerEmail: email,
		BookingID:     r.BookingID,
		RedeemedAt:    r.At,
	})
	return nil
}

// Usages returns a copy of the usage log.
func (s *CouponStore) Usages() []domaincoupons.Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domaincoupons.Usage, len(s.usages))
	copy(out, s.usages)
	return out
}

func (s *CouponStore) countLocked(id domaincoupons.CouponID, email string) int {
	n := 0
	for _, u := range s.usages {
		if u.CouponID == id && u.CustomerEmail == email {
			n++
		}
	}
	return n
}

var (
	_ domaincoupons.Repository      = (*CouponStore)(nil)
	_ domaincoupons.UsageRepository = (*CouponStore)(nil)
	_ domaincoupons.Redeemer        = (*CouponStore)(nil)
)
