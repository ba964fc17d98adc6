package coupon_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kashvi-silver/backend-kashvi/internal/coupon"
)

type fakeStore struct {
	coupons map[string]coupon.Coupon
}

func (f *fakeStore) GetByCode(_ context.Context, code string) (coupon.Coupon, error) {
	c, ok := f.coupons[coupon.NormalizeCode(code)]
	if !ok {
		return coupon.Coupon{}, coupon.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) List(context.Context) ([]coupon.Coupon, error) {
	out := make([]coupon.Coupon, 0, len(f.coupons))
	for _, c := range f.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, code string, pct int32, active bool) (coupon.Coupon, error) {
	normalized := coupon.NormalizeCode(code)
	if _, exists := f.coupons[normalized]; exists {
		return coupon.Coupon{}, coupon.ErrDuplicateCode
	}
	c := coupon.Coupon{ID: uuid.New(), Code: normalized, DiscountPercentage: pct, IsActive: active}
	if f.coupons == nil {
		f.coupons = map[string]coupon.Coupon{}
	}
	f.coupons[normalized] = c
	return c, nil
}

func (f *fakeStore) SetActive(_ context.Context, id uuid.UUID, active bool) (coupon.Coupon, error) {
	for code, c := range f.coupons {
		if c.ID == id {
			c.IsActive = active
			f.coupons[code] = c
			return c, nil
		}
	}
	return coupon.Coupon{}, coupon.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	for code, c := range f.coupons {
		if c.ID == id {
			delete(f.coupons, code)
			return nil
		}
	}
	return coupon.ErrNotFound
}

func newService(coupons ...coupon.Coupon) (*coupon.Service, *fakeStore) {
	store := &fakeStore{coupons: map[string]coupon.Coupon{}}
	for _, c := range coupons {
		store.coupons[c.Code] = c
	}
	return &coupon.Service{Store: store}, store
}

func TestRedeemableMatchesCaseInsensitively(t *testing.T) {
	svc, _ := newService(coupon.Coupon{ID: uuid.New(), Code: "WELCOME15", DiscountPercentage: 15, IsActive: true})

	pct, ok := svc.Redeemable(context.Background(), "  welcome15 ")
	require.True(t, ok)
	require.Equal(t, int32(15), pct)
}

func TestRedeemableUnknownCode(t *testing.T) {
	svc, _ := newService()

	pct, ok := svc.Redeemable(context.Background(), "NOPE")
	require.False(t, ok)
	require.Zero(t, pct)
}

func TestRedeemableInactiveCode(t *testing.T) {
	svc, _ := newService(coupon.Coupon{ID: uuid.New(), Code: "EXPIRED10", DiscountPercentage: 10, IsActive: false})

	_, ok := svc.Redeemable(context.Background(), "EXPIRED10")
	require.False(t, ok)
}

func TestPreviewRoundsHalfUp(t *testing.T) {
	svc, _ := newService(coupon.Coupon{ID: uuid.New(), Code: "SAVE15", DiscountPercentage: 15, IsActive: true})

	result := svc.Preview(context.Background(), "save15", 333)
	require.True(t, result.Applied)
	require.Equal(t, int64(50), int64(result.Discount))
}

func TestPreviewUnknownCodeNotApplied(t *testing.T) {
	svc, _ := newService()

	result := svc.Preview(context.Background(), "ghost", 1000)
	require.False(t, result.Applied)
	require.Zero(t, result.Discount)
}

func TestCreateRejectsBadPercentage(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(context.Background(), "TOOMUCH", 120, true)
	require.ErrorIs(t, err, coupon.ErrInvalidPercent)

	_, err = svc.Create(context.Background(), "ZERO", 0, true)
	require.ErrorIs(t, err, coupon.ErrInvalidPercent)
}

func TestCreateNormalizesCode(t *testing.T) {
	svc, store := newService()

	c, err := svc.Create(context.Background(), " diwali20 ", 20, true)
	require.NoError(t, err)
	require.Equal(t, "DIWALI20", c.Code)
	_, exists := store.coupons["DIWALI20"]
	require.True(t, exists)
}
