package promo_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/money"
	"github.com/noah-isme/backend-grosir/internal/promo"
)

type fakePromoStore struct {
	promos      map[uuid.UUID]promo.Promotion
	activeCalls int
}

func (f *fakePromoStore) List(context.Context) ([]promo.Promotion, error) {
	var out []promo.Promotion
	for _, p := range f.promos {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePromoStore) ListActive(context.Context) ([]promo.Promotion, error) {
	f.activeCalls++
	var out []promo.Promotion
	for _, p := range f.promos {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePromoStore) Get(_ context.Context, id uuid.UUID) (promo.Promotion, error) {
	p, ok := f.promos[id]
	if !ok {
		return promo.Promotion{}, promo.ErrNotFound
	}
	return p, nil
}

func (f *fakePromoStore) Create(_ context.Context, p promo.Promotion) error {
	if f.promos == nil {
		f.promos = make(map[uuid.UUID]promo.Promotion)
	}
	f.promos[p.ID] = p
	return nil
}

func (f *fakePromoStore) Update(_ context.Context, p promo.Promotion) error {
	if _, ok := f.promos[p.ID]; !ok {
		return promo.ErrNotFound
	}
	f.promos[p.ID] = p
	return nil
}

func validPromotion() promo.Promotion {
	return promo.Promotion{
		Name:   "Order percent",
		Kind:   promo.KindFlat,
		Active: true,
		Scope:  promo.ScopeOrder,
		Type:   promo.TypePercent,
		Value:  money.FromInt(10),
	}
}

func newService(t *testing.T, store promo.Store, client *redis.Client) *promo.Service {
	t.Helper()
	svc, err := promo.NewService(promo.ServiceConfig{Store: store, Redis: client, TTL: time.Minute})
	require.NoError(t, err)
	return svc
}

func TestSnapshotUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := validPromotion()
	p.ID = uuid.New()
	store := &fakePromoStore{promos: map[uuid.UUID]promo.Promotion{p.ID: p}}
	svc := newService(t, store, client)
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, store.activeCalls)

	second, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, store.activeCalls, "second snapshot should come from cache")
	require.True(t, second[0].Value.Equal(p.Value))
}

func TestCreateInvalidatesSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &fakePromoStore{promos: map[uuid.UUID]promo.Promotion{}}
	svc := newService(t, store, client)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	created, err := svc.Create(ctx, validPromotion())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	promos, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
}

func TestCreateValidation(t *testing.T) {
	store := &fakePromoStore{}
	svc := newService(t, store, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*promo.Promotion)
	}{
		{"missing name", func(p *promo.Promotion) { p.Name = " " }},
		{"unknown kind", func(p *promo.Promotion) { p.Kind = "bogus" }},
		{"unknown scope", func(p *promo.Promotion) { p.Scope = "REGION" }},
		{"scoped without target", func(p *promo.Promotion) { p.Scope = promo.ScopeBrand; p.Target = "" }},
		{"percent above 100", func(p *promo.Promotion) { p.Value = money.FromInt(101) }},
		{"zero fixed", func(p *promo.Promotion) { p.Type = promo.TypeFixed; p.Value = money.Zero() }},
		{"window inverted", func(p *promo.Promotion) {
			start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
			end := start.Add(-time.Hour)
			p.StartsAt = &start
			p.EndsAt = &end
		}},
		{"bad clock bound", func(p *promo.Promotion) { p.TimeFrom = "9am" }},
		{"min qty below one", func(p *promo.Promotion) { q := int64(0); p.MinQty = &q }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPromotion()
			tc.mutate(&p)
			_, err := svc.Create(ctx, p)
			require.Error(t, err)
			appErr, ok := common.AsAppError(err)
			require.True(t, ok)
			require.Equal(t, "VALIDATION", appErr.Code)
		})
	}
}

func TestUpdateMissingPromotion(t *testing.T) {
	store := &fakePromoStore{promos: map[uuid.UUID]promo.Promotion{}}
	svc := newService(t, store, nil)

	p := validPromotion()
	p.ID = uuid.New()
	_, err := svc.Update(context.Background(), p)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPreviewResolvesAgainstSnapshot(t *testing.T) {
	p := validPromotion()
	p.ID = uuid.New()
	store := &fakePromoStore{promos: map[uuid.UUID]promo.Promotion{p.ID: p}}
	svc := newService(t, store, nil)

	lines := []promo.Line{{SKU: "SKU-1", Qty: 1, LineTotal: money.FromInt(100)}}
	breakdown, err := svc.Preview(context.Background(), lines, nil)
	require.NoError(t, err)
	require.True(t, breakdown.DiscountTotal.Equal(money.FromInt(10)))
	require.True(t, breakdown.Total.Equal(money.FromInt(90)))
}
