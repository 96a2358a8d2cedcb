package inventory

import (
	"context"
	"sort"
	"testing"
	"time"

	"ffridge/internal/core/expiry"
	"ffridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items map[string]Ingredient
}

func newMemRepo() *memRepo { return &memRepo{items: map[string]Ingredient{}} }

func (m *memRepo) Create(_ context.Context, ing *Ingredient) error {
	m.items[ing.ID] = *ing
	return nil
}

func (m *memRepo) Update(_ context.Context, ing *Ingredient) error {
	if _, ok := m.items[ing.ID]; !ok {
		return common.ErrNotFound
	}
	m.items[ing.ID] = *ing
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*Ingredient, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &it, nil
}

func (m *memRepo) List(_ context.Context, c Category) ([]Ingredient, error) {
	var out []Ingredient
	for _, it := range m.items {
		if c == "" || it.Category == c {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return expiryOr(out[i], maxInt64) < expiryOr(out[j], maxInt64) })
	return out, nil
}

func (m *memRepo) expiringBefore(ms int64) []Ingredient {
	var out []Ingredient
	for _, it := range m.items {
		if it.ExpiryDate != nil && *it.ExpiryDate <= ms {
			out = append(out, it)
		}
	}
	return out
}

func (m *memRepo) DeleteExpiringBefore(_ context.Context, ms int64) (int64, error) {
	items := m.expiringBefore(ms)
	for _, it := range items {
		delete(m.items, it.ID)
	}
	return int64(len(items)), nil
}

func (m *memRepo) Count(context.Context) (int64, error) { return int64(len(m.items)), nil }

func (m *memRepo) CountExpiringBefore(_ context.Context, ms int64) (int64, error) {
	return int64(len(m.expiringBefore(ms))), nil
}

type fixedRecipes struct{ total, fav int64 }

func (f fixedRecipes) Counts(context.Context) (int64, int64, error) { return f.total, f.fav, nil }

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func msPtr(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := NewService(repo, fixedRecipes{total: 4, fav: 1}, Options{
		WarningDays: 3,
		Location:    time.UTC,
		Clock:       func() time.Time { return testNow },
	})
	return svc, repo
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	items := []Ingredient{
		{ID: "milk", Name: "Milk", Quantity: "1", Unit: "L", Category: Dairy, ExpiryDate: msPtr(testNow.AddDate(0, 0, -2)), AddedDate: 1},
		{ID: "eggs", Name: "eggs", Quantity: "12", Unit: "pcs", Category: Dairy, ExpiryDate: msPtr(testNow.AddDate(0, 0, 2)), AddedDate: 2},
		{ID: "carrot", Name: "Carrot", Quantity: "some", Unit: "bag", Category: Vegetables, ExpiryDate: msPtr(testNow.AddDate(0, 0, 6)), AddedDate: 3},
		{ID: "rice", Name: "Rice", Quantity: "2.5", Unit: "kg", Category: Grains, AddedDate: 4},
		{ID: "yogurt", Name: "Yogurt", Quantity: "0.5", Unit: "cup", Category: Dairy, ExpiryDate: msPtr(testNow.Add(3 * time.Hour)), AddedDate: 5},
	}
	for i := range items {
		require.NoError(t, svc.Add(ctx, &items[i]))
	}
}

func ids(items []Ingredient) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ing  Ingredient
		ok   bool
	}{
		{"valid", Ingredient{Name: "Milk", Quantity: "1", Category: Dairy}, true},
		{"lowercase category", Ingredient{Name: "Milk", Category: "dairy"}, true},
		{"default category", Ingredient{Name: "Milk"}, true},
		{"free text quantity", Ingredient{Name: "Milk", Quantity: "a splash"}, true},
		{"name too short", Ingredient{Name: " M "}, false},
		{"name too long", Ingredient{Name: string(make([]byte, 101))}, false},
		{"unknown category", Ingredient{Name: "Milk", Category: "TOYS"}, false},
		{"quantity too small", Ingredient{Name: "Milk", Quantity: "0"}, false},
		{"quantity too large", Ingredient{Name: "Milk", Quantity: "10000"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := tt.ing
			err := Validate(&ing)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, common.IsValidationError(err), "got %v", err)
			}
		})
	}

	ing := Ingredient{Name: "  Milk ", Category: "dairy"}
	require.NoError(t, Validate(&ing))
	assert.Equal(t, "Milk", ing.Name)
	assert.Equal(t, Dairy, ing.Category)
}

func TestAddAssignsIDAndDate(t *testing.T) {
	svc, repo := newTestService(t)
	ing := &Ingredient{Name: "Butter", Category: Dairy}
	require.NoError(t, svc.Add(context.Background(), ing))
	assert.NotEmpty(t, ing.ID)
	assert.Equal(t, testNow.UnixMilli(), ing.AddedDate)
	assert.Contains(t, repo.items, ing.ID)
}

func TestUpdateKeepsAddedDate(t *testing.T) {
	svc, _ := newTestService(t)
	seed(t, svc)
	ctx := context.Background()

	err := svc.Update(ctx, &Ingredient{ID: "rice", Name: "Brown Rice", Quantity: "3", Category: Grains})
	require.NoError(t, err)
	got, err := svc.Get(ctx, "rice")
	require.NoError(t, err)
	assert.Equal(t, "Brown Rice", got.Name)
	assert.EqualValues(t, 4, got.AddedDate)

	err = svc.Update(ctx, &Ingredient{ID: "nope", Name: "Ghost"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListFilterAndSort(t *testing.T) {
	svc, _ := newTestService(t)
	seed(t, svc)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"default newest first", Filter{}, []string{"yogurt", "rice", "carrot", "eggs", "milk"}},
		{"all category", Filter{Category: "All", Sort: SortDateAddedAsc}, []string{"milk", "eggs", "carrot", "rice", "yogurt"}},
		{"dairy only", Filter{Category: "dairy", Sort: SortNameAsc}, []string{"eggs", "milk", "yogurt"}},
		{"search name", Filter{Search: "RI"}, []string{"rice"}},
		{"search category", Filter{Search: "veg"}, []string{"carrot"}},
		{"name desc", Filter{Sort: SortNameDesc}, []string{"yogurt", "rice", "milk", "eggs", "carrot"}},
		{"expiry asc", Filter{Sort: SortExpiryAsc}, []string{"milk", "yogurt", "eggs", "carrot", "rice"}},
		{"expiry desc", Filter{Sort: SortExpiryDesc}, []string{"carrot", "eggs", "yogurt", "milk", "rice"}},
		{"quantity asc", Filter{Sort: SortQuantityAsc}, []string{"carrot", "yogurt", "milk", "rice", "eggs"}},
		{"quantity desc", Filter{Sort: SortQuantityDesc}, []string{"eggs", "rice", "milk", "yogurt", "carrot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	_, err := svc.List(ctx, Filter{Category: "TOYS"})
	assert.True(t, common.IsValidationError(err))
}

func TestParseSortOption(t *testing.T) {
	o, err := ParseSortOption("")
	require.NoError(t, err)
	assert.Equal(t, SortDateAddedDesc, o)

	o, err = ParseSortOption("expiry_asc")
	require.NoError(t, err)
	assert.Equal(t, SortExpiryAsc, o)

	_, err = ParseSortOption("random")
	assert.Error(t, err)
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService(t)
	seed(t, svc)

	ov, err := svc.Overview(context.Background(), Filter{Sort: SortExpiryAsc})
	require.NoError(t, err)
	assert.Equal(t, 5, ov.Total)
	assert.Equal(t, expiry.Counts{ExpiringSoon: 2, Expired: 1}, ov.Counts)

	byID := map[string]Entry{}
	for _, e := range ov.Items {
		byID[e.ID] = e
	}
	assert.Equal(t, expiry.Status{Kind: expiry.Expired, Days: 2}, byID["milk"].Status)
	assert.Equal(t, expiry.SeverityCritical, byID["milk"].Badge.Severity)
	assert.Equal(t, expiry.Status{Kind: expiry.ExpiringToday}, byID["yogurt"].Status)
	assert.Equal(t, expiry.Status{Kind: expiry.ExpiringSoon, Days: 2}, byID["eggs"].Status)
	assert.Equal(t, expiry.Status{Kind: expiry.ExpiringThisWeek, Days: 6}, byID["carrot"].Status)
	assert.Equal(t, expiry.Status{Kind: expiry.NoExpiry}, byID["rice"].Status)
}

func TestExpiringAndExpired(t *testing.T) {
	svc, _ := newTestService(t)
	seed(t, svc)
	ctx := context.Background()

	expiring, err := svc.Expiring(ctx)
	require.NoError(t, err)
	var got []string
	for _, e := range expiring {
		got = append(got, e.ID)
	}
	assert.ElementsMatch(t, []string{"yogurt", "eggs"}, got)

	expired, err := svc.Expired(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "milk", expired[0].ID)
}

func TestCleanupExpiredAndStats(t *testing.T) {
	svc, repo := newTestService(t)
	seed(t, svc)
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalIngredients: 5, ExpiredIngredients: 1, TotalRecipes: 4, FavoriteRecipes: 1}, stats)

	n, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NotContains(t, repo.items, "milk")
	assert.Contains(t, repo.items, "yogurt")
}

func TestStatsCountsCalendarDaysLikeOverview(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	// 今天稍早已過期：狀態仍是今天到期
	require.NoError(t, svc.Add(ctx, &Ingredient{ID: "bread", Name: "Bread", Category: Bakery, ExpiryDate: msPtr(testNow.Add(-3 * time.Hour))}))

	ov, err := svc.Overview(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, ov.Items, 1)
	assert.Equal(t, expiry.ExpiringToday, ov.Items[0].Status.Kind)
	assert.Zero(t, ov.Counts.Expired)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.ExpiredIngredients)

	expired, err := svc.Expired(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	// 清除仍以當下時刻為界
	n, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, repo.items)
}

func TestExpiryItemsAndNames(t *testing.T) {
	svc, _ := newTestService(t)
	seed(t, svc)
	ctx := context.Background()

	items, err := svc.ExpiryItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, "milk", items[0].ID)

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "Yogurt", "eggs", "Carrot", "Rice"}, names)
}

func TestCategoryIcon(t *testing.T) {
	assert.Equal(t, "🥛", Dairy.Icon())
	assert.Equal(t, "📦", Category("TOYS").Icon())
	assert.Len(t, Categories, 14)
}
