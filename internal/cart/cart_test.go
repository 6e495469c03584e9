package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

var (
	butterChicken = models.MenuItem{ID: "301", Name: "Butter Chicken", Price: 380, Category: models.MainCourse, IsAvailable: true}
	garlicNaan    = models.MenuItem{ID: "404", Name: "Garlic Naan", Price: 60, Category: models.Breads, IsAvailable: true, IsVegetarian: true}
)

func TestCart_TotalAndCount(t *testing.T) {
	c := New()
	c.Add(butterChicken)
	c.Add(garlicNaan)
	c.Add(garlicNaan)

	assert.Equal(t, int64(500), c.Total())
	assert.Equal(t, 3, c.Count())

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "301", items[0].ID)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestCart_Remove(t *testing.T) {
	c := New()
	c.Add(garlicNaan)
	c.Add(garlicNaan)

	c.Remove("404")
	assert.Equal(t, 1, c.Count())

	c.Remove("404")
	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.Total())

	c.Remove("404")
	c.Remove("does-not-exist")
	assert.Equal(t, 0, c.Count())
}

func TestCart_CountMatchesAddsMinusRemoves(t *testing.T) {
	menu := []models.MenuItem{butterChicken, garlicNaan, {ID: "601", Name: "Masala Chai", Price: 40}}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		c := New()
		expected := map[string]int{}
		for step := 0; step < 200; step++ {
			item := menu[rng.Intn(len(menu))]
			if rng.Intn(2) == 0 {
				c.Add(item)
				expected[item.ID]++
			} else {
				c.Remove(item.ID)
				if expected[item.ID] > 0 {
					expected[item.ID]--
				}
			}

			want, wantTotal := 0, int64(0)
			for _, m := range menu {
				want += expected[m.ID]
				wantTotal += m.Price * int64(expected[m.ID])
			}
			require.Equal(t, want, c.Count())
			require.Equal(t, wantTotal, c.Total())
			for _, it := range c.Items() {
				require.Positive(t, it.Quantity)
			}
		}
	}
}

func TestCart_VersionTracksMutations(t *testing.T) {
	c := New()
	v0 := c.Version()

	c.Add(butterChicken)
	v1 := c.Version()
	assert.Greater(t, v1, v0)

	c.Remove("missing")
	assert.Equal(t, v1, c.Version())

	c.Clear()
	assert.Greater(t, c.Version(), v1)
}

func TestCart_Summary(t *testing.T) {
	c := New()
	assert.Equal(t, Summary{Items: []models.CartItem{}}, c.Summary())

	c.Add(butterChicken)
	c.Add(garlicNaan)
	c.Add(garlicNaan)
	s := c.Summary()
	assert.Equal(t, int64(500), s.Total)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, []string{"Butter Chicken", "Garlic Naan"}, c.Names())
}

func TestCart_ClearIf(t *testing.T) {
	c := New()
	c.Add(butterChicken)
	_, v := c.Snapshot()

	c.Add(garlicNaan)
	assert.False(t, c.ClearIf(v))
	assert.Equal(t, 2, c.Count())

	_, v = c.Snapshot()
	assert.True(t, c.ClearIf(v))
	assert.True(t, c.IsEmpty())
}

func TestCart_Subtract(t *testing.T) {
	c := New()
	c.Add(butterChicken)
	c.Add(garlicNaan)
	c.Add(garlicNaan)
	c.Add(garlicNaan)

	c.Subtract([]models.CartItem{
		{MenuItem: butterChicken, Quantity: 1},
		{MenuItem: garlicNaan, Quantity: 2},
		{MenuItem: models.MenuItem{ID: "999"}, Quantity: 1},
	})

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "404", items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
}
