package derive

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/alexanderramin/plansheet/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_NoChangeReturnsSameSlice(t *testing.T) {
	rows := []domain.Row{
		{ID: "h", Kind: domain.KindProjectHeader, GroupID: "g"},
		taskRow("a", named("A"), estimate("1 Hour")),
	}
	// Bring the stored rows to their derived state first.
	stored, _ := Reconcile(rows, Derive(rows, days))

	next, changed := Reconcile(stored, Derive(stored, days))
	assert.Empty(t, changed)
	require.NotEmpty(t, next)
	assert.Same(t, &stored[0], &next[0], "unchanged reconcile must return the stored slice itself")
}

func TestReconcile_WritesTrackedFieldsOnly(t *testing.T) {
	r := taskRow("a", named("A"), estimate("30 Minutes"), entries(domain.PlaceholderToken, "", "1:00"))
	r.ParentGroupID = "old"
	stored := []domain.Row{r}
	derived := Derive(stored, days)
	derived[0].Task.TaskName = "derived-only change"
	derived[0].ParentGroupID = "new"

	next, changed := Reconcile(stored, derived)
	require.Equal(t, []string{"a"}, changed)
	got := next[0].Task
	assert.Equal(t, domain.EstimateMulti, got.Estimate)
	assert.Equal(t, domain.EstimateLabel("30 Minutes"), got.OriginalEstimate)
	assert.Equal(t, "1.30", got.TimeValue)
	assert.Equal(t, "0.30", got.DayEntries[0], "placeholder written back")
	assert.Equal(t, "1:00", got.DayEntries[2])
	assert.Equal(t, domain.StatusScheduled, got.Status)
	assert.Equal(t, "A", got.TaskName, "untracked field not copied")
	assert.Equal(t, "old", next[0].ParentGroupID, "group inheritance is not written back")

	assert.Equal(t, domain.PlaceholderToken, stored[0].Task.DayEntries[0], "stored slice untouched")
}

func TestReconcile_IgnoresNonTaskAndMissingRows(t *testing.T) {
	stored := []domain.Row{
		{ID: "h", Kind: domain.KindProjectHeader},
		taskRow("a", named("A")),
	}
	derived := Derive(stored[:1], days)
	next, changed := Reconcile(stored, derived)
	assert.Empty(t, changed)
	assert.Len(t, next, 2)
}

func TestPipeline_SinglePassWhenAlreadyDerived(t *testing.T) {
	store := rowstore.New(days, []domain.Row{taskRow("a")})
	p := NewPipeline(store)

	first := p.Run()
	v := store.Version()
	second := p.Run()

	assert.Equal(t, 1, second.Passes)
	assert.True(t, second.Converged)
	assert.Empty(t, second.Reconciled)
	assert.Equal(t, v, store.Version(), "no write when nothing changed")
	assert.Len(t, first.Derived, 1)
}

func TestPipeline_WriteBackBoundedToOneExtraPass(t *testing.T) {
	store := rowstore.New(days, []domain.Row{
		taskRow("a", named("Walk"), estimate("15 Minutes"), entries(domain.PlaceholderToken, domain.PlaceholderToken)),
		taskRow("b", named("Read")),
	})
	res := NewPipeline(store).Run()

	assert.Equal(t, 2, res.Passes)
	assert.True(t, res.Converged)
	assert.ElementsMatch(t, []string{"a", "b"}, res.Reconciled)

	a, _ := store.Get("a")
	assert.Equal(t, domain.EstimateMulti, a.Task.Estimate)
	assert.Equal(t, "0.30", a.Task.TimeValue)
	assert.Equal(t, []string{"0.15", "0.15"}, a.Task.DayEntries[:2])
	b, _ := store.Get("b")
	assert.Equal(t, domain.StatusNotScheduled, b.Task.Status)
}

// TestPipeline_AlwaysConverges property-tests that one write-back is enough
// for arbitrary input.
func TestPipeline_AlwaysConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		store := rowstore.New(days, randomRows(rng, rng.Intn(25)+1))
		res := NewPipeline(store).Run()
		require.True(t, res.Converged, "trial %d", trial)

		again := NewPipeline(store).Run()
		assert.Equal(t, 1, again.Passes, "trial %d", trial)
		assert.Empty(t, again.Reconciled, "trial %d", trial)
	}
}
