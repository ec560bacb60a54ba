package derive

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const days = 14

func taskRow(id string, opts ...func(*domain.TaskFields)) domain.Row {
	r := domain.NewTaskRow(id, domain.KindTask, "P", "", days)
	for _, o := range opts {
		o(r.Task)
	}
	return r
}

func named(n string) func(*domain.TaskFields) {
	return func(t *domain.TaskFields) { t.TaskName = n }
}

func estimate(e domain.EstimateLabel) func(*domain.TaskFields) {
	return func(t *domain.TaskFields) { t.Estimate = e }
}

func status(s domain.Status) func(*domain.TaskFields) {
	return func(t *domain.TaskFields) { t.Status = s }
}

func entries(vals ...string) func(*domain.TaskFields) {
	return func(t *domain.TaskFields) { copy(t.DayEntries, vals) }
}

func deriveOne(t *testing.T, r domain.Row) *domain.TaskFields {
	t.Helper()
	out := Derive([]domain.Row{r}, days)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Task)
	return out[0].Task
}

func TestDerive_FixedEstimateNoEntries(t *testing.T) {
	got := deriveOne(t, taskRow("a", estimate("30 Minutes")))
	assert.Equal(t, "0.30", got.TimeValue)
	assert.Equal(t, domain.StatusNone, got.Status, "empty name forces -")

	got = deriveOne(t, taskRow("a", estimate("30 Minutes"), named("Stretch")))
	assert.Equal(t, "0.30", got.TimeValue)
	assert.Equal(t, domain.StatusNotScheduled, got.Status)
	assert.Empty(t, got.OriginalEstimate)
}

func TestDerive_HabitDetectionFlipsToMulti(t *testing.T) {
	got := deriveOne(t, taskRow("b", named("Run"), estimate(domain.EstimateNone),
		entries("1:30", "", "2:00", "", "", "", "")))
	assert.Equal(t, domain.EstimateMulti, got.Estimate)
	assert.Equal(t, "3.30", got.TimeValue)
	assert.Equal(t, domain.EstimateNone, got.OriginalEstimate)
	assert.Equal(t, domain.StatusScheduled, got.Status)
}

func TestDerive_HabitDetection_OneEntryPerWeekDoesNotFlip(t *testing.T) {
	got := deriveOne(t, taskRow("c", named("Call"), estimate("1 Hour"),
		entries("1:00", "", "", "", "", "", "", "1:00")))
	assert.Equal(t, domain.EstimateLabel("1 Hour"), got.Estimate)
	assert.Equal(t, "1.00", got.TimeValue)
	assert.Empty(t, got.OriginalEstimate)
}

func TestDerive_HabitDetection_InvalidEntriesDoNotCount(t *testing.T) {
	got := deriveOne(t, taskRow("c", named("Call"), estimate("1 Hour"),
		entries("1:00", "soon", "??")))
	assert.Equal(t, domain.EstimateLabel("1 Hour"), got.Estimate)
}

func TestDerive_HabitDetection_SnapshotsPriorEstimate(t *testing.T) {
	got := deriveOne(t, taskRow("d", named("Gym"), estimate("45 Minutes"),
		entries(domain.PlaceholderToken, "", domain.PlaceholderToken)))
	assert.Equal(t, domain.EstimateMulti, got.Estimate)
	assert.Equal(t, domain.EstimateLabel("45 Minutes"), got.OriginalEstimate)
	assert.Equal(t, "1.30", got.TimeValue, "two placeholders at 45 minutes each")
	assert.Equal(t, "0.45", got.DayEntries[0])
	assert.Equal(t, "0.45", got.DayEntries[2])
}

func TestDerive_CustomKeepsLabelAndSums(t *testing.T) {
	r := taskRow("e", named("Essay"), entries("2", "", "", "", "", "", "", "0:30"))
	r.Task.SetEstimate(domain.EstimateCustom)
	got := deriveOne(t, r)
	assert.Equal(t, domain.EstimateCustom, got.Estimate)
	assert.Equal(t, domain.EstimateNone, got.OriginalEstimate)
	assert.Equal(t, "2.30", got.TimeValue)
}

func TestDerive_AggregateWithoutSnapshotGetsDash(t *testing.T) {
	got := deriveOne(t, taskRow("e", estimate(domain.EstimateMulti)))
	assert.Equal(t, domain.EstimateNone, got.OriginalEstimate)
	assert.Equal(t, "0.00", got.TimeValue)
}

func TestDerive_LeavingAggregateClearsSnapshot(t *testing.T) {
	r := taskRow("e", estimate("1 Hour"))
	r.Task.OriginalEstimate = "30 Minutes"
	got := deriveOne(t, r)
	assert.Empty(t, got.OriginalEstimate)
}

func TestDerive_PlaceholderTakesTimeValue(t *testing.T) {
	got := deriveOne(t, taskRow("f", named("Plan"), estimate("2 Hours"),
		entries(domain.PlaceholderToken)))
	assert.Equal(t, "2.00", got.TimeValue)
	assert.Equal(t, "2.00", got.DayEntries[0])
	assert.Equal(t, domain.StatusScheduled, got.Status)
}

func TestDerive_MalformedEntriesAreZero(t *testing.T) {
	r := taskRow("g", named("Mixed"), entries("1:00", "", "", "", "", "", "", "garbage", "", "", "", "", "", "", ""))
	r.Task.SetEstimate(domain.EstimateCustom)
	got := deriveOne(t, r)
	assert.Equal(t, "1.00", got.TimeValue)
}

func TestDerive_OversizedEntryDoesNotEraseOthers(t *testing.T) {
	r := taskRow("g", named("Huge"), entries("1:00", "1e300"))
	r.Task.SetEstimate(domain.EstimateCustom)
	got := deriveOne(t, r)
	assert.Equal(t, "1.00", got.TimeValue)

	totals := DailyTotals([]domain.Row{r}, 2)
	assert.Equal(t, []int{60, 0}, totals)
}

func TestDerive_StatusMachine(t *testing.T) {
	cases := []struct {
		name    string
		status  domain.Status
		entries bool
		want    domain.Status
	}{
		{"", domain.StatusScheduled, true, domain.StatusNone},
		{"", domain.StatusNotScheduled, false, domain.StatusNone},
		{"", domain.StatusDone, false, domain.StatusDone},
		{"", domain.StatusAbandoned, true, domain.StatusAbandoned},
		{"T", domain.StatusNone, true, domain.StatusScheduled},
		{"T", domain.StatusNotScheduled, true, domain.StatusScheduled},
		{"T", domain.StatusAbandoned, true, domain.StatusScheduled},
		{"T", domain.StatusDone, true, domain.StatusDone},
		{"T", domain.StatusBlocked, true, domain.StatusBlocked},
		{"T", domain.StatusOnHold, true, domain.StatusOnHold},
		{"T", domain.StatusSpecial, true, domain.StatusSpecial},
		{"T", domain.StatusNone, false, domain.StatusNotScheduled},
		{"T", domain.StatusScheduled, false, domain.StatusNotScheduled},
		{"T", domain.StatusAbandoned, false, domain.StatusAbandoned},
		{"T", domain.StatusDone, false, domain.StatusDone},
		{"T", "", false, domain.StatusNotScheduled},
	}
	for _, tc := range cases {
		opts := []func(*domain.TaskFields){named(tc.name), status(tc.status)}
		if tc.entries {
			opts = append(opts, entries("1:00"))
		}
		got := deriveOne(t, taskRow("s", opts...))
		assert.Equal(t, tc.want, got.Status, "name=%q status=%q entries=%v", tc.name, tc.status, tc.entries)
	}
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	r := taskRow("h", named("X"), entries(domain.PlaceholderToken, "1:00"))
	in := []domain.Row{r}
	_ = Derive(in, days)
	assert.Equal(t, domain.PlaceholderToken, in[0].Task.DayEntries[0])
	assert.Equal(t, domain.EstimateNone, in[0].Task.Estimate)
}

func TestDerive_NormalizesDayEntryLength(t *testing.T) {
	r := taskRow("h")
	r.Task.DayEntries = []string{"1:00"}
	got := deriveOne(t, r)
	assert.Len(t, got.DayEntries, days)
}

func TestDerive_GroupInheritance(t *testing.T) {
	rows := []domain.Row{
		{ID: "tl", Kind: domain.KindTimeline, Timeline: &domain.TimelineFields{Part: domain.TimelineDay}},
		{ID: "p1", Kind: domain.KindProjectHeader, GroupID: "g1"},
		{ID: "p1g", Kind: domain.KindProjectGeneral},
		taskRow("t1"),
		{ID: "p1u", Kind: domain.KindProjectUnscheduled},
		{ID: "s1", Kind: domain.KindSubprojectHeader, GroupID: "g1s"},
		{ID: "s1g", Kind: domain.KindSubprojectGeneral},
		taskRow("t2"),
		{ID: "p2", Kind: domain.KindProjectHeader, GroupID: "g2"},
		taskRow("t3"),
		domain.NewTaskRow("i1", domain.KindInboxItem, "", "", days),
		taskRow("t4"),
		{ID: "w1", Kind: domain.KindArchiveWeek, GroupID: "w1"},
		{ID: "ap", Kind: domain.KindArchivedProjectHeader, GroupID: "w1p"},
		{ID: "apg", Kind: domain.KindArchivedProjectGeneral},
		taskRow("t5"),
	}
	rows[3].ParentGroupID = "stale"

	out := Derive(rows, days)
	want := map[string]string{
		"tl": "", "p1": "", "p1g": "g1", "t1": "g1", "p1u": "g1",
		"s1": "g1", "s1g": "g1s", "t2": "g1s",
		"p2": "", "t3": "g2",
		"i1": "", "t4": "",
		"w1": "", "ap": "w1", "apg": "w1p", "t5": "w1p",
	}
	for _, r := range out {
		assert.Equal(t, want[r.ID], r.ParentGroupID, "row %s", r.ID)
	}
	assert.Equal(t, "stale", rows[3].ParentGroupID, "input untouched")
}

func randomRows(rng *rand.Rand, n int) []domain.Row {
	pool := []string{"", "", "", "1:30", "0.5", "2", "0.30", domain.PlaceholderToken, "junk", "12:00"}
	ests := domain.AllEstimates()
	kinds := []domain.RowKind{domain.KindProjectHeader, domain.KindProjectGeneral, domain.KindSubprojectHeader}
	rows := make([]domain.Row, 0, n)
	for i := 0; i < n; i++ {
		id := "r" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		if rng.Intn(5) == 0 {
			k := kinds[rng.Intn(len(kinds))]
			rows = append(rows, domain.Row{ID: id, Kind: k, GroupID: "g-" + id})
			continue
		}
		r := domain.NewTaskRow(id, domain.KindTask, "P", "", days)
		if rng.Intn(4) == 0 {
			r.Kind = domain.KindInboxItem
		}
		if rng.Intn(3) > 0 {
			r.Task.TaskName = "task"
		}
		r.Task.Status = domain.AllStatuses[rng.Intn(len(domain.AllStatuses))]
		r.Task.Estimate = ests[rng.Intn(len(ests))]
		if rng.Intn(6) == 0 {
			r.Task.OriginalEstimate = ests[rng.Intn(len(ests))]
		}
		for d := range r.Task.DayEntries {
			r.Task.DayEntries[d] = pool[rng.Intn(len(pool))]
		}
		rows = append(rows, r)
	}
	return rows
}

func tracked(r domain.Row) any {
	if r.Task == nil {
		return r.ParentGroupID
	}
	return []any{r.ParentGroupID, r.Task.Status, r.Task.Estimate, r.Task.TimeValue,
		r.Task.OriginalEstimate, r.Task.DayEntries}
}

// TestDerive_Idempotent property-tests derive(derive(R)) == derive(R) on the
// tracked fields.
func TestDerive_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 300; trial++ {
		rows := randomRows(rng, rng.Intn(30)+1)
		once := Derive(rows, days)
		twice := Derive(once, days)
		require.Len(t, twice, len(once))
		for i := range once {
			assert.Equal(t, tracked(once[i]), tracked(twice[i]), "trial %d row %s", trial, once[i].ID)
		}
	}
}

// TestDerive_DayEntryLengthInvariant checks len(dayEntries) == totalDays for
// every derived task-like row regardless of input length.
func TestDerive_DayEntryLengthInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 100; trial++ {
		rows := randomRows(rng, 10)
		for i := range rows {
			if rows[i].Task != nil {
				rows[i].Task.DayEntries = rows[i].Task.DayEntries[:rng.Intn(days+1)]
			}
		}
		for _, r := range Derive(rows, days) {
			if r.Task != nil {
				assert.Len(t, r.Task.DayEntries, days)
			}
		}
	}
}

func TestDailyTotals(t *testing.T) {
	rows := []domain.Row{
		taskRow("a", named("A"), entries("1:00", "0.30")),
		taskRow("b", named("B"), entries("0:30", "", "2")),
		taskRow("c", named("C"), status(domain.StatusAbandoned), entries("5:00")),
		{ID: "h", Kind: domain.KindProjectHeader},
	}
	totals := DailyTotals(rows, 3)
	assert.Equal(t, []int{90, 30, 120}, totals)
}
