package rowstore

import (
	"testing"

	"github.com/alexanderramin/plansheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id string, days int) domain.Row {
	return domain.NewTaskRow(id, domain.KindTask, "P", "", days)
}

func TestSetRows_NormalizesDayEntries(t *testing.T) {
	short := task("a", 3)
	long := task("b", 12)
	s := New(7, []domain.Row{short, long, {ID: "h", Kind: domain.KindProjectHeader}})

	for _, r := range s.Rows() {
		if r.Task != nil {
			assert.Len(t, r.Task.DayEntries, 7, "row %s", r.ID)
		}
	}
	assert.Len(t, short.Task.DayEntries, 3, "caller's row must not be modified")
}

func TestSetRows_DropsDuplicatesAndEmptyIDs(t *testing.T) {
	first := task("a", 7)
	first.Task.TaskName = "first"
	second := task("a", 7)
	second.Task.TaskName = "second"

	s := New(7, []domain.Row{first, second, {Kind: domain.KindTask}})
	require.Equal(t, 1, s.Len())
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", got.Task.TaskName)
}

func TestReplace(t *testing.T) {
	s := New(7, []domain.Row{task("a", 7), task("b", 7)})
	before := s.Rows()
	v := s.Version()

	r, _ := s.Get("b")
	r = r.Clone()
	r.Task.TaskName = "renamed"
	require.True(t, s.Replace(r))

	got, _ := s.Get("b")
	assert.Equal(t, "renamed", got.Task.TaskName)
	assert.Greater(t, s.Version(), v)
	assert.Equal(t, "", before[1].Task.TaskName, "earlier snapshot must be unchanged")

	assert.False(t, s.Replace(task("missing", 7)))
}

func TestGetAndIndexOf_Missing(t *testing.T) {
	s := New(7, []domain.Row{task("a", 7)})
	_, ok := s.Get("zzz")
	assert.False(t, ok)
	assert.Equal(t, -1, s.IndexOf("zzz"))
	assert.Equal(t, 0, s.IndexOf("a"))
	assert.Equal(t, []string{"a"}, s.IDs())
	assert.Equal(t, 7, s.TotalDays())
}
