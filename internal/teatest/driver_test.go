package teatest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

// recorder keeps every message it is sent.
type recorder struct {
	msgs []tea.Msg
}

func (r *recorder) Init() tea.Cmd { return nil }

func (r *recorder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	r.msgs = append(r.msgs, msg)
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyCtrlC {
		return r, tea.Quit
	}
	return r, nil
}

func (r *recorder) View() string { return "" }

func (r *recorder) mice() []tea.MouseMsg {
	var out []tea.MouseMsg
	for _, m := range r.msgs {
		if mm, ok := m.(tea.MouseMsg); ok {
			out = append(out, mm)
		}
	}
	return out
}

func TestDrag_ReportsEveryRow(t *testing.T) {
	r := &recorder{}
	d := New(t, r)

	d.Drag(3, 5, 8)

	mice := r.mice()
	if assert.Len(t, mice, 5) {
		assert.Equal(t, tea.MouseActionPress, mice[0].Action)
		assert.Equal(t, tea.MouseButtonLeft, mice[0].Button)
		for i, y := range []int{6, 7, 8} {
			assert.Equal(t, tea.MouseActionMotion, mice[i+1].Action)
			assert.Equal(t, y, mice[i+1].Y)
		}
		assert.Equal(t, tea.MouseActionRelease, mice[4].Action)
		assert.Equal(t, 8, mice[4].Y)
	}
}

func TestDrag_Upwards(t *testing.T) {
	r := &recorder{}
	New(t, r).Drag(0, 4, 2)

	mice := r.mice()
	assert.Len(t, mice, 4)
	assert.Equal(t, 3, mice[1].Y)
	assert.Equal(t, 2, mice[2].Y)
}

func TestClickModifiersAndWheel(t *testing.T) {
	r := &recorder{}
	d := New(t, r)

	d.Click(1, 2, WithShift(), WithCtrl())
	d.Wheel(0, 0, -2)

	mice := r.mice()
	assert.Len(t, mice, 4)
	assert.True(t, mice[0].Shift)
	assert.True(t, mice[0].Ctrl)
	assert.False(t, mice[1].Shift, "release carries no modifiers")
	assert.Equal(t, tea.MouseButtonWheelUp, mice[2].Button)
}

func TestQuitStopsSending(t *testing.T) {
	r := &recorder{}
	d := New(t, r)

	d.PressCtrlC()
	assert.True(t, d.Quitting)

	before := len(r.msgs)
	d.PressEnter()
	assert.Len(t, r.msgs, before)
}
