package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func tick(m *TrackModel, at time.Time) {
	m.Update(trackTickMsg(at))
}

func key(m *TrackModel, s string) {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "q":
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	m.Update(msg)
}

func TestTrackSessionSegments(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	m := NewTrackModel("Reading", start)

	// Work 30 minutes, break 10, work 20, end.
	tick(m, start.Add(30*time.Minute))
	key(m, "enter")
	tick(m, start.Add(40*time.Minute))
	key(m, "enter")
	tick(m, start.Add(60*time.Minute))
	key(m, "q")

	if len(m.segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(m.segments))
	}

	wantPhases := []Phase{PhaseWork, PhaseBreak, PhaseWork}
	for i, seg := range m.segments {
		if seg.Phase != wantPhases[i] {
			t.Errorf("segment %d phase = %v, want %v", i, seg.Phase, wantPhases[i])
		}
		if !seg.End.After(seg.Start) {
			t.Errorf("segment %d has non-positive span", i)
		}
	}

	if m.segments[0].Start != start || m.segments[0].End != start.Add(30*time.Minute) {
		t.Errorf("first segment = %v..%v", m.segments[0].Start, m.segments[0].End)
	}
	if m.worked != 50*time.Minute {
		t.Errorf("worked = %v, want 50m", m.worked)
	}
	if m.paused != 10*time.Minute {
		t.Errorf("paused = %v, want 10m", m.paused)
	}
}

func TestTrackZeroLengthSegmentDropped(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	m := NewTrackModel("Reading", start)

	// Toggling twice without a tick in between must not record empty
	// segments.
	key(m, "enter")
	key(m, "enter")
	tick(m, start.Add(5*time.Minute))
	key(m, "q")

	if len(m.segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(m.segments))
	}
	if m.segments[0].Phase != PhaseWork {
		t.Errorf("segment phase = %v, want work", m.segments[0].Phase)
	}
}

func TestPickerNavigation(t *testing.T) {
	p := &picker{
		title:   "Pick an activity",
		options: []Option{{Label: "A"}, {Label: "B"}, {Label: "C"}},
	}

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown}) // clamps at the end
	if p.cursor != 2 {
		t.Errorf("cursor = %d, want 2", p.cursor)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !p.done || p.cursor != 1 {
		t.Errorf("done = %v, cursor = %d, want selection of index 1", p.done, p.cursor)
	}
}

func TestPickerDigitSelect(t *testing.T) {
	p := &picker{options: []Option{{Label: "A"}, {Label: "B"}, {Label: "C"}}}

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if !p.done || p.cursor != 2 {
		t.Errorf("digit select: done = %v, cursor = %d, want index 2", p.done, p.cursor)
	}

	// Out-of-range digits are ignored.
	q := &picker{options: []Option{{Label: "A"}}}
	q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	if q.done {
		t.Error("out-of-range digit must not select")
	}
}

func TestPickerCancel(t *testing.T) {
	p := &picker{options: []Option{{Label: "A"}}}
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !p.canceled {
		t.Error("esc must cancel")
	}
}
