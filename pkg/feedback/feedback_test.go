// ABOUTME: Tests for feedback sinks
// ABOUTME: Replaces the system bell and notifier with recorders
package feedback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBellRingsDistinctTones(t *testing.T) {
	var freqs []float64
	var durations []int
	b := NewBell()
	b.beep = func(freq float64, ms int) error {
		freqs = append(freqs, freq)
		durations = append(durations, ms)
		return nil
	}

	require.NoError(t, b.Toggled("a"))
	require.NoError(t, b.Skipped(-15000))

	assert.Equal(t, []float64{DefaultToggleFreq, DefaultSkipFreq}, freqs)
	assert.Equal(t, []int{40, 40}, durations)
}

func TestBellWrapsErrors(t *testing.T) {
	cause := errors.New("no speaker")
	b := NewBell()
	b.beep = func(float64, int) error { return cause }

	assert.ErrorIs(t, b.Toggled("a"), cause)
}

func TestNotifierUsesTitle(t *testing.T) {
	n := NewNotifier("memorylane", func(id string) string { return "Memory " + id })
	var title, message string
	n.notify = func(ti, m string, _ any) error {
		title, message = ti, m
		return nil
	}

	require.NoError(t, n.Toggled("42"))
	assert.Equal(t, "memorylane", title)
	assert.Equal(t, "Memory 42", message)
	assert.NoError(t, n.Skipped(15000))
}

func TestNotifierNotice(t *testing.T) {
	n := NewNotifier("memorylane", nil)
	var message string
	n.notify = func(_, m string, _ any) error {
		message = m
		return nil
	}

	require.NoError(t, n.Notice("Failed to play audio"))
	assert.Equal(t, "Failed to play audio", message)
}

func TestNotifierDefaultTitle(t *testing.T) {
	n := NewNotifier("memorylane", nil)
	var message string
	n.notify = func(_, m string, _ any) error {
		message = m
		return nil
	}

	require.NoError(t, n.Toggled("abc"))
	assert.Equal(t, "abc", message)
}

type countingFeedback struct {
	toggles, skips int
	err            error
}

func (c *countingFeedback) Toggled(string) error {
	c.toggles++
	return c.err
}

func (c *countingFeedback) Skipped(int64) error {
	c.skips++
	return c.err
}

func TestMultiCallsEverySink(t *testing.T) {
	cause := errors.New("broken")
	first := &countingFeedback{err: cause}
	second := &countingFeedback{}
	m := Multi{first, second, Nop{}}

	assert.ErrorIs(t, m.Toggled("a"), cause)
	assert.ErrorIs(t, m.Skipped(1), cause)
	assert.Equal(t, 1, second.toggles)
	assert.Equal(t, 1, second.skips)

	assert.NoError(t, Multi{second}.Toggled("a"))
}
