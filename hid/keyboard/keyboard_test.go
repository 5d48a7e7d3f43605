package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyghost/keyghost/hid/keyboard"
)

func TestResolveDeterministic(t *testing.T) {
	for c := range keyboard.CharToKey {
		first, err1 := keyboard.Resolve(rune(c))
		second, err2 := keyboard.Resolve(rune(c))
		assert.NoError(t, err1, "char %q", c)
		assert.NoError(t, err2, "char %q", c)
		assert.Equal(t, first, second, "char %q", c)
		assert.NotZero(t, first.Key, "char %q", c)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		in   rune
		want keyboard.KeyEvent
	}{
		{"lowercase letter", 'a', keyboard.KeyEvent{Key: keyboard.KeyA}},
		{"uppercase letter needs shift", 'A', keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.KeyA}},
		{"digit", '7', keyboard.KeyEvent{Key: keyboard.Key7}},
		{"shifted digit symbol", '!', keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.Key1}},
		{"at sign", '@', keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.Key2}},
		{"dollar", '$', keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.Key4}},
		{"unshifted symbol", '-', keyboard.KeyEvent{Key: keyboard.KeyMinus}},
		{"shifted symbol", '_', keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.KeyMinus}},
		{"space", ' ', keyboard.KeyEvent{Key: keyboard.KeySpace}},
		{"newline is enter", '\n', keyboard.KeyEvent{Key: keyboard.KeyEnter}},
		{"tab", '\t', keyboard.KeyEvent{Key: keyboard.KeyTab}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := keyboard.Resolve(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveUnmappable(t *testing.T) {
	for _, c := range []rune{'☃', 'é', '€', 0x00, 0x07, rune(0x1F600)} {
		assert.NotPanics(t, func() {
			_, err := keyboard.Resolve(c)
			assert.ErrorIs(t, err, keyboard.ErrUnmappable, "char %q", c)
		})
	}
}

func TestResolveName(t *testing.T) {
	ev, err := keyboard.ResolveName("enter")
	assert.NoError(t, err)
	assert.Equal(t, keyboard.KeyEvent{Key: keyboard.KeyEnter}, ev)

	// Case-insensitive, separators ignored
	ev, err = keyboard.ResolveName("Page_Up")
	assert.NoError(t, err)
	assert.Equal(t, keyboard.KeyEvent{Key: keyboard.KeyPageUp}, ev)

	ev, err = keyboard.ResolveName("F12")
	assert.NoError(t, err)
	assert.Equal(t, keyboard.KeyEvent{Key: keyboard.KeyF12}, ev)

	_, err = keyboard.ResolveName("hyperspace")
	assert.ErrorIs(t, err, keyboard.ErrUnmappable)
}

func TestParseChord(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want keyboard.KeyEvent
	}{
		{"named key", "enter", keyboard.KeyEvent{Key: keyboard.KeyEnter}},
		{"modifier plus char", "ctrl+c", keyboard.KeyEvent{Modifiers: keyboard.ModLeftCtrl, Key: keyboard.KeyC}},
		{"three finger salute", "ctrl+alt+delete", keyboard.KeyEvent{Modifiers: keyboard.ModLeftCtrl | keyboard.ModLeftAlt, Key: keyboard.KeyDelete}},
		{"shift plus function key", "shift+f5", keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.KeyF5}},
		{"gui alias", "win+d", keyboard.KeyEvent{Modifiers: keyboard.ModLeftGUI, Key: keyboard.KeyD}},
		{"modifier only", "ctrl", keyboard.KeyEvent{Modifiers: keyboard.ModLeftCtrl}},
		{"right hand modifier", "rightalt+tab", keyboard.KeyEvent{Modifiers: keyboard.ModRightAlt, Key: keyboard.KeyTab}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := keyboard.ParseChord(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "a+b", "ctrl+", "ctrl+snowman", "☃"} {
		_, err := keyboard.ParseChord(bad)
		assert.ErrorIs(t, err, keyboard.ErrUnmappable, "chord %q", bad)
	}
}

func TestReportLayout(t *testing.T) {
	ev := keyboard.KeyEvent{Modifiers: keyboard.ModLeftShift, Key: keyboard.KeyA}
	r := ev.Report()

	assert.Len(t, r, keyboard.ReportSize)
	assert.Equal(t, byte(keyboard.ModLeftShift), r[0])
	assert.Equal(t, byte(0), r[1], "reserved byte must stay zero")
	assert.Equal(t, byte(keyboard.KeyA), r[2])
	for i := 3; i < keyboard.ReportSize; i++ {
		assert.Equal(t, byte(0), r[i], "unused key slot %d", i)
	}
}

func TestReportRoundTrip(t *testing.T) {
	for c := range keyboard.CharToKey {
		ev, err := keyboard.Resolve(rune(c))
		assert.NoError(t, err)
		assert.Equal(t, ev, keyboard.DecodeReport(ev.Report()), "char %q", c)
	}
}

func TestRestReportIdempotent(t *testing.T) {
	a, b := keyboard.RestReport(), keyboard.RestReport()
	assert.Equal(t, a, b)
	assert.Equal(t, keyboard.Report{}, a)
	assert.Equal(t, keyboard.KeyEvent{}, keyboard.DecodeReport(a))
}
