package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTable([]string{"SENSOR"}, nil))
}

func TestRenderTable(t *testing.T) {
	out := ansi.Strip(RenderTable(
		[]string{"SENSOR", "DESCRIPTION"},
		[][]string{
			{"cpu/usage", "CPU usage"},
			{"thermal/zone0", "x86_pkg_temp"},
		},
	))

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "SENSOR")
	assert.Contains(t, lines[0], "DESCRIPTION")
	assert.Contains(t, out, "cpu/usage")
	assert.Contains(t, out, "thermal/zone0")
	assert.Contains(t, out, "x86_pkg_temp")
}

func TestRenderTable_CapsWideColumns(t *testing.T) {
	long := strings.Repeat("x", maxColumnWidth+20)
	out := ansi.Strip(RenderTable([]string{"D"}, [][]string{{long}}))
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "…")
}
