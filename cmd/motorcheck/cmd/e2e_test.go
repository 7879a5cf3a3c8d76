package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorconf-go/services/motor/platform"
)

const quadYAML = `protocol: DSHOT600
update_rate_hz: 8000
outputs:
  - pin: PB0
  - pin: PB1
  - pin: PA3
  - pin: PA2
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveE2E(t *testing.T) {
	quad := writeFile(t, "quad.yaml", quadYAML)
	badRemap := writeFile(t, "bad.yaml", quadYAML+"remap: [0, 1, 1, 3]\n")
	pwmDMA := writeFile(t, "pwm.json", `{"protocol":"PWM","dma":"ON","outputs":[{"pin":"PB0"}]}`)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "quad on f405",
			args:        []string{"resolve", "--config", quad},
			wantContain: []string{"board f405_ref: OK", "DSHOT600 @ 8000 Hz", "TIMER", "TIM3", "DMA1_ST7"},
		},
		{
			name:        "bitbang timer choice on h743",
			args:        []string{"resolve", "-b", "h743_ref", "-c", quad, "--tie-break", "first", "--log-level", "debug"},
			wantContain: []string{"board h743_ref: OK"},
		},
		{
			name:        "duplicate remap slot",
			args:        []string{"resolve", "--config", badRemap},
			wantErr:     true,
			wantContain: []string{"REJECTED (invalid_remap)", "invalid_remap(2)"},
		},
		{
			name:        "pwm with dma",
			args:        []string{"resolve", "--config", pwmDMA},
			wantErr:     true,
			wantContain: []string{"REJECTED (dma_unsupported)"},
		},
		{
			name:    "missing config flag",
			args:    []string{"resolve"},
			wantErr: true,
		},
		{
			name:    "unknown board",
			args:    []string{"resolve", "--board", "nope", "--config", quad},
			wantErr: true,
		},
		{
			name:    "bad tie-break",
			args:    []string{"resolve", "--config", quad, "--tie-break", "random"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestResolveJSON(t *testing.T) {
	quad := writeFile(t, "quad.yaml", quadYAML)
	out, err := run(t, "resolve", "--config", quad, "--json")
	require.NoError(t, err)

	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "ok", rep["state"])
	resolved := rep["resolved"].(map[string]any)
	assert.Equal(t, "DSHOT600", resolved["protocol"])
	assert.Equal(t, float64(4), resolved["count"])
	assert.Len(t, resolved["motors"], 4)
}

func TestResolveWithBoardFile(t *testing.T) {
	out, err := run(t, "boards", "f405_ref")
	require.NoError(t, err)

	b, err := platform.LoadBoard(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, platform.F405Ref.Name, b.Name)
	assert.Equal(t, platform.F405Ref.Pins, b.Pins)

	boardFile := writeFile(t, "board.yaml", out)
	quad := writeFile(t, "quad.yaml", quadYAML)
	out, err = run(t, "resolve", "--board-file", boardFile, "--config", quad)
	require.NoError(t, err)
	assert.Contains(t, out, "board f405_ref: OK")
}

func TestListings(t *testing.T) {
	out, err := run(t, "boards")
	require.NoError(t, err)
	assert.Contains(t, out, "f405_ref")
	assert.Contains(t, out, "h743_ref")

	out, err = run(t, "protocols")
	require.NoError(t, err)
	for _, p := range []string{"PWM", "BRUSHED", "DSHOT600", "PROSHOT1000"} {
		assert.Contains(t, out, p)
	}

	_, err = run(t, "boards", "nope")
	assert.Error(t, err)
}
