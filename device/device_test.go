package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/renderer"
)

func nullConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.Backend = core.BackendNull
	cfg.Window.Width, cfg.Window.Height = 320, 240
	return cfg
}

func TestNullDevice(t *testing.T) {
	start := time.Unix(100, 0)
	now := start
	d, err := New(nullConfig(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer d.Destroy()

	assert.Nil(t, d.Window())
	assert.Equal(t, "null", d.Backend().Name())
	w, h := d.CanvasSize()
	assert.Equal(t, []int{320, 240}, []int{w, h})

	now = start.Add(20 * time.Millisecond)
	d.Update()
	assert.InDelta(t, 0.02, d.TimeDelta(), 1e-6)

	assert.False(t, d.ShouldClose())
	d.SwapBuffers()
	d.Close()
	assert.True(t, d.ShouldClose())
}

func TestNullDeviceDrivesRenderer(t *testing.T) {
	d, err := New(nullConfig())
	require.NoError(t, err)
	defer d.Destroy()

	r, err := renderer.New(d)
	require.NoError(t, err)
	r.BeginFrame()
	require.NoError(t, r.EndFrame())
}

func TestUnsupportedBackend(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Backend = core.BackendVulkan
	_, err := New(cfg)
	assert.ErrorIs(t, err, gpu.ErrUnsupportedBackend)

	cfg.Backend = "metal"
	_, err = New(cfg)
	assert.Error(t, err)
}
