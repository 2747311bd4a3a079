package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_QuitsOnCtrlC(t *testing.T) {
	server := stubServer(t)

	var out syncBuffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader("\x03"))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--api-url", server.URL + "/api", "tui", "NIFTY"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, cmd.ExecuteContext(ctx))
	require.NoError(t, ctx.Err(), "quit by key, not by timeout")

	view := out.String()
	assert.Contains(t, view, "MarketInsight Pro")
	assert.Contains(t, view, "NIFTY")
}

func TestTUICmd_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--api-url", "http://127.0.0.1:1/api", "tui"})

	assert.NoError(t, cmd.ExecuteContext(ctx))
}

func TestTUICmd_TooManyArgs(t *testing.T) {
	_, err := run(t, nil, "tui", "NIFTY", "SENSEX")
	assert.Error(t, err)
}
