// Package kvtool invokes the external key-value client binary, one subprocess
// per operation.
package kvtool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Client shells out to the kv service tool:
//
//	<tool> --config <path> --cmd {set|get} --key K [--value V]
//
// The subprocess is killed when the operation context expires.
type Client struct {
	toolPath   string
	configPath string
	log        zerolog.Logger
}

// New creates a Client for the given tool and service config paths.
func New(toolPath, configPath string, log zerolog.Logger) *Client {
	return &Client{toolPath: toolPath, configPath: configPath, log: log}
}

// Set writes key=value through the tool.
func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.invoke(ctx, c.setArgs(key, value))
}

// Get reads key through the tool.
func (c *Client) Get(ctx context.Context, key string) error {
	return c.invoke(ctx, c.getArgs(key))
}

func (c *Client) setArgs(key, value string) []string {
	return []string{"--config", c.configPath, "--cmd", "set", "--key", key, "--value", value}
}

func (c *Client) getArgs(key string) []string {
	return []string{"--config", c.configPath, "--cmd", "get", "--key", key}
}

func (c *Client) invoke(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.toolPath, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.log.Warn().Strs("args", args).Msg("kv tool timed out, killed")
			return fmt.Errorf("kv tool timed out: %w", ctx.Err())
		}
		c.log.Warn().Err(err).Str("output", output).Strs("args", args).Msg("kv tool failed")
		return fmt.Errorf("kv tool: %w", err)
	}
	c.log.Debug().Str("output", output).Strs("args", args).Msg("kv tool done")
	return nil
}

// HealthPing reports whether the tool binary is present and executable.
func (c *Client) HealthPing(ctx context.Context) error {
	info, err := os.Stat(c.toolPath)
	if err != nil {
		return fmt.Errorf("kv tool not found at %s: %w", c.toolPath, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("kv tool at %s is not executable", c.toolPath)
	}
	return nil
}
