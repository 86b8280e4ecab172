package main

// Notes:
// - Usage printers: required content is present; exact formatting is not
//   checked.
// - runHelp: routing to the right topic, unknown topics go to stderr.

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Main usage output
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	output := buf.String()

	for _, s := range []string{"Usage: url2pdf", "Commands:", "serve", "render", "version", "help"} {
		if !strings.Contains(output, s) {
			t.Errorf("printUsage output should contain %q", s)
		}
	}
}

// ---------------------------------------------------------------------------
// TestCommandUsage - Per-command usage output
// ---------------------------------------------------------------------------

func TestCommandUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		print    func(*bytes.Buffer)
		required []string
	}{
		{
			name:  "serve",
			print: func(b *bytes.Buffer) { printServeUsage(b) },
			required: []string{
				"Usage: url2pdf serve",
				"POST /save-as-pdf", "GET  /activity-check", "GET  /clean-browsers", "GET  /healthcheck",
				"--addr", "--allow-domain", "--shutdown-timeout", "--warmup",
				"Browser Pool:", "--max-workers", "--max-pages",
			},
		},
		{
			name:  "render",
			print: func(b *bytes.Buffer) { printRenderUsage(b) },
			required: []string{
				"Usage: url2pdf render",
				"--output",
				"Page:", "--wait-until", "--no-cache-bust",
				"PDF:", "--format", "--pages",
				"Output Control:", "--log-format",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.print(&buf)
			for _, s := range tt.required {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("%s usage should contain %q", tt.name, s)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Topic routing
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args       []string
		wantStdout string
		wantStderr string
	}{
		{nil, "Commands:", ""},
		{[]string{"serve"}, "Usage: url2pdf serve", ""},
		{[]string{"render"}, "Usage: url2pdf render", ""},
		{[]string{"version"}, "Usage: url2pdf version", ""},
		{[]string{"help"}, "Usage: url2pdf help", ""},
		{[]string{"convert"}, "", "Unknown command: convert"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"help"}, tt.args...), " "), func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(&stubLauncher{})
			runHelp(tt.args, env)

			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
