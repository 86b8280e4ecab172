package main

import (
	"io"
	"os"
	"time"

	url2pdf "github.com/alnah/go-url2pdf"
)

// LauncherFactory builds the browser launcher for a run.
type LauncherFactory func(bin string, noSandbox bool) url2pdf.Launcher

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the browser backend.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	NewLauncher LauncherFactory
}

// DefaultEnv returns the production environment backed by go-rod.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		NewLauncher: rodLauncher,
	}
}

// rodLauncher starts from the environment defaults and applies explicit
// settings on top.
func rodLauncher(bin string, noSandbox bool) url2pdf.Launcher {
	l := url2pdf.DefaultRodLauncher()
	if bin != "" {
		l.Bin = bin
		l.NoSandbox = true
	}
	if noSandbox {
		l.NoSandbox = true
	}
	return l
}
