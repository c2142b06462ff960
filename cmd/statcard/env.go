package main

import (
	"io"
	"os"
	"time"

	statcard "github.com/alnah/go-statcard"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the exporter pool factory.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool func(size int, opts ...statcard.Option) Pool
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		NewPool: newExporterPool,
	}
}
