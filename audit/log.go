// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package audit

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	// DefaultLogFile keeps a persistent copy of the run on the cache partition
	DefaultLogFile = "/cache/multiboot/rombak.log"
)

// LogFile can be overridden from the config before the first message
var LogFile = DefaultLogFile

func logFile() (*os.File, error) {
	_ = os.MkdirAll(filepath.Dir(LogFile), 0755)
	return os.OpenFile(LogFile, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
}

// output points the logger at the console plus the log file, returning a
// closer for the file handle
func output(console *os.File) func() {
	l, err := logFile()
	if err != nil {
		log.SetOutput(console)
		return func() {}
	}
	log.SetOutput(io.MultiWriter(console, l))
	return func() { l.Close() }
}

// Printf records a response
func Printf(message string, a ...interface{}) {
	closer := output(os.Stdout)
	defer closer()
	log.Printf(message, a...)
}

// Println records a response
func Println(v ...interface{}) {
	closer := output(os.Stdout)
	defer closer()
	log.Println(v...)
}

// Errorf records an error, mirrored to stderr instead of stdout
func Errorf(message string, a ...interface{}) {
	closer := output(os.Stderr)
	defer closer()
	log.Printf(message, a...)
}
