// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package execute

// Command defines the execution options for the application
type Command struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg"`

	Backup  BackupCommand  `command:"backup" description:"Back up a ROM to a named bundle"`
	Restore RestoreCommand `command:"restore" description:"Restore a named bundle onto a ROM"`
}

// Execution is the implementation of the execution options
var Execution Command
