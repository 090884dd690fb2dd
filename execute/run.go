// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package execute

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/multiboot-tools/rombak/audit"
	"github.com/multiboot-tools/rombak/backup"
	"github.com/multiboot-tools/rombak/config"
	"github.com/multiboot-tools/rombak/roms"
)

const nameTimeFormat = "2006.01.02-15.04.05"

// BackupCommand defines the execution options for a backup
type BackupCommand struct {
	RomID     string `short:"r" long:"romid" description:"ROM ID to back up" required:"true"`
	Targets   string `short:"t" long:"targets" description:"Comma-separated list of targets to back up" default:"all"`
	Name      string `short:"n" long:"name" description:"Name of backup (default: YYYY.MM.DD-HH.MM.SS)"`
	BackupDir string `short:"d" long:"backupdir" description:"Directory to store backups"`
	Force     bool   `short:"f" long:"force" description:"Allow overwriting an old backup with the same name"`
}

// Execute the backup command
func (cmd BackupCommand) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if err := config.Init(Execution.ConfigPath); err != nil {
		return err
	}

	targets := backup.ParseTargets(cmd.Targets)
	if targets == backup.TargetNone {
		return fmt.Errorf("invalid targets: %s", cmd.Targets)
	}

	name := cmd.Name
	if len(name) == 0 {
		name = time.Now().Format(nameTimeFormat)
	}
	if !backup.ValidName(name) {
		return fmt.Errorf("invalid backup name: %s", name)
	}

	if !backup.EnsurePartitionsMounted() {
		return errors.New("required partitions are not mounted")
	}

	rom, err := roms.FindByID(cmd.RomID)
	if err != nil {
		var ids []string
		for _, r := range roms.Installed() {
			ids = append(ids, r.ID)
		}
		if len(ids) > 0 {
			return fmt.Errorf("%v (installed ROMs: %s)", err, strings.Join(ids, ", "))
		}
		return err
	}

	outputDir := filepath.Join(backupDir(cmd.BackupDir), name)

	if !cmd.Force {
		if _, err := os.Stat(outputDir); err == nil {
			return fmt.Errorf("backup %q already exists. Choose another name or pass -f/--force to use this name anyway", name)
		}
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil && !os.IsExist(err) {
		return err
	}

	if !backup.BackupRom(rom, outputDir, targets) {
		audit.Println("=== Failed ===")
		return errors.New("backup failed")
	}
	audit.Println("=== Finished ===")
	return nil
}

// RestoreCommand defines the execution options for a restore
type RestoreCommand struct {
	RomID     string `short:"r" long:"romid" description:"ROM ID to restore to" required:"true"`
	Targets   string `short:"t" long:"targets" description:"Comma-separated list of targets to restore" default:"all"`
	Name      string `short:"n" long:"name" description:"Name of backup to restore" required:"true"`
	BackupDir string `short:"d" long:"backupdir" description:"Directory containing backups"`
}

// Execute the restore command
func (cmd RestoreCommand) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if err := config.Init(Execution.ConfigPath); err != nil {
		return err
	}

	targets := backup.ParseTargets(cmd.Targets)
	if targets == backup.TargetNone {
		return fmt.Errorf("invalid targets: %s", cmd.Targets)
	}

	if !backup.ValidName(cmd.Name) {
		return fmt.Errorf("invalid backup name: %s", cmd.Name)
	}

	if !backup.EnsurePartitionsMounted() {
		return errors.New("required partitions are not mounted")
	}

	// The target slot does not need to be installed yet
	rom, err := roms.Create(cmd.RomID)
	if err != nil {
		return err
	}

	inputDir := filepath.Join(backupDir(cmd.BackupDir), cmd.Name)
	if _, err := os.Stat(inputDir); err != nil {
		return fmt.Errorf("backup %q does not exist", cmd.Name)
	}

	if !backup.RestoreRom(rom, inputDir, targets) {
		audit.Println("=== Failed ===")
		return errors.New("restore failed")
	}
	audit.Println("=== Finished ===")
	return nil
}

func backupDir(override string) string {
	if len(override) > 0 {
		return override
	}
	return config.Store.BackupDir
}
