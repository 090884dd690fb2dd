// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package config

import (
	"fmt"
	"io/ioutil"

	"github.com/dustin/go-humanize"
	"github.com/multiboot-tools/rombak/audit"
	yaml "gopkg.in/yaml.v2"
)

// Config defines the configuration parameters
type Config struct {
	LogFile      string `yaml:"logfile"`
	BackupDir    string `yaml:"backupdir"`
	MountPoint   string `yaml:"mountpoint"`
	MultibootDir string `yaml:"multibootdir"`
	ImageSizeMiB uint64 `yaml:"image-size"`
	Partitions   struct {
		System string `yaml:"system"`
		Cache  string `yaml:"cache"`
		Data   string `yaml:"data"`
		Aboot  string `yaml:"aboot"`
	} `yaml:"partitions"`
}

const (
	defaultBackupDir    = "/data/media/0/MultiBoot/backups"
	defaultMountPoint   = "/mb_mnt"
	defaultMultibootDir = "/data/media/0/MultiBoot"
	defaultImageSizeMiB = 4096
	defaultSystemMount  = "/raw/system"
	defaultCacheMount   = "/raw/cache"
	defaultDataMount    = "/raw/data"
	defaultAbootDevice  = "/dev/block/platform/msm_sdcc.1/by-name/aboot"
)

// Store the stored configuration from the file
var Store Config

// Read parses the yaml config file
func Read(path string) error {
	Store = Config{}

	dat, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading config parameters: %v\n", err)
		return err
	}

	err = yaml.Unmarshal(dat, &Store)
	if err != nil {
		fmt.Printf("Error parsing config parameters: %v\n", err)
		return err
	}

	// Default the missing parameters
	setDefaults()

	return nil
}

// Init loads the config file when one is given, or just the defaults
func Init(path string) error {
	if len(path) == 0 {
		Store = Config{}
		setDefaults()
		return nil
	}
	return Read(path)
}

// ImageSizeBytes is the size used when a cache/data image must be recreated
func (c Config) ImageSizeBytes() uint64 {
	return c.ImageSizeMiB * 1024 * 1024
}

func setDefaults() {
	if len(Store.LogFile) == 0 {
		Store.LogFile = audit.LogFile
	} else {
		audit.LogFile = Store.LogFile
	}

	if len(Store.BackupDir) == 0 {
		Store.BackupDir = defaultBackupDir
	}
	if len(Store.MountPoint) == 0 {
		Store.MountPoint = defaultMountPoint
	}
	if len(Store.MultibootDir) == 0 {
		Store.MultibootDir = defaultMultibootDir
	}
	if Store.ImageSizeMiB == 0 {
		audit.Printf("Default the image size to `%s`\n", humanize.IBytes(defaultImageSizeMiB*1024*1024))
		Store.ImageSizeMiB = defaultImageSizeMiB
	}
	if len(Store.Partitions.System) == 0 {
		Store.Partitions.System = defaultSystemMount
	}
	if len(Store.Partitions.Cache) == 0 {
		Store.Partitions.Cache = defaultCacheMount
	}
	if len(Store.Partitions.Data) == 0 {
		Store.Partitions.Data = defaultDataMount
	}
	if len(Store.Partitions.Aboot) == 0 {
		Store.Partitions.Aboot = defaultAbootDevice
	}
}
