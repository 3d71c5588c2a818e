// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Abstraction for strings that implementors will likely wish to change.
package strs

//Abstraction for strings that implementors will likely wish to change.
type Stringer interface {
	//Prefix used for env vars.
	EnvPrefix() string
	//Mount point of the cache volume.
	CacheRoot() string
	//Dir on the cache volume holding recovery state files.
	RecoveryDir() string
	//File the main system writes a command line to, one arg per line.
	CommandFile() string
	//Flag file recording completion of an unattended update.
	FlagFile() string
	//One-shot intent file, passed back to the main system.
	IntentFile() string
	//Durable log, appended to on every checkpoint.
	LogFile() string
	//Snapshot of the working log from the most recent run.
	LastLogFile() string
	//Snapshot of the most recent install result.
	LastInstallFile() string
	//Cached locale from the most recent run.
	LocaleFile() string
	//Working log; lives on volatile storage.
	WorkingLog() string
	//Working copy of the install result; lives on volatile storage.
	TmpInstallFile() string
	//Mount point for removable media.
	USBRoot() string
	//Mount point of internal shared storage.
	InternalRoot() string
	//Tag file on removable media that triggers an unattended update.
	AutoUpdateTag() string
	//Package installed when AutoUpdateTag is present.
	AutoUpdatePackage() string
	//Name of the user data partition.
	DataPartName() string
	//Name of the backup partition cloned onto user data during a wipe.
	BackupPartName() string
	//Device holding the control record shared with the boot loader.
	BCBDevice() string
	//Dir containing block device nodes.
	BlockDir() string
	//Dir containing by-name partition links.
	ByNameDir() string
	//Historical root tag rewritten to the cache mount point.
	LegacyRootTag() string
	//Tool exec'd for factory/sd-boot mode.
	SDTool() string
	//Tool that applies update packages.
	Updater() string
	//Tool that writes raw firmware images.
	ImageWriter() string
	//Prefix for log file names.
	LogPfx() string
	//Volume table, one volume per line.
	RecoveryFstab() string
}

var stringImpl Stringer

//Override defaults.
func SetStringer(b Stringer) {
	stringImpl = b
}

//Prefix used for env vars.
func EnvPrefix() string {
	if stringImpl != nil {
		return stringImpl.EnvPrefix()
	}
	return "RECOVERY_"
}

//Mount point of the cache volume.
func CacheRoot() string {
	if stringImpl != nil {
		return stringImpl.CacheRoot()
	}
	return "/cache"
}

//Dir on the cache volume holding recovery state files.
func RecoveryDir() string {
	if stringImpl != nil {
		return stringImpl.RecoveryDir()
	}
	return "/cache/recovery"
}

//File the main system writes a command line to, one arg per line.
func CommandFile() string {
	if stringImpl != nil {
		return stringImpl.CommandFile()
	}
	return "/cache/recovery/command"
}

//Flag file recording completion of an unattended update.
func FlagFile() string {
	if stringImpl != nil {
		return stringImpl.FlagFile()
	}
	return "/cache/recovery/last_flag"
}

//One-shot intent file, passed back to the main system.
func IntentFile() string {
	if stringImpl != nil {
		return stringImpl.IntentFile()
	}
	return "/cache/recovery/intent"
}

//Durable log, appended to on every checkpoint.
func LogFile() string {
	if stringImpl != nil {
		return stringImpl.LogFile()
	}
	return "/cache/recovery/log"
}

//Snapshot of the working log from the most recent run.
func LastLogFile() string {
	if stringImpl != nil {
		return stringImpl.LastLogFile()
	}
	return "/cache/recovery/last_log"
}

//Snapshot of the most recent install result.
func LastInstallFile() string {
	if stringImpl != nil {
		return stringImpl.LastInstallFile()
	}
	return "/cache/recovery/last_install"
}

//Cached locale from the most recent run.
func LocaleFile() string {
	if stringImpl != nil {
		return stringImpl.LocaleFile()
	}
	return "/cache/recovery/last_locale"
}

//Working log; lives on volatile storage.
func WorkingLog() string {
	if stringImpl != nil {
		return stringImpl.WorkingLog()
	}
	return "/tmp/recovery.log"
}

//Working copy of the install result; lives on volatile storage.
func TmpInstallFile() string {
	if stringImpl != nil {
		return stringImpl.TmpInstallFile()
	}
	return "/tmp/last_install"
}

//Mount point for removable media.
func USBRoot() string {
	if stringImpl != nil {
		return stringImpl.USBRoot()
	}
	return "/mnt/usb_storage"
}

//Mount point of internal shared storage.
func InternalRoot() string {
	if stringImpl != nil {
		return stringImpl.InternalRoot()
	}
	return "/mnt/internal_sd"
}

//Tag file on removable media that triggers an unattended update.
func AutoUpdateTag() string {
	if stringImpl != nil {
		return stringImpl.AutoUpdateTag()
	}
	return "/FirmwareUpdate/auto_sd_update.tag"
}

//Package installed when AutoUpdateTag is present.
func AutoUpdatePackage() string {
	if stringImpl != nil {
		return stringImpl.AutoUpdatePackage()
	}
	return "/FirmwareUpdate/update.img"
}

//Name of the user data partition.
func DataPartName() string {
	if stringImpl != nil {
		return stringImpl.DataPartName()
	}
	return "userdata"
}

//Name of the backup partition cloned onto user data during a wipe.
func BackupPartName() string {
	if stringImpl != nil {
		return stringImpl.BackupPartName()
	}
	return "databk"
}

//Device holding the control record shared with the boot loader.
func BCBDevice() string {
	if stringImpl != nil {
		return stringImpl.BCBDevice()
	}
	return "/dev/block/by-name/misc"
}

//Dir containing block device nodes.
func BlockDir() string {
	if stringImpl != nil {
		return stringImpl.BlockDir()
	}
	return "/dev/block"
}

//Dir containing by-name partition links.
func ByNameDir() string {
	if stringImpl != nil {
		return stringImpl.ByNameDir()
	}
	return "/dev/block/by-name"
}

//Historical root tag rewritten to the cache mount point.
func LegacyRootTag() string {
	if stringImpl != nil {
		return stringImpl.LegacyRootTag()
	}
	return "CACHE:"
}

//Tool exec'd for factory/sd-boot mode.
func SDTool() string {
	if stringImpl != nil {
		return stringImpl.SDTool()
	}
	return "/sbin/sdtool"
}

//Tool that applies update packages.
func Updater() string {
	if stringImpl != nil {
		return stringImpl.Updater()
	}
	return "/sbin/updater"
}

//Tool that writes raw firmware images.
func ImageWriter() string {
	if stringImpl != nil {
		return stringImpl.ImageWriter()
	}
	return "/sbin/rkflash"
}

//Prefix for log file names.
func LogPfx() string {
	if stringImpl != nil {
		return stringImpl.LogPfx()
	}
	return "recovery_"
}

//Volume table, one volume per line.
func RecoveryFstab() string {
	if stringImpl != nil {
		return stringImpl.RecoveryFstab()
	}
	return "/etc/recovery.fstab"
}
