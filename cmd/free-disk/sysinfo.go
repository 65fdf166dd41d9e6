package main

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"

	"github.com/tarasglek/free-disk/internal/datasize"
	"github.com/tarasglek/free-disk/internal/diskusage"
)

// Log system information
func logSystemInfo(log *logrus.Logger, probe diskusage.Probe, root string) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	log.WithFields(logrus.Fields{
		"version": versionString,
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
		"go":      runtime.Version(),
	}).Debug("free-disk starting")

	if hInfo, err := host.Info(); err == nil {
		log.WithFields(logrus.Fields{
			"hostname": hInfo.Hostname,
			"platform": hInfo.Platform,
			"kernel":   hInfo.KernelVersion,
		}).Debug("Host")
	}

	if usage, err := probe.Usage(root); err == nil {
		log.WithFields(logrus.Fields{
			"path":   root,
			"fstype": usage.Fstype,
			"total":  datasize.Format(int64(usage.Total)),
			"free":   usage.Free,
			"used":   usage.Used,
		}).Debug("Disk usage")
	}
}
