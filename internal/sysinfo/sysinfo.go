// Package sysinfo describes the host as arch_ostype_majorver.
package sysinfo

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Describe returns e.g. x86_64_linux_6 or arm64_darwin_14; it falls back to GOARCH/GOOS when the host
// cannot be inspected.
func Describe(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil || info == nil {
		return runtime.GOARCH + "_" + runtime.GOOS
	}
	return Format(info.KernelArch, info.OS, info.PlatformVersion, info.KernelVersion)
}

// Format joins arch, os and the major component of the platform version (kernel version when empty).
func Format(arch, os, platformVersion, kernelVersion string) string {
	if arch == "" {
		arch = runtime.GOARCH
	}
	if os == "" {
		os = runtime.GOOS
	}
	version := platformVersion
	if version == "" {
		version = kernelVersion
	}
	ret := arch + "_" + os
	if major := majorVersion(version); major != "" {
		ret += "_" + major
	}
	return strings.ToLower(ret)
}

func majorVersion(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if idx := strings.IndexAny(version, ".-+ "); idx != -1 {
		version = version[:idx]
	}
	return version
}
