package collector

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"hostwatch/internal/metrics"
)

// Sampler reads instantaneous values from the operating system.
type Sampler interface {
	CPUUsage(ctx context.Context) (float64, error)
	Memory(ctx context.Context) (metrics.MemoryMetrics, error)
	Disk(ctx context.Context) (metrics.DiskMetrics, error)
}

const mib = 1024 * 1024

type hostSampler struct {
	prevCPU *cpu.TimesStat
}

func NewHostSampler() Sampler { return &hostSampler{} }

// CPUUsage computes busy percentage from the delta of cumulative CPU
// times since the previous call. The first call has no baseline and
// reports 0.
func (h *hostSampler) CPUUsage(ctx context.Context) (float64, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(times) == 0 {
		return 0, errors.New("no cpu times reported")
	}
	cur := times[0]
	var usage float64
	if prev := h.prevCPU; prev != nil {
		dBusy := (cur.User - prev.User) + (cur.System - prev.System) +
			(cur.Nice - prev.Nice) + (cur.Irq - prev.Irq) +
			(cur.Softirq - prev.Softirq) + (cur.Steal - prev.Steal)
		dTotal := dBusy + (cur.Idle - prev.Idle) + (cur.Iowait - prev.Iowait)
		if dTotal > 0 {
			usage = dBusy / dTotal * 100
		}
	}
	h.prevCPU = &cur
	return usage, nil
}

func (h *hostSampler) Memory(ctx context.Context) (metrics.MemoryMetrics, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return metrics.MemoryMetrics{}, err
	}
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return metrics.MemoryMetrics{}, err
	}
	return metrics.NewMemoryMetrics(
		uint32(vm.Total/mib), uint32(vm.Used/mib),
		uint32(sw.Total/mib), uint32(sw.Used/mib)), nil
}

// Disk reads the first partition the OS enumerates. Which disk that is on
// a multi-disk host is not configurable.
func (h *hostSampler) Disk(ctx context.Context) (metrics.DiskMetrics, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return metrics.DiskMetrics{}, err
	}
	if len(parts) == 0 {
		return metrics.DiskMetrics{}, errors.New("no disks found")
	}
	usage, err := disk.UsageWithContext(ctx, parts[0].Mountpoint)
	if err != nil {
		return metrics.DiskMetrics{}, err
	}
	return metrics.NewDiskMetrics(uint32(usage.Total/mib), uint32(usage.Free/mib)), nil
}
