package metrics

import "fmt"

// Category tags a snapshot with the metric family it belongs to. The
// string value doubles as the field-key prefix ("cpu_usage_percentage").
type Category string

const (
	CategoryCPU    Category = "cpu"
	CategoryMemory Category = "mem"
	CategoryDisk   Category = "disk"
)

// Snapshot is one point-in-time reading of a single category. Field
// resolves an unprefixed field name to its numeric value; integer fields
// are lifted to float64 so threshold comparison is uniform.
type Snapshot interface {
	Category() Category
	Field(name string) (float64, bool)
	String() string
}

type CPUMetrics struct {
	UsagePercentage float64    `json:"usage_percentage"`
	LoadAverage     [3]float64 `json:"load_average"`
}

func NewCPUMetrics(usage float64, loadAverage [3]float64) CPUMetrics {
	return CPUMetrics{UsagePercentage: usage, LoadAverage: loadAverage}
}

func (CPUMetrics) Category() Category { return CategoryCPU }

func (m CPUMetrics) Field(name string) (float64, bool) {
	switch name {
	case "usage_percentage":
		return m.UsagePercentage, true
	case "load_average_1m":
		return m.LoadAverage[0], true
	case "load_average_5m":
		return m.LoadAverage[1], true
	case "load_average_15m":
		return m.LoadAverage[2], true
	}
	return 0, false
}

func (m CPUMetrics) String() string {
	return fmt.Sprintf("cpu usage %.2f%%, load average %.2f/%.2f/%.2f",
		m.UsagePercentage, m.LoadAverage[0], m.LoadAverage[1], m.LoadAverage[2])
}

// MemoryMetrics holds RAM and swap readings in MiB. The percentage fields
// are derived on construction and never read back from storage as-is.
type MemoryMetrics struct {
	Total               uint32  `json:"total"`
	Free                uint32  `json:"free"`
	Used                uint32  `json:"used"`
	UsagePercentage     float64 `json:"usage_percentage"`
	SwapTotal           uint32  `json:"swap_total"`
	SwapFree            uint32  `json:"swap_free"`
	SwapUsed            uint32  `json:"swap_used"`
	SwapUsagePercentage float64 `json:"swap_usage_percentage"`
}

func NewMemoryMetrics(total, used, swapTotal, swapUsed uint32) MemoryMetrics {
	m := MemoryMetrics{Total: total, Used: used, SwapTotal: swapTotal, SwapUsed: swapUsed}
	if used <= total {
		m.Free = total - used
	}
	if swapUsed <= swapTotal {
		m.SwapFree = swapTotal - swapUsed
	}
	m.UsagePercentage = pct(used, total)
	m.SwapUsagePercentage = pct(swapUsed, swapTotal)
	return m
}

func (MemoryMetrics) Category() Category { return CategoryMemory }

func (m MemoryMetrics) Field(name string) (float64, bool) {
	switch name {
	case "total":
		return float64(m.Total), true
	case "free":
		return float64(m.Free), true
	case "used":
		return float64(m.Used), true
	case "usage_percentage":
		return m.UsagePercentage, true
	case "swap_total":
		return float64(m.SwapTotal), true
	case "swap_free":
		return float64(m.SwapFree), true
	case "swap_used":
		return float64(m.SwapUsed), true
	case "swap_usage_percentage":
		return m.SwapUsagePercentage, true
	}
	return 0, false
}

func (m MemoryMetrics) String() string {
	return fmt.Sprintf("memory %d/%d MiB used (%.1f%%), swap %d/%d MiB used (%.1f%%)",
		m.Used, m.Total, m.UsagePercentage, m.SwapUsed, m.SwapTotal, m.SwapUsagePercentage)
}

type DiskMetrics struct {
	Total           uint32  `json:"total"`
	Used            uint32  `json:"used"`
	Free            uint32  `json:"free"`
	UsagePercentage float64 `json:"usage_percentage"`
}

// NewDiskMetrics derives used space from total and free, floored at zero
// so a filesystem reporting free > total cannot underflow.
func NewDiskMetrics(total, free uint32) DiskMetrics {
	var used uint32
	if free <= total {
		used = total - free
	}
	return DiskMetrics{Total: total, Used: used, Free: free, UsagePercentage: pct(used, total)}
}

func (DiskMetrics) Category() Category { return CategoryDisk }

func (m DiskMetrics) Field(name string) (float64, bool) {
	switch name {
	case "total":
		return float64(m.Total), true
	case "used":
		return float64(m.Used), true
	case "free":
		return float64(m.Free), true
	case "usage_percentage":
		return m.UsagePercentage, true
	}
	return 0, false
}

func (m DiskMetrics) String() string {
	return fmt.Sprintf("disk %d/%d MiB used (%.1f%%)", m.Used, m.Total, m.UsagePercentage)
}

func pct(used, total uint32) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}
