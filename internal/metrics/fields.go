package metrics

import "strings"

// Per-category field names, in catalog order. These lists are the single
// namespace alert rules address values through; a key outside them never
// resolves.
var (
	cpuFields = []string{
		"usage_percentage",
		"load_average_1m",
		"load_average_5m",
		"load_average_15m",
	}
	memFields = []string{
		"total",
		"free",
		"used",
		"usage_percentage",
		"swap_total",
		"swap_free",
		"swap_used",
		"swap_usage_percentage",
	}
	diskFields = []string{
		"total",
		"used",
		"free",
		"usage_percentage",
	}
)

var categories = []Category{CategoryCPU, CategoryMemory, CategoryDisk}

func fieldsOf(c Category) []string {
	switch c {
	case CategoryCPU:
		return cpuFields
	case CategoryMemory:
		return memFields
	case CategoryDisk:
		return diskFields
	}
	return nil
}

// FieldKeys enumerates every valid field key ("cpu_usage_percentage",
// "mem_swap_used", ...) across all categories, in catalog order.
func FieldKeys() []string {
	keys := make([]string, 0, len(cpuFields)+len(memFields)+len(diskFields))
	for _, c := range categories {
		for _, f := range fieldsOf(c) {
			keys = append(keys, string(c)+"_"+f)
		}
	}
	return keys
}

// ResolveKey splits a field key into its category and unprefixed field
// name. The field must round-trip through the category's enumerated list.
func ResolveKey(key string) (Category, string, bool) {
	for _, c := range categories {
		field, ok := strings.CutPrefix(key, string(c)+"_")
		if !ok {
			continue
		}
		for _, f := range fieldsOf(c) {
			if f == field {
				return c, field, true
			}
		}
		return "", "", false
	}
	return "", "", false
}

// Zero returns the empty snapshot for a category, used when a table has
// no rows yet.
func Zero(c Category) Snapshot {
	switch c {
	case CategoryCPU:
		return CPUMetrics{}
	case CategoryMemory:
		return MemoryMetrics{}
	case CategoryDisk:
		return DiskMetrics{}
	}
	return nil
}
