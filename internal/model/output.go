package model

// ResourceTable 技术 -> 资源 -> 值
type ResourceTable map[TechKey]map[string]float64

// Copy 深拷贝
func (t ResourceTable) Copy() ResourceTable {
	out := make(ResourceTable, len(t))
	for tech, row := range t {
		r := make(map[string]float64, len(row))
		for res, v := range row {
			r[res] = v
		}
		out[tech] = r
	}
	return out
}

// ProcessedOutput 单一年份的计算结果，计算完成后不可变
type ProcessedOutput struct {
	// RequiredResources 所需资源量：技术 -> 资源 -> 值
	RequiredResources ResourceTable
	// Emissions 排放张量：指标 -> 技术 -> 资源 -> 值
	Emissions map[string]ResourceTable
}

// IndicatorNames 结果中的指标名集合（排序）
func (o *ProcessedOutput) IndicatorNames() []string {
	return SortedStrings(o.Emissions)
}

// EmissionsForIndicator 取单个指标的排放表
func (o *ProcessedOutput) EmissionsForIndicator(indicator string) (ResourceTable, bool) {
	table, ok := o.Emissions[indicator]
	return table, ok
}

// LabelledOutput 带年份与层级路径标签的计算结果
type LabelledOutput struct {
	ProcessedOutput
	Year int
	Path string
}
