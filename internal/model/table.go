package model

// Intensities 强度表：技术 -> 资源 -> 每单位产量的资源消耗
// 行内缺失的资源键表示该单元格无数据（稀疏语义，由插值阶段补齐）
type Intensities map[TechKey]map[string]float64

// Copy 深拷贝
func (in Intensities) Copy() Intensities {
	out := make(Intensities, len(in))
	for tech, row := range in {
		r := make(map[string]float64, len(row))
		for res, v := range row {
			r[res] = v
		}
		out[tech] = r
	}
	return out
}

// Resources 返回所有行出现过的资源列集合（排序）
func (in Intensities) Resources() []string {
	set := map[string]struct{}{}
	for _, row := range in {
		for res := range row {
			set[res] = struct{}{}
		}
	}
	return SortedStrings(set)
}

// Indicators 指标表：资源 -> 指标 -> 每单位资源的影响系数
type Indicators map[string]map[string]float64

// Copy 深拷贝
func (in Indicators) Copy() Indicators {
	out := make(Indicators, len(in))
	for res, row := range in {
		r := make(map[string]float64, len(row))
		for name, v := range row {
			r[name] = v
		}
		out[res] = r
	}
	return out
}

// Names 返回指标列名集合（排序）
func (in Indicators) Names() []string {
	set := map[string]struct{}{}
	for _, row := range in {
		for name := range row {
			set[name] = struct{}{}
		}
	}
	return SortedStrings(set)
}

// Targets 目标表：技术 -> 年份 -> 产量目标
type Targets map[TechKey]map[int]float64

// Copy 深拷贝
func (t Targets) Copy() Targets {
	out := make(Targets, len(t))
	for tech, row := range t {
		r := make(map[int]float64, len(row))
		for year, v := range row {
			r[year] = v
		}
		out[tech] = r
	}
	return out
}

// Years 返回所有目标年份（排序，跨技术求并集）
func (t Targets) Years() []int {
	set := map[int]struct{}{}
	for _, row := range t {
		for year := range row {
			set[year] = struct{}{}
		}
	}
	return SortedYears(set)
}
