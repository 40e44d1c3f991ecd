package model

// BaselineYear 基准年份标记：未标年的基准表在合并后以年份 0 存放，
// 插值阶段再映射到首个目标年份
const BaselineYear = 0

// SparseYearsBundle 叶子解析后的稀疏年份数据包
//
// 由叠加解析器沿祖先路径合并而来。强度/指标只覆盖路径上显式提供过数据的
// 年份（含基准年 0），目标表为叶子自身的目标表。
type SparseYearsBundle struct {
	// Intensities 年份 -> 技术 -> 资源 -> 值
	Intensities map[int]Intensities
	// Indicators 年份 -> 资源 -> 指标 -> 值
	Indicators map[int]Indicators
	// Targets 叶子目标表（仅在叶子上填充）
	Targets Targets
	// TechMeta 合并后的技术元数据
	TechMeta TechMetaTable
	// IndicatorNames 指标列集合（由路径上首个非空指标表确定，逐层校验一致）
	IndicatorNames []string
}

// NewSparseYearsBundle 创建空数据包
func NewSparseYearsBundle() *SparseYearsBundle {
	return &SparseYearsBundle{
		Intensities: map[int]Intensities{},
		Indicators:  map[int]Indicators{},
		TechMeta:    TechMetaTable{},
	}
}

// Copy 深拷贝
// 遍历时父节点的数据包会被子节点继承，必须拷贝而非共享，避免兄弟子树互相污染
func (b *SparseYearsBundle) Copy() *SparseYearsBundle {
	out := NewSparseYearsBundle()
	for year, table := range b.Intensities {
		out.Intensities[year] = table.Copy()
	}
	for year, table := range b.Indicators {
		out.Indicators[year] = table.Copy()
	}
	if b.Targets != nil {
		out.Targets = b.Targets.Copy()
	}
	out.TechMeta = b.TechMeta.Copy()
	out.IndicatorNames = append([]string(nil), b.IndicatorNames...)
	return out
}

// IntensityTechs 强度表中出现过的全部技术（跨年份并集）
func (b *SparseYearsBundle) IntensityTechs() map[TechKey]struct{} {
	techs := map[TechKey]struct{}{}
	for _, table := range b.Intensities {
		for tech := range table {
			techs[tech] = struct{}{}
		}
	}
	return techs
}

// intensityResources 强度表中出现过的全部资源（跨年份并集）
func (b *SparseYearsBundle) intensityResources() map[string]struct{} {
	set := map[string]struct{}{}
	for _, table := range b.Intensities {
		for _, row := range table {
			for res := range row {
				set[res] = struct{}{}
			}
		}
	}
	return set
}

// indicatorResources 指标表中出现过的全部资源（跨年份并集）
func (b *SparseYearsBundle) indicatorResources() map[string]struct{} {
	set := map[string]struct{}{}
	for _, table := range b.Indicators {
		for res := range table {
			set[res] = struct{}{}
		}
	}
	return set
}

// Validate 叶子级校验，并收敛技术与资源集合：
//  1. 技术单位一致性（同一大类的物料/产量单位唯一）
//  2. 目标技术必须是强度技术的子集
//  3. 强度表的行收窄到目标技术
//  4. 强度与指标的资源集合取交集，返回不匹配的资源（软问题，由调用方决定处置）
func (b *SparseYearsBundle) Validate(path string) (mismatched []string, err error) {
	if err := ValidateTechUnits(b.TechMeta, path); err != nil {
		return nil, err
	}

	intensityTechs := b.IntensityTechs()
	for tech := range b.Targets {
		if _, ok := intensityTechs[tech]; !ok {
			return nil, NewIssue(StructuralError, path,
				"目标技术 %s 不在强度表的技术集合中", tech)
		}
	}

	// 收窄强度表到目标技术
	for year, table := range b.Intensities {
		narrowed := make(Intensities, len(b.Targets))
		for tech := range b.Targets {
			if row, ok := table[tech]; ok {
				narrowed[tech] = row
			}
		}
		b.Intensities[year] = narrowed
	}

	// 资源集合取交集，记录不匹配项
	intenRes := b.intensityResources()
	indiRes := b.indicatorResources()
	common := map[string]struct{}{}
	mismatchSet := map[string]struct{}{}
	for res := range intenRes {
		if _, ok := indiRes[res]; ok {
			common[res] = struct{}{}
		} else {
			mismatchSet[res] = struct{}{}
		}
	}
	for res := range indiRes {
		if _, ok := intenRes[res]; !ok {
			mismatchSet[res] = struct{}{}
		}
	}
	if len(mismatchSet) > 0 {
		for _, table := range b.Intensities {
			for _, row := range table {
				for res := range row {
					if _, ok := common[res]; !ok {
						delete(row, res)
					}
				}
			}
		}
		for _, table := range b.Indicators {
			for res := range table {
				if _, ok := common[res]; !ok {
					delete(table, res)
				}
			}
		}
	}
	return SortedStrings(mismatchSet), nil
}

// ValidateTechUnits 校验同一技术大类的物料/产量单位唯一
func ValidateTechUnits(meta TechMetaTable, path string) error {
	materialUnits := map[string]map[string]struct{}{}
	productionUnits := map[string]map[string]struct{}{}
	for tech, m := range meta {
		if materialUnits[tech.Category] == nil {
			materialUnits[tech.Category] = map[string]struct{}{}
			productionUnits[tech.Category] = map[string]struct{}{}
		}
		materialUnits[tech.Category][m.MaterialUnit] = struct{}{}
		productionUnits[tech.Category][m.ProductionUnit] = struct{}{}
	}
	for _, category := range SortedStrings(materialUnits) {
		if len(materialUnits[category]) > 1 {
			return NewIssue(UnitInconsistency, path,
				"技术大类 %s 存在多个不同的 Material Unit", category)
		}
		if len(productionUnits[category]) > 1 {
			return NewIssue(UnitInconsistency, path,
				"技术大类 %s 存在多个不同的 Production Unit", category)
		}
	}
	return nil
}
