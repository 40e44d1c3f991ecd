// Package resolver 实现层级叠加解析：深度优先遍历层级树，
// 在每个叶子上产出一份合并了全部祖先贡献的稀疏年份数据包。
package resolver

import (
	"path"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

// FailureMode 叶子校验失败的处置方式
// 不提供“静默继续”模式：未通过校验的叶子要么中止整次运行，要么被排除并记录
type FailureMode int

const (
	// AbortOnInvalidLeaf 任一叶子校验失败即中止整次解析
	AbortOnInvalidLeaf FailureMode = iota
	// SkipInvalidLeaf 排除失败的叶子，问题记录在结果中
	SkipInvalidLeaf
)

// ResolvedLeaf 单个叶子的解析结果
type ResolvedLeaf struct {
	Path   string
	Bundle *model.SparseYearsBundle
}

// Result 解析结果：叶子序列 + 收集到的软问题
type Result struct {
	Leaves []ResolvedLeaf
	Issues []model.Issue
}

// Flatten 将层级树展平为叶子序列
//
// 自根向下累积：每个节点先深拷贝继承的数据包，再叠加自身的基准表与年度表
// （同 (年份, 键) 下节点自身的行覆盖继承的行），最后在叶子上附加目标表并校验。
// 子节点按名称排序遍历，保证两次解析产出完全一致的序列。
func Flatten(root *model.Node, mode FailureMode) (*Result, error) {
	result := &Result{}
	collector := &model.IssueCollector{}
	initial := model.NewSparseYearsBundle()
	if err := dfs(root, initial, root.Name, mode, result, collector); err != nil {
		return nil, err
	}
	result.Issues = collector.Issues()
	return result, nil
}

func dfs(node *model.Node, inherited *model.SparseYearsBundle, label string,
	mode FailureMode, result *Result, collector *model.IssueCollector) error {

	// 每层的指标列集合必须一致，否则不同层级的数据不可合并
	nodeNames := nodeIndicatorNames(node)
	if len(nodeNames) > 0 && len(inherited.IndicatorNames) > 0 &&
		!equalStrings(nodeNames, inherited.IndicatorNames) {
		return model.NewIssue(model.VocabularyMismatch, label,
			"各层级的指标列必须一致: 本层 %v, 继承 %v", nodeNames, inherited.IndicatorNames)
	}

	bundle := inherited.Copy()
	overlayIntensities(bundle, node)
	overlayIndicators(bundle, node)
	for tech, meta := range node.TechMeta {
		bundle.TechMeta[tech] = meta
	}
	if len(bundle.IndicatorNames) == 0 {
		bundle.IndicatorNames = nodeNames
	}

	if !node.IsLeaf() {
		children := node.Children()
		for _, name := range model.SortedStrings(children) {
			if err := dfs(children[name], bundle, path.Join(label, name), mode, result, collector); err != nil {
				return err
			}
		}
		return nil
	}

	// 叶子：附加目标表，元数据收窄到目标技术，随后整体校验
	bundle.Targets = node.Targets().Copy()
	narrowed := model.TechMetaTable{}
	for tech := range bundle.Targets {
		if meta, ok := bundle.TechMeta[tech]; ok {
			narrowed[tech] = meta
		}
	}
	bundle.TechMeta = narrowed

	mismatched, err := bundle.Validate(label)
	if err != nil {
		issue, ok := err.(model.Issue)
		if !ok {
			issue = model.NewIssue(model.StructuralError, label, "%v", err)
		}
		if mode == AbortOnInvalidLeaf {
			return issue
		}
		collector.Add(issue)
		return nil
	}
	if len(mismatched) > 0 {
		collector.Add(model.NewIssue(model.VocabularyMismatch, label,
			"强度表与指标表的资源集合不一致，已收窄到交集: %v", mismatched))
	}

	result.Leaves = append(result.Leaves, ResolvedLeaf{Path: label, Bundle: bundle})
	return nil
}

// overlayIntensities 按年份升序叠加节点自身的强度表（基准表视为年份 0）
func overlayIntensities(bundle *model.SparseYearsBundle, node *model.Node) {
	overlayOne := func(year int, table model.Intensities) {
		if len(table) == 0 {
			return
		}
		dst, ok := bundle.Intensities[year]
		if !ok {
			dst = model.Intensities{}
			bundle.Intensities[year] = dst
		}
		for tech, row := range table {
			r := make(map[string]float64, len(row))
			for res, v := range row {
				r[res] = v
			}
			dst[tech] = r
		}
	}
	overlayOne(model.BaselineYear, node.Intensities)
	for _, year := range model.SortedYears(node.IntensitiesYearly) {
		overlayOne(year, node.IntensitiesYearly[year])
	}
}

// overlayIndicators 同 overlayIntensities，作用于指标表
func overlayIndicators(bundle *model.SparseYearsBundle, node *model.Node) {
	overlayOne := func(year int, table model.Indicators) {
		if len(table) == 0 {
			return
		}
		dst, ok := bundle.Indicators[year]
		if !ok {
			dst = model.Indicators{}
			bundle.Indicators[year] = dst
		}
		for res, row := range table {
			r := make(map[string]float64, len(row))
			for name, v := range row {
				r[name] = v
			}
			dst[res] = r
		}
	}
	overlayOne(model.BaselineYear, node.Indicators)
	for _, year := range model.SortedYears(node.IndicatorsYearly) {
		overlayOne(year, node.IndicatorsYearly[year])
	}
}

// nodeIndicatorNames 节点自身（基准 + 年度）指标列集合
func nodeIndicatorNames(node *model.Node) []string {
	set := map[string]struct{}{}
	for _, row := range node.Indicators {
		for name := range row {
			set[name] = struct{}{}
		}
	}
	for _, table := range node.IndicatorsYearly {
		for _, row := range table {
			for name := range row {
				set[name] = struct{}{}
			}
		}
	}
	return model.SortedStrings(set)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
