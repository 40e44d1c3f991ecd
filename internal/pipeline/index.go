package pipeline

import (
	"fmt"
	"strings"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

// ResultIndex 全部 (叶子, 年份) 计算结果的只读索引
//
// 一次批量构建后不再变化；按年份与按路径两套查找表在构建时派生。
type ResultIndex struct {
	outputs    []*model.LabelledOutput
	byYear     map[int]map[string]*model.LabelledOutput
	byPath     map[string]map[int]*model.LabelledOutput
	indicators []string
	techMeta   model.TechMetaTable
	issues     []model.Issue
}

// NewResultIndex 构建结果索引
//
// 同一次运行中所有结果的指标集合必须一致（计算引擎保证，此处显式断言）
func NewResultIndex(outputs []*model.LabelledOutput, techMeta model.TechMetaTable,
	issues []model.Issue) (*ResultIndex, error) {

	index := &ResultIndex{
		outputs:  outputs,
		byYear:   map[int]map[string]*model.LabelledOutput{},
		byPath:   map[string]map[int]*model.LabelledOutput{},
		techMeta: techMeta,
		issues:   issues,
	}
	if len(outputs) > 0 {
		index.indicators = outputs[0].IndicatorNames()
	}
	for _, output := range outputs {
		names := output.IndicatorNames()
		if !equalStrings(names, index.indicators) {
			return nil, fmt.Errorf("结果的指标集合不一致: %s/%d 为 %v, 预期 %v",
				output.Path, output.Year, names, index.indicators)
		}
		if index.byYear[output.Year] == nil {
			index.byYear[output.Year] = map[string]*model.LabelledOutput{}
		}
		index.byYear[output.Year][output.Path] = output
		if index.byPath[output.Path] == nil {
			index.byPath[output.Path] = map[int]*model.LabelledOutput{}
		}
		index.byPath[output.Path][output.Year] = output
	}
	return index, nil
}

// Len 结果数量
func (x *ResultIndex) Len() int {
	return len(x.outputs)
}

// Outputs 全部结果（构建时的确定顺序）
func (x *ResultIndex) Outputs() []*model.LabelledOutput {
	return x.outputs
}

// Years 出现过的年份（排序）
func (x *ResultIndex) Years() []int {
	return model.SortedYears(x.byYear)
}

// Paths 出现过的叶子路径（排序）
func (x *ResultIndex) Paths() []string {
	return model.SortedStrings(x.byPath)
}

// ByYear 某一年份下各路径的结果
func (x *ResultIndex) ByYear(year int) map[string]*model.LabelledOutput {
	return x.byYear[year]
}

// ByPath 某一路径下各年份的结果
func (x *ResultIndex) ByPath(path string) map[int]*model.LabelledOutput {
	return x.byPath[path]
}

// Get 取单个 (路径, 年份) 结果
func (x *ResultIndex) Get(path string, year int) (*model.LabelledOutput, bool) {
	years, ok := x.byPath[path]
	if !ok {
		return nil, false
	}
	output, ok := years[year]
	return output, ok
}

// Indicators 本次运行的指标名集合（排序，全部结果一致）
func (x *ResultIndex) Indicators() []string {
	return x.indicators
}

// TechMeta 合并后的技术元数据表
func (x *ResultIndex) TechMeta() model.TechMetaTable {
	return x.techMeta
}

// Issues 运行期间收集到的校验问题（软失败，从不丢弃）
func (x *ResultIndex) Issues() []model.Issue {
	return x.issues
}

// Emissions 某路径某指标的逐年排放表
//
// path 为叶子路径时返回该叶子各年份的排放表；为内部路径时聚合（求和）
// 其下所有叶子的同 (年份, 技术, 资源) 值。重复调用结果相同。
func (x *ResultIndex) Emissions(path, indicator string) (map[int]model.ResourceTable, error) {
	leaves := x.leavesUnder(path)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("路径 %s 下没有任何结果", path)
	}
	result := map[int]model.ResourceTable{}
	for _, leafPath := range leaves {
		for year, output := range x.byPath[leafPath] {
			table, ok := output.EmissionsForIndicator(indicator)
			if !ok {
				return nil, fmt.Errorf("指标 %s 不存在", indicator)
			}
			accumulate(result, year, table)
		}
	}
	return result, nil
}

// Resources 某路径的逐年所需资源表，聚合规则与 Emissions 相同
func (x *ResultIndex) Resources(path string) (map[int]model.ResourceTable, error) {
	leaves := x.leavesUnder(path)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("路径 %s 下没有任何结果", path)
	}
	result := map[int]model.ResourceTable{}
	for _, leafPath := range leaves {
		for year, output := range x.byPath[leafPath] {
			accumulate(result, year, output.RequiredResources)
		}
	}
	return result, nil
}

// leavesUnder 路径本身（若为叶子）或其下全部叶子路径
func (x *ResultIndex) leavesUnder(path string) []string {
	if _, ok := x.byPath[path]; ok {
		return []string{path}
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	var leaves []string
	for _, leafPath := range x.Paths() {
		if strings.HasPrefix(leafPath, prefix) {
			leaves = append(leaves, leafPath)
		}
	}
	return leaves
}

// accumulate 把 table 累加进 result[year]
func accumulate(result map[int]model.ResourceTable, year int, table model.ResourceTable) {
	dst, ok := result[year]
	if !ok {
		dst = model.ResourceTable{}
		result[year] = dst
	}
	for tech, row := range table {
		out, ok := dst[tech]
		if !ok {
			out = make(map[string]float64, len(row))
			dst[tech] = out
		}
		for res, v := range row {
			out[res] += v
		}
	}
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
