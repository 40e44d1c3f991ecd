// Package interpolator 将叶子的稀疏年份数据包展开为逐目标年份的稠密计算输入。
package interpolator

import (
	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

// YearInput 某一目标年份的计算输入
type YearInput struct {
	Year  int
	Input *model.ProcessableInput
}

// ToProcessable 展开一个叶子的稀疏年份数据包
//
// 基准年（年份 0）映射为首个目标年份；该年份已有显式数据时显式值优先。
// 之后对每条 (技术, 资源) / (资源, 指标) 序列沿年份轴做线性插值：
// 已知样本之间线性插值，末个已知样本之后沿用末值，首个已知样本之前无定义
// （被请求到即失败）。
func ToProcessable(path string, bundle *model.SparseYearsBundle) ([]YearInput, error) {
	targetYears := bundle.Targets.Years()
	if len(targetYears) == 0 {
		return nil, model.NewIssue(model.EmptyTargetYears, path, "目标表没有任何年份列")
	}
	if _, ok := bundle.Intensities[model.BaselineYear]; !ok {
		return nil, model.NewIssue(model.MissingBaseline, path, "缺少基准强度数据")
	}
	if _, ok := bundle.Indicators[model.BaselineYear]; !ok {
		return nil, model.NewIssue(model.MissingBaseline, path, "缺少基准指标数据")
	}

	firstYear := targetYears[0]
	denseIntensities, err := interpolateIntensities(path, bundle, targetYears, firstYear)
	if err != nil {
		return nil, err
	}
	denseIndicators, err := interpolateIndicators(path, bundle, targetYears, firstYear)
	if err != nil {
		return nil, err
	}

	inputs := make([]YearInput, 0, len(targetYears))
	for _, year := range targetYears {
		targets := make(map[model.TechKey]float64, len(bundle.Targets))
		for tech, row := range bundle.Targets {
			if v, ok := row[year]; ok {
				targets[tech] = v
			}
		}
		inputs = append(inputs, YearInput{
			Year: year,
			Input: &model.ProcessableInput{
				Intensities: denseIntensities[year],
				Targets:     targets,
				Indicators:  denseIndicators[year],
			},
		})
	}
	return inputs, nil
}

// interpolateIntensities 构建 (目标年份 × 目标技术) 的稠密强度表
func interpolateIntensities(path string, bundle *model.SparseYearsBundle,
	targetYears []int, firstYear int) (map[int]model.Intensities, error) {

	techs := model.SortedTechKeys(bundle.Targets)

	// 资源列集合：校验后强度表各年份共享同一词汇表
	resourceSet := map[string]struct{}{}
	for _, table := range bundle.Intensities {
		for _, row := range table {
			for res := range row {
				resourceSet[res] = struct{}{}
			}
		}
	}
	resources := model.SortedStrings(resourceSet)

	dense := make(map[int]model.Intensities, len(targetYears))
	for _, year := range targetYears {
		table := make(model.Intensities, len(techs))
		for _, tech := range techs {
			table[tech] = make(map[string]float64, len(resources))
		}
		dense[year] = table
	}

	for _, tech := range techs {
		for _, res := range resources {
			samples := collectSeries(bundle.Intensities, firstYear, func(table model.Intensities) (float64, bool) {
				row, ok := table[tech]
				if !ok {
					return 0, false
				}
				v, ok := row[res]
				return v, ok
			})
			for _, year := range targetYears {
				v, err := valueAt(samples, year)
				if err != nil {
					return nil, model.NewIssue(model.MissingBaseline, path,
						"技术 %s 的资源 %s 在 %d 年无可用数据: %v", tech, res, year, err)
				}
				dense[year][tech][res] = v
			}
		}
	}
	return dense, nil
}

// interpolateIndicators 构建 (目标年份 × 资源) 的稠密指标表
func interpolateIndicators(path string, bundle *model.SparseYearsBundle,
	targetYears []int, firstYear int) (map[int]model.Indicators, error) {

	resourceSet := map[string]struct{}{}
	for _, table := range bundle.Indicators {
		for res := range table {
			resourceSet[res] = struct{}{}
		}
	}
	resources := model.SortedStrings(resourceSet)
	indicatorNames := bundle.IndicatorNames

	dense := make(map[int]model.Indicators, len(targetYears))
	for _, year := range targetYears {
		table := make(model.Indicators, len(resources))
		for _, res := range resources {
			table[res] = make(map[string]float64, len(indicatorNames))
		}
		dense[year] = table
	}

	for _, res := range resources {
		for _, name := range indicatorNames {
			samples := collectSeries(bundle.Indicators, firstYear, func(table model.Indicators) (float64, bool) {
				row, ok := table[res]
				if !ok {
					return 0, false
				}
				v, ok := row[name]
				return v, ok
			})
			for _, year := range targetYears {
				v, err := valueAt(samples, year)
				if err != nil {
					return nil, model.NewIssue(model.MissingBaseline, path,
						"资源 %s 的指标 %s 在 %d 年无可用数据: %v", res, name, year, err)
				}
				dense[year][res][name] = v
			}
		}
	}
	return dense, nil
}
