// Package calculator 实现单一年份的资源量与排放计算。
package calculator

import (
	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

// Calculate 纯函数：单一年份的计算输入 -> 计算结果
//
//	required[tech, res] = intensities[tech, res] × targets[tech]
//	emissions[ind, tech, res] = required[tech, res] × indicators[res, ind]
//
// 逐元素精确相乘，无容差
func Calculate(input *model.ProcessableInput) *model.ProcessedOutput {
	required := make(model.ResourceTable, len(input.Targets))
	for tech, target := range input.Targets {
		row := input.Intensities[tech]
		out := make(map[string]float64, len(row))
		for res, intensity := range row {
			out[res] = intensity * target
		}
		required[tech] = out
	}

	emissions := map[string]model.ResourceTable{}
	for res, factors := range input.Indicators {
		for indicator, factor := range factors {
			table, ok := emissions[indicator]
			if !ok {
				table = make(model.ResourceTable, len(required))
				emissions[indicator] = table
			}
			for tech, row := range required {
				amount, ok := row[res]
				if !ok {
					continue
				}
				out, ok := table[tech]
				if !ok {
					out = make(map[string]float64, len(row))
					table[tech] = out
				}
				out[res] = amount * factor
			}
		}
	}

	return &model.ProcessedOutput{RequiredResources: required, Emissions: emissions}
}
