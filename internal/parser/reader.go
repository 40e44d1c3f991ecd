// Package parser 读取标准层级布局中的 CSV 数据文件。
//
// 每个目录下可出现：
//
//	techs.csv            基准强度表（含元数据列）
//	techs_<YYYY>.csv     年度强度覆盖表
//	indicators.csv       基准指标表
//	indicators_<YYYY>.csv 年度指标覆盖表
//	targets.csv          目标表（仅叶子目录）
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

// 强度文件的元数据列，读取时拆出到 TechMetaTable
var techMetaColumns = map[string]struct{}{
	"Description":     {},
	"Material Unit":   {},
	"Production Unit": {},
}

var (
	intensitiesPattern = regexp.MustCompile(`^techs(?:_(\d{4}))?\.csv$`)
	indicatorsPattern  = regexp.MustCompile(`^indicators(?:_(\d{4}))?\.csv$`)
	targetsPattern     = regexp.MustCompile(`^targets\.csv$`)
)

// MatchIntensitiesFile 识别强度文件名，返回年份（基准文件返回 BaselineYear）
func MatchIntensitiesFile(name string) (year int, ok bool) {
	return matchYearFile(intensitiesPattern, name)
}

// MatchIndicatorsFile 识别指标文件名
func MatchIndicatorsFile(name string) (year int, ok bool) {
	return matchYearFile(indicatorsPattern, name)
}

// MatchTargetsFile 识别目标文件名
func MatchTargetsFile(name string) bool {
	return targetsPattern.MatchString(name)
}

func matchYearFile(pattern *regexp.Regexp, name string) (int, bool) {
	m := pattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return model.BaselineYear, true
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ReadIntensities 读取强度表
// 前两列必须是 Category, Specific；元数据列可选；其余列为资源列
// 空单元格表示该 (技术, 资源) 无数据（稀疏语义）
func ReadIntensities(r io.Reader) (model.Intensities, model.TechMetaTable, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}
	if len(header) < 2 || header[0] != "Category" || header[1] != "Specific" {
		return nil, nil, fmt.Errorf("强度表前两列必须是 Category, Specific，实际为 %v", header)
	}

	metaIdx := map[string]int{}
	var resourceIdx []int
	for i := 2; i < len(header); i++ {
		if _, ok := techMetaColumns[header[i]]; ok {
			metaIdx[header[i]] = i
		} else {
			resourceIdx = append(resourceIdx, i)
		}
	}

	intensities := model.Intensities{}
	meta := model.TechMetaTable{}
	for lineNo, row := range rows {
		tech := model.TechKey{Category: row[0], Specific: row[1]}
		if tech.Category == "" || tech.Specific == "" {
			return nil, nil, fmt.Errorf("第 %d 行缺少 Category/Specific", lineNo+2)
		}
		values := make(map[string]float64, len(resourceIdx))
		for _, i := range resourceIdx {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("第 %d 行资源列 %s 的值 %q 不是数字", lineNo+2, header[i], cell)
			}
			values[header[i]] = v
		}
		intensities[tech] = values

		if len(metaIdx) > 0 {
			m := model.TechMeta{}
			if i, ok := metaIdx["Description"]; ok {
				m.Description = strings.TrimSpace(row[i])
			}
			if i, ok := metaIdx["Material Unit"]; ok {
				m.MaterialUnit = strings.TrimSpace(row[i])
			}
			if i, ok := metaIdx["Production Unit"]; ok {
				m.ProductionUnit = strings.TrimSpace(row[i])
			}
			meta[tech] = m
		}
	}
	return intensities, meta, nil
}

// ReadIndicators 读取指标表
// 首列必须是 Resource，其余列为指标列
func ReadIndicators(r io.Reader) (model.Indicators, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 || header[0] != "Resource" {
		return nil, fmt.Errorf("指标表首列必须是 Resource，实际为 %v", header)
	}

	indicators := model.Indicators{}
	for lineNo, row := range rows {
		res := row[0]
		if res == "" {
			return nil, fmt.Errorf("第 %d 行缺少 Resource", lineNo+2)
		}
		values := make(map[string]float64, len(header)-1)
		for i := 1; i < len(header); i++ {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行指标列 %s 的值 %q 不是数字", lineNo+2, header[i], cell)
			}
			values[header[i]] = v
		}
		indicators[res] = values
	}
	return indicators, nil
}

// ReadTargets 读取目标表
// 前两列必须是 Category, Specific，其余列为绝对年份
func ReadTargets(r io.Reader) (model.Targets, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 || header[0] != "Category" || header[1] != "Specific" {
		return nil, fmt.Errorf("目标表前两列必须是 Category, Specific，实际为 %v", header)
	}

	years := make([]int, len(header))
	for i := 2; i < len(header); i++ {
		year, err := strconv.Atoi(strings.TrimSpace(header[i]))
		if err != nil {
			return nil, fmt.Errorf("目标表的列 %q 不是年份", header[i])
		}
		years[i] = year
	}

	targets := model.Targets{}
	for lineNo, row := range rows {
		tech := model.TechKey{Category: row[0], Specific: row[1]}
		if tech.Category == "" || tech.Specific == "" {
			return nil, fmt.Errorf("第 %d 行缺少 Category/Specific", lineNo+2)
		}
		values := make(map[int]float64, len(header)-2)
		for i := 2; i < len(header); i++ {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行年份列 %d 的值 %q 不是数字", lineNo+2, years[i], cell)
			}
			values[years[i]] = v
		}
		targets[tech] = values
	}
	return targets, nil
}

// readTable 读取 CSV 表头与数据行，补齐短行
func readTable(r io.Reader) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("读取 CSV 失败: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV 文件为空")
	}
	header = make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	for _, record := range records[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
