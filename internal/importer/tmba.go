package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// 默认的 TMBA 参数名 -> 技术大类映射
var defaultParameterToCategory = map[string]string{
	"Power Generation (Aggregate)":          "Power plant",
	"Power Generation Capacity (Aggregate)": "Power plant",
}

// 默认的 TMBA 变量名 -> 强度表 Specific 名称映射；空串表示丢弃该变量
var defaultVariableToSpecific = map[string]string{
	"Biomass with ccs": "Biomass + CCS",
	"Coal with ccs":    "Coal + CCS",
	"Gas with ccs":     "Gas + CCS",
	"Hydro":            "Hydro (medium)",
	"Wind":             "Offshore wind",
	"power_trade":      "",
}

// TMBATargetsSource 从 TMBA 结果 CSV 生成目标文件
//
// 输入为扁平表：country, parameter, variable, scenario 与年份列。
// 按 (country, parameter) 分组，每组落在 <国家路径>/<parameter>/targets.csv
type TMBATargetsSource struct {
	CSVPath string
	// Parameters 需要保留的 parameter 值
	Parameters []string
	// ParameterToCategory 参数名映射为技术大类；nil 时使用默认映射
	ParameterToCategory map[string]string
	// VariableToSpecific 变量名映射为 Specific；映射为空串的变量被丢弃
	VariableToSpecific map[string]string
	// LocationMapping 国家名映射为层级相对路径
	LocationMapping map[string]string
}

// Write 生成标准布局的目标文件
func (s TMBATargetsSource) Write(outputDir string) error {
	f, err := os.Open(s.CSVPath)
	if err != nil {
		return fmt.Errorf("打开 TMBA 文件失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("读取 TMBA 文件失败: %w", err)
	}
	if len(records) < 2 {
		return fmt.Errorf("TMBA 文件没有数据行")
	}

	header := records[0]
	colCountry, colParameter, colVariable := -1, -1, -1
	var yearCols []int
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		switch name {
		case "country":
			colCountry = i
		case "parameter":
			colParameter = i
		case "variable":
			colVariable = i
		case "scenario", "":
			// 丢弃
		default:
			if isYearColumn(name) {
				yearCols = append(yearCols, i)
			}
		}
	}
	if colCountry < 0 || colParameter < 0 || colVariable < 0 {
		return fmt.Errorf("TMBA 文件缺少 country/parameter/variable 列")
	}
	if len(yearCols) == 0 {
		return fmt.Errorf("TMBA 文件没有年份列")
	}

	keep := map[string]struct{}{}
	for _, p := range s.Parameters {
		keep[p] = struct{}{}
	}
	paramToCategory := s.ParameterToCategory
	if paramToCategory == nil {
		paramToCategory = defaultParameterToCategory
	}
	varToSpecific := s.VariableToSpecific
	if varToSpecific == nil {
		varToSpecific = defaultVariableToSpecific
	}

	type groupKey struct{ country, parameter string }
	groups := map[groupKey][][]string{}
	for _, row := range records[1:] {
		parameter := cell(row, colParameter)
		if _, ok := keep[parameter]; !ok {
			continue
		}
		variable := cell(row, colVariable)
		if specific, ok := varToSpecific[variable]; ok {
			if specific == "" {
				continue
			}
			variable = specific
		}
		category, ok := paramToCategory[parameter]
		if !ok {
			category = parameter
		}

		out := []string{category, variable}
		complete := true
		for _, i := range yearCols {
			v := cell(row, i)
			if v == "" {
				complete = false
				break
			}
			out = append(out, v)
		}
		if !complete {
			continue
		}
		key := groupKey{country: cell(row, colCountry), parameter: parameter}
		groups[key] = append(groups[key], out)
	}

	outHeader := []string{"Category", "Specific"}
	for _, i := range yearCols {
		outHeader = append(outHeader, strings.TrimSpace(header[i]))
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].parameter < keys[j].parameter
	})

	for _, key := range keys {
		dir := filepath.Join(outputDir,
			locationToPath(key.country, s.LocationMapping), key.parameter)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		records := append([][]string{outHeader}, groups[key]...)
		if err := writeCSV(filepath.Join(dir, "targets.csv"), records); err != nil {
			return err
		}
	}
	return nil
}

func isYearColumn(name string) bool {
	if len(name) != 4 {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
