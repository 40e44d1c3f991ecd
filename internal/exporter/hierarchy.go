// Package exporter 把层级树写回标准目录布局，并导出计算结果工作簿。
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

// SaveHierarchy 把层级树写回标准目录布局
//
// 与目录加载器互为逆操作：基准强度文件携带元数据列，年度覆盖文件只含
// 键列与资源列。对定义的表结构往返无损。
func SaveHierarchy(node *model.Node, outputDir string) error {
	dir := filepath.Join(outputDir, node.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
	}

	if len(node.Intensities) > 0 {
		if err := writeIntensities(filepath.Join(dir, "techs.csv"), node.Intensities, node.TechMeta); err != nil {
			return err
		}
	}
	for _, year := range model.SortedYears(node.IntensitiesYearly) {
		name := fmt.Sprintf("techs_%d.csv", year)
		if err := writeIntensities(filepath.Join(dir, name), node.IntensitiesYearly[year], nil); err != nil {
			return err
		}
	}

	if len(node.Indicators) > 0 {
		if err := writeIndicators(filepath.Join(dir, "indicators.csv"), node.Indicators); err != nil {
			return err
		}
	}
	for _, year := range model.SortedYears(node.IndicatorsYearly) {
		name := fmt.Sprintf("indicators_%d.csv", year)
		if err := writeIndicators(filepath.Join(dir, name), node.IndicatorsYearly[year]); err != nil {
			return err
		}
	}

	if node.IsLeaf() {
		return writeTargets(filepath.Join(dir, "targets.csv"), node.Targets())
	}
	children := node.Children()
	for _, name := range model.SortedStrings(children) {
		if err := SaveHierarchy(children[name], dir); err != nil {
			return err
		}
	}
	return nil
}

func writeIntensities(path string, intensities model.Intensities, meta model.TechMetaTable) error {
	resources := intensities.Resources()
	header := []string{"Category", "Specific"}
	if meta != nil {
		header = append(header, "Description", "Material Unit", "Production Unit")
	}
	header = append(header, resources...)

	records := [][]string{header}
	for _, tech := range model.SortedTechKeys(intensities) {
		row := []string{tech.Category, tech.Specific}
		if meta != nil {
			m := meta[tech]
			row = append(row, m.Description, m.MaterialUnit, m.ProductionUnit)
		}
		for _, res := range resources {
			row = append(row, formatCell(intensities[tech], res))
		}
		records = append(records, row)
	}
	return writeCSV(path, records)
}

func writeIndicators(path string, indicators model.Indicators) error {
	names := indicators.Names()
	header := append([]string{"Resource"}, names...)
	records := [][]string{header}
	for _, res := range model.SortedStrings(indicators) {
		row := []string{res}
		for _, name := range names {
			row = append(row, formatCell(indicators[res], name))
		}
		records = append(records, row)
	}
	return writeCSV(path, records)
}

func writeTargets(path string, targets model.Targets) error {
	years := targets.Years()
	header := []string{"Category", "Specific"}
	for _, year := range years {
		header = append(header, strconv.Itoa(year))
	}
	records := [][]string{header}
	for _, tech := range model.SortedTechKeys(targets) {
		row := []string{tech.Category, tech.Specific}
		for _, year := range years {
			if v, ok := targets[tech][year]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		records = append(records, row)
	}
	return writeCSV(path, records)
}

// formatCell 缺失单元格输出为空串（保持稀疏语义）
func formatCell(row map[string]float64, key string) string {
	v, ok := row[key]
	if !ok {
		return ""
	}
	return formatFloat(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
