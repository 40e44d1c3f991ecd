package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/pipeline"
)

// ExportWorkbook 把一次运行的结果导出为 xlsx 工作簿
//
// 第一个 sheet 为所需资源量，之后每个指标一个 sheet，最后是技术元数据。
// 行按 (路径, 年份, 技术) 升序排列，列为资源，保证可复现
func ExportWorkbook(index *pipeline.ResultIndex, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	resources := collectResources(index)

	if err := writeResourceSheet(f, "Required Resources", index, resources,
		func(output *model.LabelledOutput) model.ResourceTable {
			return output.RequiredResources
		}); err != nil {
		return err
	}
	for _, indicator := range index.Indicators() {
		indicator := indicator
		if err := writeResourceSheet(f, sheetName(indicator), index, resources,
			func(output *model.LabelledOutput) model.ResourceTable {
				table, _ := output.EmissionsForIndicator(indicator)
				return table
			}); err != nil {
			return err
		}
	}
	if err := writeTechMetaSheet(f, index.TechMeta()); err != nil {
		return err
	}

	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存工作簿 %s 失败: %w", path, err)
	}
	return nil
}

func writeResourceSheet(f *excelize.File, name string, index *pipeline.ResultIndex,
	resources []string, pick func(*model.LabelledOutput) model.ResourceTable) error {

	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	header := []any{"Path", "Year", "Category", "Specific"}
	for _, res := range resources {
		header = append(header, res)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	rowNo := 2
	for _, output := range index.Outputs() {
		table := pick(output)
		if table == nil {
			continue
		}
		for _, tech := range model.SortedTechKeys(table) {
			row := []any{output.Path, output.Year, tech.Category, tech.Specific}
			for _, res := range resources {
				if v, ok := table[tech][res]; ok {
					row = append(row, v)
				} else {
					row = append(row, "")
				}
			}
			cellAddr, err := excelize.CoordinatesToCellName(1, rowNo)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cellAddr, &row); err != nil {
				return err
			}
			rowNo++
		}
	}
	return nil
}

func writeTechMetaSheet(f *excelize.File, meta model.TechMetaTable) error {
	const name = "Tech Metadata"
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	header := []any{"Category", "Specific", "Description", "Material Unit", "Production Unit"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, tech := range model.SortedTechKeys(meta) {
		m := meta[tech]
		row := []any{tech.Category, tech.Specific, m.Description, m.MaterialUnit, m.ProductionUnit}
		cellAddr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cellAddr, &row); err != nil {
			return err
		}
	}
	return nil
}

// collectResources 收集全部输出中出现过的资源列并排序
func collectResources(index *pipeline.ResultIndex) []string {
	seen := map[string]struct{}{}
	for _, output := range index.Outputs() {
		for _, row := range output.RequiredResources {
			for res := range row {
				seen[res] = struct{}{}
			}
		}
	}
	return model.SortedStrings(seen)
}

// sheetName 指标名裁剪为合法的 sheet 名（xlsx 上限 31 字符）
func sheetName(indicator string) string {
	if len(indicator) <= 31 {
		return indicator
	}
	return indicator[:31]
}
