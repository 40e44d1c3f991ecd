package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 材料数据库工作簿的固定 sheet 名
const (
	intensitiesSheet = "Material intensities"
	emissionsSheet   = "Material emissions"
)

// defaultLocationMapping 材料数据库的区域名 -> 层级相对路径
var defaultLocationMapping = map[string]string{
	"Africa":                       "Africa",
	"Europe":                       "Europe",
	"Middle East and Central Asia": "Asia",
	"South and East Asia":          "Asia",
	"Central and South America":    "America",
	"North America":                "America",
	"Oceania":                      "Oceania",
	"General":                      ".",
}

// locationToPath 位置名映射为层级相对路径，未知位置归入 Unknown/ 下
func locationToPath(location string, mapping map[string]string) string {
	if mapping == nil {
		mapping = defaultLocationMapping
	}
	if p, ok := mapping[location]; ok {
		return p
	}
	return filepath.Join("Unknown", location)
}

// MaterialsIntensitiesSource 从材料数据库工作簿生成强度文件
//
// 读取 "Material intensities" sheet（表头在第二行），按 Location 列分组，
// 每个位置目录下写出一份 techs.csv
type MaterialsIntensitiesSource struct {
	WorkbookPath string
	// LocationMapping 自定义位置映射；nil 时使用默认区域映射
	LocationMapping map[string]string
}

// 强度 sheet 中需要丢弃的列
var intensitiesDropColumns = map[string]struct{}{
	"Total":                                  {},
	"Comments":                               {},
	"Data collection responsible":            {},
	"Data collection date":                   {},
	"Vehicle/infrastructure primary purpose": {},
}

// 强度 sheet 的列名重命名
var intensitiesRenames = map[string]string{
	"Technology category":    "Category",
	"Technology name":        "Specific",
	"Technology description": "Description",
}

// Write 生成标准布局的强度文件
func (s MaterialsIntensitiesSource) Write(outputDir string) error {
	f, err := excelize.OpenFile(s.WorkbookPath)
	if err != nil {
		return fmt.Errorf("打开材料工作簿失败: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(intensitiesSheet)
	if err != nil {
		return fmt.Errorf("读取 sheet %q 失败: %w", intensitiesSheet, err)
	}
	if len(rows) < 3 {
		return fmt.Errorf("sheet %q 没有数据行", intensitiesSheet)
	}

	// 表头在第二行
	header := rows[1]
	colCategory, colSpecific, colDescription := -1, -1, -1
	colUnits, colLocation := -1, -1
	var resourceCols []int
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if renamed, ok := intensitiesRenames[name]; ok {
			name = renamed
		}
		switch name {
		case "Category":
			colCategory = i
		case "Specific":
			colSpecific = i
		case "Description":
			colDescription = i
		case "Units":
			colUnits = i
		case "Location":
			colLocation = i
		case "":
		default:
			if _, drop := intensitiesDropColumns[name]; !drop {
				resourceCols = append(resourceCols, i)
			}
		}
	}
	if colCategory < 0 || colSpecific < 0 || colUnits < 0 || colLocation < 0 {
		return fmt.Errorf("sheet %q 缺少必需列 (Technology category/name, Units, Location)", intensitiesSheet)
	}

	// 按位置分组
	byLocation := map[string][][]string{}
	for _, row := range rows[2:] {
		if cell(row, colCategory) == "" || cell(row, colSpecific) == "" {
			continue
		}
		location := cell(row, colLocation)
		byLocation[location] = append(byLocation[location], row)
	}

	outHeader := []string{"Category", "Specific", "Description", "Material Unit", "Production Unit"}
	for _, i := range resourceCols {
		outHeader = append(outHeader, strings.TrimSpace(header[i]))
	}

	locations := make([]string, 0, len(byLocation))
	for loc := range byLocation {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	for _, location := range locations {
		dir := filepath.Join(outputDir, locationToPath(location, s.LocationMapping))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		records := [][]string{outHeader}
		for _, row := range byLocation[location] {
			// Units 形如 "kg/MW"：左侧为物料单位，右侧为产量单位
			materialUnit, productionUnit := splitUnits(cell(row, colUnits))
			out := []string{
				cell(row, colCategory),
				cell(row, colSpecific),
				cell(row, colDescription),
				materialUnit,
				productionUnit,
			}
			for _, i := range resourceCols {
				out = append(out, cell(row, i))
			}
			records = append(records, out)
		}
		if err := writeCSV(filepath.Join(dir, "techs.csv"), records); err != nil {
			return err
		}
	}
	return nil
}

// MaterialsIndicatorsSource 从材料数据库工作簿生成指标文件
//
// 读取 "Material emissions" sheet，写出根目录下的 indicators.csv
type MaterialsIndicatorsSource struct {
	WorkbookPath string
}

// 排放 sheet 中需要丢弃的列
var emissionsDropColumns = map[string]struct{}{
	"Material description":      {},
	"Object title in Ecoinvent": {},
	"Location of dataset":       {},
	"Notes":                     {},
}

// Write 生成标准布局的指标文件
func (s MaterialsIndicatorsSource) Write(outputDir string) error {
	f, err := excelize.OpenFile(s.WorkbookPath)
	if err != nil {
		return fmt.Errorf("打开材料工作簿失败: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(emissionsSheet)
	if err != nil {
		return fmt.Errorf("读取 sheet %q 失败: %w", emissionsSheet, err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("sheet %q 没有数据行", emissionsSheet)
	}

	header := rows[0]
	colResource := -1
	var indicatorCols []int
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		switch {
		case name == "Material code":
			colResource = i
		case name == "":
		default:
			if _, drop := emissionsDropColumns[name]; !drop {
				indicatorCols = append(indicatorCols, i)
			}
		}
	}
	if colResource < 0 {
		return fmt.Errorf("sheet %q 缺少 Material code 列", emissionsSheet)
	}

	records := [][]string{}
	outHeader := []string{"Resource"}
	for _, i := range indicatorCols {
		outHeader = append(outHeader, strings.TrimSpace(header[i]))
	}
	records = append(records, outHeader)

	for _, row := range rows[1:] {
		if cell(row, colResource) == "" {
			continue
		}
		out := []string{cell(row, colResource)}
		complete := true
		for _, i := range indicatorCols {
			v := cell(row, i)
			if v == "" {
				complete = false
				break
			}
			out = append(out, v)
		}
		// 任一指标缺失的资源行整体丢弃
		if complete {
			records = append(records, out)
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	return writeCSV(filepath.Join(outputDir, "indicators.csv"), records)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitUnits(units string) (materialUnit, productionUnit string) {
	parts := strings.SplitN(units, "/", 2)
	materialUnit = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		productionUnit = strings.TrimSpace(parts[1])
	}
	return materialUnit, productionUnit
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
