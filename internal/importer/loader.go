// Package importer 从标准目录布局或外部数据源构建层级树。
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/parser"
)

// Load 从目录布局加载层级树
//
// 带 targets.csv 的目录是叶子；带子目录的目录是内部节点；
// 两者皆无的目录被忽略并记录为警告。结构错误与覆盖违规是硬失败。
func Load(dir string) (*model.Node, []model.Issue, error) {
	collector := &model.IssueCollector{}
	node, err := loadDir(dir, collector)
	if err != nil {
		return nil, nil, err
	}
	if node == nil {
		return nil, nil, fmt.Errorf("目录 %s 中没有任何可用数据", dir)
	}
	return node, collector.Issues(), nil
}

func loadDir(dir string, collector *model.IssueCollector) (*model.Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取目录 %s 失败: %w", dir, err)
	}

	data := model.NodeData{
		Intensities:       model.Intensities{},
		IntensitiesYearly: map[int]model.Intensities{},
		Indicators:        model.Indicators{},
		IndicatorsYearly:  map[int]model.Indicators{},
		TechMeta:          model.TechMetaTable{},
	}
	var targets model.Targets
	metaByYear := map[int]model.TechMetaTable{}
	var subdirs []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			subdirs = append(subdirs, name)
			continue
		}
		path := filepath.Join(dir, name)
		switch {
		case isIntensitiesFile(name):
			year, _ := parser.MatchIntensitiesFile(name)
			intensities, meta, err := readIntensitiesFile(path)
			if err != nil {
				return nil, err
			}
			if year == model.BaselineYear {
				data.Intensities = intensities
			} else {
				data.IntensitiesYearly[year] = intensities
			}
			metaByYear[year] = meta
		case isIndicatorsFile(name):
			year, _ := parser.MatchIndicatorsFile(name)
			indicators, err := readIndicatorsFile(path)
			if err != nil {
				return nil, err
			}
			if year == model.BaselineYear {
				data.Indicators = indicators
			} else {
				data.IndicatorsYearly[year] = indicators
			}
		case parser.MatchTargetsFile(name):
			t, err := readTargetsFile(path)
			if err != nil {
				return nil, err
			}
			targets = t
		}
	}

	// 元数据合并：年度文件按年份升序，基准文件最后（基准优先）
	for _, year := range model.SortedYears(metaByYear) {
		if year == model.BaselineYear {
			continue
		}
		for tech, meta := range metaByYear[year] {
			data.TechMeta[tech] = meta
		}
	}
	for tech, meta := range metaByYear[model.BaselineYear] {
		data.TechMeta[tech] = meta
	}

	children := map[string]*model.Node{}
	for _, name := range subdirs {
		child, err := loadDir(filepath.Join(dir, name), collector)
		if err != nil {
			return nil, err
		}
		if child != nil {
			children[name] = child
		}
	}

	name := filepath.Base(dir)
	switch {
	case targets != nil && len(children) > 0:
		return nil, model.NewIssue(model.StructuralError, name,
			"目录同时包含 targets.csv 与子目录")
	case targets != nil:
		return model.NewLeafNode(name, data, targets)
	case len(children) > 0:
		return model.NewInternalNode(name, data, children)
	default:
		// 既无目标也无子目录的目录直接忽略
		collector.Add(model.NewIssue(model.StructuralError, name,
			"目录没有 targets.csv 也没有子目录，已忽略"))
		return nil, nil
	}
}

func isIntensitiesFile(name string) bool {
	_, ok := parser.MatchIntensitiesFile(name)
	return ok
}

func isIndicatorsFile(name string) bool {
	_, ok := parser.MatchIndicatorsFile(name)
	return ok
}

func readIntensitiesFile(path string) (model.Intensities, model.TechMetaTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("打开 %s 失败: %w", path, err)
	}
	defer f.Close()
	intensities, meta, err := parser.ReadIntensities(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return intensities, meta, nil
}

func readIndicatorsFile(path string) (model.Indicators, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 %s 失败: %w", path, err)
	}
	defer f.Close()
	indicators, err := parser.ReadIndicators(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return indicators, nil
}

func readTargetsFile(path string) (model.Targets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 %s 失败: %w", path, err)
	}
	defer f.Close()
	targets, err := parser.ReadTargets(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return targets, nil
}
