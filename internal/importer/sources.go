package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/parser"
)

// Source 外部数据源：把自身的数据物化为标准目录布局
type Source interface {
	// Write 在 outputDir 下生成标准布局文件
	Write(outputDir string) error
}

// CreateHierarchy 组合多个数据源构建层级树
//
// 各数据源先物化到临时目录，再统一走目录加载器，与直接从磁盘布局加载
// 的路径完全一致
func CreateHierarchy(intensities, indicators Source, targets ...Source) (*model.Node, []model.Issue, error) {
	tmpDir, err := os.MkdirTemp("", "matdp-sdf-*")
	if err != nil {
		return nil, nil, fmt.Errorf("创建临时目录失败: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for _, t := range targets {
		if err := t.Write(tmpDir); err != nil {
			return nil, nil, err
		}
	}
	if err := intensities.Write(tmpDir); err != nil {
		return nil, nil, err
	}
	if err := indicators.Write(tmpDir); err != nil {
		return nil, nil, err
	}
	return Load(tmpDir)
}

// StoredSource 已有布局的复制数据源
// kind 决定复制哪一类文件（强度/指标/目标）
type StoredSource struct {
	Dir  string
	Kind StoredKind
}

// StoredKind 复制的文件类别
type StoredKind int

const (
	// StoredIntensities 复制 techs*.csv
	StoredIntensities StoredKind = iota
	// StoredIndicators 复制 indicators*.csv
	StoredIndicators
	// StoredTargets 复制 targets.csv
	StoredTargets
)

// Write 复制匹配的文件到 outputDir，保持相对路径
func (s StoredSource) Write(outputDir string) error {
	return filepath.Walk(s.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !s.matches(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.Dir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outputDir, rel)
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("文件 %s 已存在", dst)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		return copyFile(path, dst)
	})
}

func (s StoredSource) matches(name string) bool {
	switch s.Kind {
	case StoredIntensities:
		_, ok := parser.MatchIntensitiesFile(name)
		return ok
	case StoredIndicators:
		_, ok := parser.MatchIndicatorsFile(name)
		return ok
	case StoredTargets:
		return parser.MatchTargetsFile(name)
	default:
		return false
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
