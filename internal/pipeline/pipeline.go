// Package pipeline 串联叠加解析、年份插值与计算引擎，
// 将层级树一次性批量处理为可查询的结果索引。
package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/dreamingspires/mat-dp-pipeline/internal/calculator"
	"github.com/dreamingspires/mat-dp-pipeline/internal/interpolator"
	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/resolver"
)

// Options 运行选项
type Options struct {
	// FailureMode 叶子校验/插值失败的处置方式
	FailureMode resolver.FailureMode
	// Workers 叶子级并行度；<= 0 时取 GOMAXPROCS
	Workers int
}

// Run 执行完整流水线
//
// 叶子之间相互独立：解析得到的每个叶子的数据包已深拷贝，插值与计算按
// 叶子并行执行，最后统一合并进结果索引（collect-then-merge，无并发写入）。
func Run(root *model.Node, opts Options) (*ResultIndex, error) {
	resolved, err := resolver.Flatten(root, opts.FailureMode)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(resolved.Leaves) {
		workers = len(resolved.Leaves)
	}
	if workers < 1 {
		workers = 1
	}

	type leafResult struct {
		index   int
		outputs []*model.LabelledOutput
		err     error
	}

	jobs := make(chan int)
	results := make(chan leafResult, len(resolved.Leaves))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				leaf := resolved.Leaves[i]
				outputs, err := processLeaf(leaf)
				results <- leafResult{index: i, outputs: outputs, err: err}
			}
		}()
	}
	go func() {
		for i := range resolved.Leaves {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	perLeaf := make([][]*model.LabelledOutput, len(resolved.Leaves))
	collector := &model.IssueCollector{}
	for _, issue := range resolved.Issues {
		collector.Add(issue)
	}
	for r := range results {
		if r.err != nil {
			issue, ok := r.err.(model.Issue)
			if !ok {
				issue = model.NewIssue(model.StructuralError, resolved.Leaves[r.index].Path, "%v", r.err)
			}
			if opts.FailureMode == resolver.AbortOnInvalidLeaf {
				return nil, issue
			}
			collector.Add(issue)
			continue
		}
		perLeaf[r.index] = r.outputs
	}

	// 按叶子解析顺序合并，保证两次运行产出一致
	var outputs []*model.LabelledOutput
	techMeta := model.TechMetaTable{}
	for i, leafOutputs := range perLeaf {
		outputs = append(outputs, leafOutputs...)
		for tech, meta := range resolved.Leaves[i].Bundle.TechMeta {
			techMeta[tech] = meta
		}
	}
	sort.SliceStable(outputs, func(i, j int) bool {
		if outputs[i].Path != outputs[j].Path {
			return outputs[i].Path < outputs[j].Path
		}
		return outputs[i].Year < outputs[j].Year
	})

	return NewResultIndex(outputs, techMeta, collector.Issues())
}

// processLeaf 单个叶子：插值成逐年输入，再逐年计算
func processLeaf(leaf resolver.ResolvedLeaf) ([]*model.LabelledOutput, error) {
	yearInputs, err := interpolator.ToProcessable(leaf.Path, leaf.Bundle)
	if err != nil {
		return nil, err
	}
	outputs := make([]*model.LabelledOutput, 0, len(yearInputs))
	for _, yi := range yearInputs {
		processed := calculator.Calculate(yi.Input)
		outputs = append(outputs, &model.LabelledOutput{
			ProcessedOutput: *processed,
			Year:            yi.Year,
			Path:            leaf.Path,
		})
	}
	return outputs, nil
}

// Describe 运行摘要（日志用）
func Describe(index *ResultIndex) string {
	return fmt.Sprintf("%d 个结果, %d 个叶子, %d 个年份, %d 个指标",
		index.Len(), len(index.Paths()), len(index.Years()), len(index.Indicators()))
}
