package model

import "fmt"

// IssueKind 校验问题类型
type IssueKind string

const (
	// StructuralError 结构错误：节点同时（或都不）具有 targets 与 children
	StructuralError IssueKind = "structural_error"
	// OverrideViolation 年度覆盖文件引入了基准表中不存在的键
	OverrideViolation IssueKind = "override_violation"
	// VocabularyMismatch 强度表与指标表的资源集合不一致
	VocabularyMismatch IssueKind = "vocabulary_mismatch"
	// UnitInconsistency 同一技术大类存在多个不同的物料/产量单位
	UnitInconsistency IssueKind = "unit_inconsistency"
	// MissingBaseline 插值时缺少基准年数据
	MissingBaseline IssueKind = "missing_baseline"
	// EmptyTargetYears 叶子的目标表没有任何年份列
	EmptyTargetYears IssueKind = "empty_target_years"
)

// Issue 结构化校验问题，关联层级路径
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Path    string    `json:"path"`
	Message string    `json:"message"`
}

// Error 实现 error 接口
func (i Issue) Error() string {
	if i.Path == "" {
		return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Kind, i.Path, i.Message)
}

// NewIssue 创建校验问题
func NewIssue(kind IssueKind, path, format string, args ...any) Issue {
	return Issue{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// IssueCollector 校验问题收集器
// 替代全局日志告警：解析过程中产生的软问题显式收集，随结果一起返回
type IssueCollector struct {
	issues []Issue
}

// Add 记录一个问题
func (c *IssueCollector) Add(issue Issue) {
	c.issues = append(c.issues, issue)
}

// Issues 返回收集到的全部问题
func (c *IssueCollector) Issues() []Issue {
	return c.issues
}

// Len 问题数量
func (c *IssueCollector) Len() int {
	return len(c.issues)
}
