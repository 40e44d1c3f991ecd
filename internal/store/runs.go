package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/pipeline"
)

// RunSummary 一次运行的摘要
type RunSummary struct {
	RunID      string    `json:"runId"`
	CreatedAt  time.Time `json:"createdAt"`
	Source     string    `json:"source"`
	LeafCount  int       `json:"leafCount"`
	YearCount  int       `json:"yearCount"`
	Indicators []string  `json:"indicators"`
}

// SaveRun 持久化一次运行的完整结果，返回生成的运行 ID
func (s *Store) SaveRun(index *pipeline.ResultIndex, source string) (string, error) {
	runID := fmt.Sprintf("r_%s", uuid.New().String()[:8])

	indicatorsJSON, err := json.Marshal(index.Indicators())
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, source, leaf_count, year_count, indicators)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), source, len(index.Paths()), len(index.Years()), string(indicatorsJSON))
	if err != nil {
		return "", fmt.Errorf("写入运行记录失败: %w", err)
	}

	resStmt, err := tx.Prepare(
		`INSERT INTO required_resources (run_id, path, year, category, specific, resource, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer resStmt.Close()
	emiStmt, err := tx.Prepare(
		`INSERT INTO emissions (run_id, path, year, indicator, category, specific, resource, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer emiStmt.Close()

	for _, output := range index.Outputs() {
		for _, tech := range model.SortedTechKeys(output.RequiredResources) {
			row := output.RequiredResources[tech]
			for _, res := range model.SortedStrings(row) {
				if _, err := resStmt.Exec(runID, output.Path, output.Year,
					tech.Category, tech.Specific, res, row[res]); err != nil {
					return "", fmt.Errorf("写入所需资源量失败: %w", err)
				}
			}
		}
		for _, indicator := range output.IndicatorNames() {
			table := output.Emissions[indicator]
			for _, tech := range model.SortedTechKeys(table) {
				row := table[tech]
				for _, res := range model.SortedStrings(row) {
					if _, err := emiStmt.Exec(runID, output.Path, output.Year,
						indicator, tech.Category, tech.Specific, res, row[res]); err != nil {
						return "", fmt.Errorf("写入排放量失败: %w", err)
					}
				}
			}
		}
	}

	meta := index.TechMeta()
	for _, tech := range model.SortedTechKeys(meta) {
		m := meta[tech]
		if _, err := tx.Exec(
			`INSERT INTO tech_meta (run_id, category, specific, description, material_unit, production_unit)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, tech.Category, tech.Specific, m.Description, m.MaterialUnit, m.ProductionUnit); err != nil {
			return "", fmt.Errorf("写入技术元数据失败: %w", err)
		}
	}

	for _, issue := range index.Issues() {
		if _, err := tx.Exec(
			`INSERT INTO run_issues (run_id, kind, path, message) VALUES (?, ?, ?, ?)`,
			runID, string(issue.Kind), issue.Path, issue.Message); err != nil {
			return "", fmt.Errorf("写入校验问题失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("提交事务失败: %w", err)
	}
	return runID, nil
}

// ListRuns 按创建时间倒序列出运行记录
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT run_id, created_at, source, leaf_count, year_count, indicators
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// GetRun 取单次运行的摘要
func (s *Store) GetRun(runID string) (RunSummary, error) {
	row := s.db.QueryRow(
		`SELECT run_id, created_at, source, leaf_count, year_count, indicators
		 FROM runs WHERE run_id = ?`, runID)
	summary, err := scanRun(row)
	if err == sql.ErrNoRows {
		return RunSummary{}, fmt.Errorf("运行 %s 不存在", runID)
	}
	return summary, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var summary RunSummary
	var indicatorsJSON string
	if err := row.Scan(&summary.RunID, &summary.CreatedAt, &summary.Source,
		&summary.LeafCount, &summary.YearCount, &indicatorsJSON); err != nil {
		return RunSummary{}, err
	}
	if err := json.Unmarshal([]byte(indicatorsJSON), &summary.Indicators); err != nil {
		return RunSummary{}, err
	}
	return summary, nil
}

// RunPaths 某次运行中出现过的叶子路径（排序）
func (s *Store) RunPaths(runID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT path FROM required_resources WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// RunYears 某次运行中出现过的年份（排序）
func (s *Store) RunYears(runID string) ([]int, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT year FROM required_resources WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ValueRow 展平的数值行
type ValueRow struct {
	Path     string  `json:"path"`
	Year     int     `json:"year"`
	Category string  `json:"category"`
	Specific string  `json:"specific"`
	Resource string  `json:"resource"`
	Value    float64 `json:"value"`
}

// QueryEmissions 某次运行中某路径（含子路径）某指标的排放行
func (s *Store) QueryEmissions(runID, path, indicator string) ([]ValueRow, error) {
	rows, err := s.db.Query(
		`SELECT path, year, category, specific, resource, value FROM emissions
		 WHERE run_id = ? AND indicator = ? AND (path = ? OR path LIKE ?)
		 ORDER BY path, year, category, specific, resource`,
		runID, indicator, path, path+"/%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanValueRows(rows)
}

// QueryResources 某次运行中某路径（含子路径）的所需资源行
func (s *Store) QueryResources(runID, path string) ([]ValueRow, error) {
	rows, err := s.db.Query(
		`SELECT path, year, category, specific, resource, value FROM required_resources
		 WHERE run_id = ? AND (path = ? OR path LIKE ?)
		 ORDER BY path, year, category, specific, resource`,
		runID, path, path+"/%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanValueRows(rows)
}

func scanValueRows(rows *sql.Rows) ([]ValueRow, error) {
	var out []ValueRow
	for rows.Next() {
		var r ValueRow
		if err := rows.Scan(&r.Path, &r.Year, &r.Category, &r.Specific, &r.Resource, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunTechMeta 某次运行的技术元数据
func (s *Store) RunTechMeta(runID string) (model.TechMetaTable, error) {
	rows, err := s.db.Query(
		`SELECT category, specific, description, material_unit, production_unit
		 FROM tech_meta WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meta := model.TechMetaTable{}
	for rows.Next() {
		var tech model.TechKey
		var m model.TechMeta
		if err := rows.Scan(&tech.Category, &tech.Specific,
			&m.Description, &m.MaterialUnit, &m.ProductionUnit); err != nil {
			return nil, err
		}
		meta[tech] = m
	}
	return meta, rows.Err()
}

// RunIssues 某次运行收集到的校验问题
func (s *Store) RunIssues(runID string) ([]model.Issue, error) {
	rows, err := s.db.Query(
		`SELECT kind, path, message FROM run_issues WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var issues []model.Issue
	for rows.Next() {
		var issue model.Issue
		var kind string
		if err := rows.Scan(&kind, &issue.Path, &issue.Message); err != nil {
			return nil, err
		}
		issue.Kind = model.IssueKind(kind)
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}
