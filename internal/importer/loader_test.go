package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/pipeline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const (
	rootTechs = `Category,Specific,Material Unit,Production Unit,Steel,Wood
Tool,Hammer,kg,count,1,10
Tool,Pliers,kg,count,1,10
`
	rootIndicators = `Resource,CO2
Steel,1.1
Wood,2.1
`
	franceTargets = `Category,Specific,2020
Tool,Hammer,5
`
	germanyTargets = `Category,Specific,2020
Tool,Pliers,100
`
)

func writeWorld(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "techs.csv"), rootTechs)
	writeFile(t, filepath.Join(dir, "indicators.csv"), rootIndicators)
	writeFile(t, filepath.Join(dir, "Europe", "France", "targets.csv"), franceTargets)
	writeFile(t, filepath.Join(dir, "Europe", "Germany", "targets.csv"), germanyTargets)
}

func TestLoad_Hierarchy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorld(t, dir)

	root, issues, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("issues=%v, want none", issues)
	}
	if root.IsLeaf() {
		t.Fatalf("root should be internal")
	}
	if got := root.LeafCount(); got != 2 {
		t.Fatalf("leaves=%d, want 2", got)
	}

	hammer := model.TechKey{Category: "Tool", Specific: "Hammer"}
	if got := root.Intensities[hammer]["Wood"]; got != 10 {
		t.Fatalf("root Hammer Wood got=%v, want 10", got)
	}
	if got := root.TechMeta[hammer].MaterialUnit; got != "kg" {
		t.Fatalf("root Hammer unit got=%v, want kg", got)
	}

	europe := root.Children()["Europe"]
	if europe == nil {
		t.Fatalf("Europe missing")
	}
	france := europe.Children()["France"]
	if france == nil || !france.IsLeaf() {
		t.Fatalf("France should be a leaf")
	}
	if got := france.Targets()[hammer][2020]; got != 5 {
		t.Fatalf("France target got=%v, want 5", got)
	}
}

func TestLoad_ThroughPipeline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorld(t, dir)

	root, _, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	index, err := pipeline.Run(root, pipeline.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	hammer := model.TechKey{Category: "Tool", Specific: "Hammer"}
	base := filepath.Base(dir)
	output, ok := index.Get(base+"/Europe/France", 2020)
	if !ok {
		t.Fatalf("France 2020 missing, paths=%v", index.Paths())
	}
	if got := output.RequiredResources[hammer]["Steel"]; got != 5 {
		t.Fatalf("France Steel got=%v, want 5", got)
	}
	co2, _ := output.EmissionsForIndicator("CO2")
	if got := co2[hammer]["Wood"]; got != 105.0 {
		t.Fatalf("France Wood CO2 got=%v, want 105.0", got)
	}
}

func TestLoad_YearlyOverrideNewTech(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorld(t, dir)
	writeFile(t, filepath.Join(dir, "techs_2030.csv"), `Category,Specific,Steel,Wood
Tool,Saw,3,30
`)

	_, _, err := Load(dir)
	if err == nil {
		t.Fatalf("expected override violation")
	}
	issue, ok := err.(model.Issue)
	if !ok || issue.Kind != model.OverrideViolation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_TargetsAndChildrenConflict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorld(t, dir)
	writeFile(t, filepath.Join(dir, "Europe", "targets.csv"), franceTargets)

	_, _, err := Load(dir)
	if err == nil {
		t.Fatalf("expected structural error")
	}
	issue, ok := err.(model.Issue)
	if !ok || issue.Kind != model.StructuralError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_IgnoresEmptyDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWorld(t, dir)
	if err := os.MkdirAll(filepath.Join(dir, "Europe", "notes"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	root, issues, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := root.LeafCount(); got != 2 {
		t.Fatalf("leaves=%d, want 2", got)
	}
	if len(issues) != 1 || issues[0].Kind != model.StructuralError {
		t.Fatalf("issues=%v, want one ignored-dir warning", issues)
	}
}
