package exporter

import (
	"path/filepath"
	"testing"

	"github.com/dreamingspires/mat-dp-pipeline/internal/importer"
	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

var (
	hammer = model.TechKey{Category: "Tool", Specific: "Hammer"}
	pliers = model.TechKey{Category: "Tool", Specific: "Pliers"}
)

func toolTree(t *testing.T) *model.Node {
	t.Helper()

	france, err := model.NewLeafNode("France", model.NodeData{
		IntensitiesYearly: map[int]model.Intensities{},
	}, model.Targets{hammer: {2020: 5, 2030: 15}})
	if err != nil {
		t.Fatalf("leaf France: %v", err)
	}
	root, err := model.NewInternalNode("World", model.NodeData{
		Intensities: model.Intensities{
			hammer: {"Steel": 1, "Wood": 10},
			pliers: {"Steel": 1},
		},
		IntensitiesYearly: map[int]model.Intensities{
			2030: {hammer: {"Steel": 2}},
		},
		Indicators: model.Indicators{
			"Steel": {"CO2": 1.1},
			"Wood":  {"CO2": 2.1},
		},
		TechMeta: model.TechMetaTable{
			hammer: {Description: "A hammer", MaterialUnit: "kg", ProductionUnit: "count"},
			pliers: {MaterialUnit: "kg", ProductionUnit: "count"},
		},
	}, map[string]*model.Node{"France": france})
	if err != nil {
		t.Fatalf("internal World: %v", err)
	}
	return root
}

func TestSaveHierarchy_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := toolTree(t)
	if err := SaveHierarchy(root, dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, issues, err := importer.Load(filepath.Join(dir, "World"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("issues=%v, want none", issues)
	}

	if got := loaded.Intensities[hammer]["Wood"]; got != 10 {
		t.Fatalf("Hammer Wood got=%v, want 10", got)
	}
	// 稀疏单元格往返后仍然缺失
	if _, ok := loaded.Intensities[pliers]["Wood"]; ok {
		t.Fatalf("sparse cell became a value after round trip")
	}
	if got := loaded.IntensitiesYearly[2030][hammer]["Steel"]; got != 2 {
		t.Fatalf("2030 Hammer Steel got=%v, want 2", got)
	}
	if got := loaded.Indicators["Wood"]["CO2"]; got != 2.1 {
		t.Fatalf("Wood CO2 got=%v, want 2.1", got)
	}
	if got := loaded.TechMeta[hammer].Description; got != "A hammer" {
		t.Fatalf("Hammer description got=%q, want %q", got, "A hammer")
	}

	france := loaded.Children()["France"]
	if france == nil || !france.IsLeaf() {
		t.Fatalf("France should be a leaf")
	}
	if got := france.Targets()[hammer][2030]; got != 15 {
		t.Fatalf("France 2030 target got=%v, want 15", got)
	}
}
