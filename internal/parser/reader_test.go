package parser

import (
	"strings"
	"testing"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

func TestMatchIntensitiesFile(t *testing.T) {
	t.Parallel()

	year, ok := MatchIntensitiesFile("techs.csv")
	if !ok || year != model.BaselineYear {
		t.Fatalf("techs.csv got=(%d,%v), want (0,true)", year, ok)
	}
	year, ok = MatchIntensitiesFile("techs_2035.csv")
	if !ok || year != 2035 {
		t.Fatalf("techs_2035.csv got=(%d,%v), want (2035,true)", year, ok)
	}
	for _, name := range []string{"techs_35.csv", "techs2035.csv", "indicators.csv", "techs.csv.bak"} {
		if _, ok := MatchIntensitiesFile(name); ok {
			t.Fatalf("%s unexpectedly matched", name)
		}
	}
}

func TestMatchIndicatorsFile(t *testing.T) {
	t.Parallel()

	year, ok := MatchIndicatorsFile("indicators_2040.csv")
	if !ok || year != 2040 {
		t.Fatalf("indicators_2040.csv got=(%d,%v), want (2040,true)", year, ok)
	}
	if !MatchTargetsFile("targets.csv") {
		t.Fatalf("targets.csv not matched")
	}
	if MatchTargetsFile("targets_2020.csv") {
		t.Fatalf("targets_2020.csv unexpectedly matched")
	}
}

func TestReadIntensities_WithMeta(t *testing.T) {
	t.Parallel()

	csv := `Category,Specific,Description,Material Unit,Production Unit,Steel,Wood
Tool,Hammer,A hammer,kg,count,1,10
Tool,Pliers,,kg,count,1,
`
	intensities, meta, err := ReadIntensities(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	hammer := model.TechKey{Category: "Tool", Specific: "Hammer"}
	pliers := model.TechKey{Category: "Tool", Specific: "Pliers"}
	if got := intensities[hammer]["Wood"]; got != 10 {
		t.Fatalf("Hammer Wood got=%v, want 10", got)
	}
	// 空单元格是稀疏缺失，不是 0
	if _, ok := intensities[pliers]["Wood"]; ok {
		t.Fatalf("empty cell parsed as value")
	}
	if got := meta[hammer]; got.Description != "A hammer" || got.MaterialUnit != "kg" || got.ProductionUnit != "count" {
		t.Fatalf("Hammer meta got=%+v", got)
	}
}

func TestReadIntensities_BadHeader(t *testing.T) {
	t.Parallel()

	if _, _, err := ReadIntensities(strings.NewReader("Name,Steel\nHammer,1\n")); err == nil {
		t.Fatalf("expected header error")
	}
}

func TestReadIndicators(t *testing.T) {
	t.Parallel()

	csv := `Resource,CO2,PM25
Steel,1.1,2.1
Wood,2.1,
`
	indicators, err := ReadIndicators(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := indicators["Steel"]["PM25"]; got != 2.1 {
		t.Fatalf("Steel PM25 got=%v, want 2.1", got)
	}
	if _, ok := indicators["Wood"]["PM25"]; ok {
		t.Fatalf("empty cell parsed as value")
	}
}

func TestReadTargets(t *testing.T) {
	t.Parallel()

	csv := `Category,Specific,2020,2025,2030
Tool,Hammer,5,,15
`
	targets, err := ReadTargets(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	hammer := model.TechKey{Category: "Tool", Specific: "Hammer"}
	if got := targets[hammer][2020]; got != 5 {
		t.Fatalf("2020 got=%v, want 5", got)
	}
	if _, ok := targets[hammer][2025]; ok {
		t.Fatalf("empty year cell parsed as value")
	}
	if got := targets[hammer][2030]; got != 15 {
		t.Fatalf("2030 got=%v, want 15", got)
	}
}

func TestReadTargets_NonYearColumn(t *testing.T) {
	t.Parallel()

	if _, err := ReadTargets(strings.NewReader("Category,Specific,total\nTool,Hammer,5\n")); err == nil {
		t.Fatalf("expected non-year column error")
	}
}
