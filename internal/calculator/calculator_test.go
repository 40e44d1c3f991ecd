package calculator

import (
	"testing"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

var (
	hammer = model.TechKey{Category: "Tool", Specific: "Hammer"}
	pliers = model.TechKey{Category: "Tool", Specific: "Pliers"}
)

func toolInput() *model.ProcessableInput {
	return &model.ProcessableInput{
		Intensities: model.Intensities{
			hammer: {"Steel": 1, "Wood": 10},
			pliers: {"Steel": 1, "Wood": 10},
		},
		Targets: map[model.TechKey]float64{hammer: 5, pliers: 100},
		Indicators: model.Indicators{
			"Steel": {"CO2": 1.1, "PM25": 2.1},
			"Wood":  {"CO2": 2.1, "PM25": 2.2},
		},
	}
}

func TestCalculate_RequiredResources(t *testing.T) {
	t.Parallel()

	output := Calculate(toolInput())
	want := model.ResourceTable{
		hammer: {"Steel": 5, "Wood": 50},
		pliers: {"Steel": 100, "Wood": 1000},
	}
	for tech, row := range want {
		for res, v := range row {
			if got := output.RequiredResources[tech][res]; got != v {
				t.Fatalf("required[%s][%s] got=%v, want %v", tech, res, got, v)
			}
		}
	}
}

func TestCalculate_Emissions(t *testing.T) {
	t.Parallel()

	output := Calculate(toolInput())

	names := output.IndicatorNames()
	if len(names) != 2 || names[0] != "CO2" || names[1] != "PM25" {
		t.Fatalf("indicators got=%v, want [CO2 PM25]", names)
	}

	co2, ok := output.EmissionsForIndicator("CO2")
	if !ok {
		t.Fatalf("CO2 missing")
	}
	want := model.ResourceTable{
		hammer: {"Steel": 5.5, "Wood": 105.0},
		pliers: {"Steel": 110.0, "Wood": 2100.0},
	}
	for tech, row := range want {
		for res, v := range row {
			if got := co2[tech][res]; got != v {
				t.Fatalf("CO2[%s][%s] got=%v, want %v", tech, res, got, v)
			}
		}
	}
}

func TestCalculate_EmptyTargets(t *testing.T) {
	t.Parallel()

	input := toolInput()
	input.Targets = map[model.TechKey]float64{}
	output := Calculate(input)
	if len(output.RequiredResources) != 0 {
		t.Fatalf("required=%v, want empty", output.RequiredResources)
	}
}
