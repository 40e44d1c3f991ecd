package model

import (
	"errors"
	"testing"
)

func TestNewLeafNode_RequiresTargets(t *testing.T) {
	t.Parallel()

	_, err := NewLeafNode("France", NodeData{}, nil)
	if err == nil {
		t.Fatalf("expected error for leaf without targets")
	}
	var issue Issue
	if !errors.As(err, &issue) || issue.Kind != StructuralError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewInternalNode_RequiresChildren(t *testing.T) {
	t.Parallel()

	_, err := NewInternalNode("Europe", NodeData{}, nil)
	if err == nil {
		t.Fatalf("expected error for internal node without children")
	}
	_, err = NewInternalNode("Europe", NodeData{}, map[string]*Node{})
	if err == nil {
		t.Fatalf("expected error for internal node with empty children")
	}
}

func TestNewLeafNode_YearlyIntensitiesNewTech(t *testing.T) {
	t.Parallel()

	hydro := TechKey{Category: "Power plant", Specific: "Hydro"}
	wind := TechKey{Category: "Power plant", Specific: "Wind"}
	data := NodeData{
		Intensities: Intensities{hydro: {"Steel": 1}},
		IntensitiesYearly: map[int]Intensities{
			2020: {wind: {"Steel": 2}},
		},
	}
	_, err := NewLeafNode("France", data, Targets{hydro: {2020: 1}})
	if err == nil {
		t.Fatalf("expected override violation")
	}
	var issue Issue
	if !errors.As(err, &issue) || issue.Kind != OverrideViolation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewLeafNode_YearlyIndicatorsNewResource(t *testing.T) {
	t.Parallel()

	hydro := TechKey{Category: "Power plant", Specific: "Hydro"}
	data := NodeData{
		Intensities: Intensities{hydro: {"Steel": 1}},
		Indicators:  Indicators{"Steel": {"CO2": 1}},
		IndicatorsYearly: map[int]Indicators{
			2020: {"Wood": {"CO2": 2}},
		},
	}
	_, err := NewLeafNode("France", data, Targets{hydro: {2020: 1}})
	if err == nil {
		t.Fatalf("expected override violation")
	}
	var issue Issue
	if !errors.As(err, &issue) || issue.Kind != OverrideViolation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWalk_SortedOrder(t *testing.T) {
	t.Parallel()

	hydro := TechKey{Category: "Power plant", Specific: "Hydro"}
	leaf := func(name string) *Node {
		n, err := NewLeafNode(name, NodeData{
			Intensities: Intensities{hydro: {"Steel": 1}},
		}, Targets{hydro: {2020: 1}})
		if err != nil {
			t.Fatalf("leaf %s: %v", name, err)
		}
		return n
	}
	root, err := NewInternalNode("World", NodeData{}, map[string]*Node{
		"Germany": leaf("Germany"),
		"France":  leaf("France"),
		"Austria": leaf("Austria"),
	})
	if err != nil {
		t.Fatalf("internal: %v", err)
	}

	var visited []string
	root.Walk(func(n *Node) { visited = append(visited, n.Name) })
	want := []string{"World", "Austria", "France", "Germany"}
	if len(visited) != len(want) {
		t.Fatalf("visited=%v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited=%v, want %v", visited, want)
		}
	}
	if got := root.LeafCount(); got != 3 {
		t.Fatalf("LeafCount got=%d, want 3", got)
	}
}
