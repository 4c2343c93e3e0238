package variant

import (
	"errors"
	"testing"

	"github.com/atelierhq/storefront_api/internal/models"
)

func TestAvailableStock_NoSelectionIsZero(t *testing.T) {
	cfg := colorBlueConfig()
	cfg.SelectedVariants = nil
	if got := AvailableStock(cfg); got != 0 {
		t.Errorf("AvailableStock = %d, want 0", got)
	}
}

func TestAvailableStock_SingleLevel(t *testing.T) {
	if got := AvailableStock(colorBlueConfig()); got != 3 {
		t.Errorf("AvailableStock = %d, want 3", got)
	}
}

func TestAvailableStock_DeepestLevelWins(t *testing.T) {
	cfg := models.ProductConfiguration{
		Variants:         threeLevelVariants(),
		SelectedVariants: []models.SelectedVariant{blackLMatte()},
	}
	if got := AvailableStock(cfg); got != 7 {
		t.Errorf("AvailableStock = %d, want 7 (Matte), not 2 (L)", got)
	}
}

func TestAvailableStock_PartialPathReadsStopNode(t *testing.T) {
	tests := []struct {
		name string
		sel  models.SelectedVariant
		want int
	}{
		{"option only", models.SelectedVariant{VariantName: "Color", OptionValue: "black"}, 9},
		{"down to size", models.SelectedVariant{
			VariantName: "Color", OptionValue: "black",
			SubVariants: []models.SelectedSubVariant{{SubVariantName: "Size", OptionValue: "L"}},
		}, 2},
		{"size leaf", models.SelectedVariant{
			VariantName: "Color", OptionValue: "black",
			SubVariants: []models.SelectedSubVariant{{SubVariantName: "Size", OptionValue: "M"}},
		}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.ProductConfiguration{
				Variants:         threeLevelVariants(),
				SelectedVariants: []models.SelectedVariant{tt.sel},
			}
			if got := AvailableStock(cfg); got != tt.want {
				t.Errorf("AvailableStock = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAvailableStock_MinAcrossIndependentVariants(t *testing.T) {
	cfg := colorBlueConfig()
	cfg.Variants = append(cfg.Variants, models.Variant{
		ID: oid(), Name: "Warranty", Type: models.VariantTypeDropdown,
		Options: []models.VariantOption{
			{ID: oid(), Label: "1 year", Value: "1y", Stock: 10},
			{ID: oid(), Label: "3 years", Value: "3y", Stock: 2},
		},
	})

	tests := []struct {
		warranty string
		want     int
	}{
		{"1y", 3},
		{"3y", 2},
	}
	for _, tt := range tests {
		c := cfg
		c.SelectedVariants = []models.SelectedVariant{
			{VariantName: "Color", OptionValue: "blue"},
			{VariantName: "Warranty", OptionValue: tt.warranty},
		}
		if got := AvailableStock(c); got != tt.want {
			t.Errorf("warranty %s: AvailableStock = %d, want %d", tt.warranty, got, tt.want)
		}
	}
}

func TestAvailableStock_UnresolvedSelectionDropsOut(t *testing.T) {
	cfg := colorBlueConfig()
	cfg.SelectedVariants = append(cfg.SelectedVariants, models.SelectedVariant{VariantName: "Engraving", OptionValue: "yes"})
	if got := AvailableStock(cfg); got != 3 {
		t.Errorf("AvailableStock = %d, want 3", got)
	}

	cfg.SelectedVariants = []models.SelectedVariant{{VariantName: "Color", OptionValue: "green"}}
	if got := AvailableStock(cfg); got != 0 {
		t.Errorf("AvailableStock with nothing resolved = %d, want 0", got)
	}
	if errs := Unresolved(cfg); len(errs) != 1 {
		t.Errorf("Unresolved = %v, want one error", errs)
	}
}

func TestResolveLeaf(t *testing.T) {
	groups := Tree(threeLevelVariants())
	sel := Selections([]models.SelectedVariant{blackLMatte()})[0]

	path, err := ResolveLeaf(groups, sel)
	if err != nil {
		t.Fatalf("ResolveLeaf: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("len(path) = %d, want 3", len(path))
	}
	if leaf := path.Leaf(); leaf.Value != "matte" || !leaf.IsLeaf() {
		t.Errorf("leaf = %+v, want matte leaf", leaf)
	}
	if got := path.String(); got != "Color=Black > Size=L > Finish=Matte" {
		t.Errorf("path = %q", got)
	}
	addr := path.Address()
	if len(addr) != 3 || addr[0].GroupID != groups[0].ID || addr[2].OptionID != path.Leaf().ID {
		t.Errorf("address = %+v", addr)
	}
}

func TestResolveLeaf_ReadPathIsCaseSensitive(t *testing.T) {
	groups := Tree(colorBlueConfig().Variants)
	_, err := ResolveLeaf(groups, Selection{Group: "Color", Value: "BLUE"})
	if !errors.Is(err, ErrPathNotResolved) {
		t.Fatalf("err = %v, want ErrPathNotResolved", err)
	}
	var pe *PathError
	if !errors.As(err, &pe) || pe.Missing != "option" || pe.Level != 1 {
		t.Errorf("PathError = %+v", pe)
	}

	_, err = ResolveLeaf(groups, Selection{Group: "Colour", Value: "blue"})
	if !errors.As(err, &pe) || pe.Missing != "group" {
		t.Errorf("PathError = %+v, want missing group", pe)
	}
}

func TestTree_Kinds(t *testing.T) {
	groups := Tree(threeLevelVariants())
	black := groups[0].Options[0]
	if black.Kind != KindBranch {
		t.Errorf("Black kind = %v, want branch", black.Kind)
	}
	l := black.Children[0].Options[0]
	m := black.Children[0].Options[1]
	if l.Kind != KindBranch || m.Kind != KindLeaf {
		t.Errorf("L kind = %v, M kind = %v", l.Kind, m.Kind)
	}
	if lvl := l.Children[0].Level; lvl != 3 {
		t.Errorf("Finish level = %d, want 3", lvl)
	}
}
