package feature

import (
	"testing"

	"github.com/golang/geo/r2"
)

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name     string
		resolver IDResolver
		f        Feature
		index    int
		want     any
	}{
		{
			"configured property wins",
			IDResolver{Property: "name"},
			Feature{ID: 7, Properties: map[string]any{"name": "alpha"}},
			0, "alpha",
		},
		{
			"nil property value falls through",
			IDResolver{Property: "name"},
			Feature{ID: 7, Properties: map[string]any{"name": nil}},
			0, 7,
		},
		{
			"own id second",
			IDResolver{Property: "name"},
			Feature{ID: 7},
			3, 7,
		},
		{
			"positional index last",
			IDResolver{Property: "name"},
			Feature{},
			3, 3,
		},
		{
			"no property configured",
			IDResolver{},
			Feature{ID: "x", Properties: map[string]any{"name": "ignored"}},
			0, "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resolver.Resolve(tt.f, tt.index); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveProperties(t *testing.T) {
	r := IDResolver{Property: "name"}

	if got := r.ResolveProperties(9, map[string]any{"name": "beta"}); got != "beta" {
		t.Errorf("ResolveProperties = %v, want beta", got)
	}
	if got := r.ResolveProperties(9, nil); got != 9 {
		t.Errorf("ResolveProperties without bag = %v, want raw id", got)
	}
}

func TestNumProperty(t *testing.T) {
	f := Feature{Properties: map[string]any{
		"f64": 1.5,
		"int": 3,
		"str": "4",
	}}

	if v, ok := f.NumProperty("f64"); !ok || v != 1.5 {
		t.Errorf("f64 = %v,%v", v, ok)
	}
	if v, ok := f.NumProperty("int"); !ok || v != 3 {
		t.Errorf("int = %v,%v", v, ok)
	}
	if _, ok := f.NumProperty("str"); ok {
		t.Error("numeric strings must not coerce")
	}
	if _, ok := f.NumProperty("missing"); ok {
		t.Error("missing property reported present")
	}
}

func TestVertexCount(t *testing.T) {
	g := Geometry{Kind: KindMultiLine, Parts: [][]r2.Point{
		{{X: 0, Y: 0}, {X: 1, Y: 1}},
		{{X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}},
	}}
	if got := g.VertexCount(); got != 5 {
		t.Errorf("VertexCount() = %d, want 5", got)
	}
}
