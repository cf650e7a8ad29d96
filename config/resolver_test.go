package config

import (
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestResolveMerge(t *testing.T) {
	defaults := map[string]any{
		"speed":  1.0,
		"color":  "#00ff00",
		"period": 2.0,
	}
	user := map[string]any{
		"speed": 3.0,
		"color": nil,        // nil falls back to default
		"extra": "whatever", // unknown keys pass through
	}

	out := Resolve(defaults, user)

	if out["speed"] != 3.0 {
		t.Errorf("speed = %v, want user value 3.0", out["speed"])
	}
	if out["color"] != "#00ff00" {
		t.Errorf("color = %v, want default", out["color"])
	}
	if out["period"] != 2.0 {
		t.Errorf("period = %v, want default", out["period"])
	}
	if out["extra"] != "whatever" {
		t.Errorf("extension key dropped: %v", out["extra"])
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	defaults := map[string]any{"a": 1.0}
	user := map[string]any{"a": 2.0}
	_ = Resolve(defaults, user)

	if defaults["a"] != 1.0 {
		t.Error("defaults mutated")
	}
}

func TestValidateFieldTypes(t *testing.T) {
	schema := Schema{
		"speed":   {Type: TypeNumber, Min: fp(0), Max: fp(10)},
		"visible": {Type: TypeBoolean},
		"label":   {Type: TypeString},
		"easing":  {Type: TypeSelect, Options: []string{"linear", "ease-in", "ease-out"}},
		"stops":   {Type: TypeArray},
	}

	tests := []struct {
		name    string
		cfg     map[string]any
		wantErr int
	}{
		{"all valid", map[string]any{
			"speed": 5.0, "visible": true, "label": "x",
			"easing": "linear", "stops": []any{1.0, 2.0},
		}, 0},
		{"number below min", map[string]any{"speed": -1.0}, 1},
		{"number above max", map[string]any{"speed": 11.0}, 1},
		{"number wrong type", map[string]any{"speed": "fast"}, 1},
		{"number from bool rejected", map[string]any{"speed": true}, 1},
		{"bad boolean", map[string]any{"visible": 1}, 1},
		{"bad string", map[string]any{"label": 7}, 1},
		{"select not in options", map[string]any{"easing": "bounce"}, 1},
		{"select wrong type", map[string]any{"easing": 2}, 1},
		{"bad array", map[string]any{"stops": "1,2"}, 1},
		{"missing fields skip", map[string]any{}, 0},
		{"multiple failures", map[string]any{"speed": "fast", "visible": 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.cfg, schema)
			if len(errs) != tt.wantErr {
				t.Errorf("got %d errors, want %d: %v", len(errs), tt.wantErr, errs)
			}
		})
	}
}

func TestValidateColors(t *testing.T) {
	schema := Schema{"tint": {Type: TypeColor}}

	valid := []any{
		"#fff",
		"#00ff88",
		"#00FF88",
		"#00ff88cc",
		[]any{0.0, 0.5, 1.0, 1.0},
	}
	for _, v := range valid {
		if errs := Validate(map[string]any{"tint": v}, schema); len(errs) != 0 {
			t.Errorf("valid color %v rejected: %v", v, errs)
		}
	}

	invalid := []any{
		"00ff88",                     // missing #
		"#gggggg",                    // bad hex digits
		"#ff",                        // wrong length
		"#00ff88c",                   // truncated alpha
		[]any{0.0, 0.5, 1.0},         // 3 components
		[]any{0.0, 0.5, 1.0, 1.5},    // out of range
		[]any{0.0, 0.5, "blue", 1.0}, // non-numeric
		42,
	}
	for _, v := range invalid {
		if errs := Validate(map[string]any{"tint": v}, schema); len(errs) == 0 {
			t.Errorf("invalid color %v accepted", v)
		}
	}
}

func TestExpressionsBypassValidation(t *testing.T) {
	schema := Schema{
		"speed": {Type: TypeNumber, Min: fp(0), Max: fp(10)},
		"tint":  {Type: TypeColor},
	}
	cfg := map[string]any{
		"speed": []any{"get", "velocity"},
		"tint":  []any{"case", []any{">", []any{"get", "mag"}, 5.0}, "#f00", "#0f0"},
	}

	if errs := Validate(cfg, schema); len(errs) != 0 {
		t.Errorf("data-driven expressions did not bypass validation: %v", errs)
	}
}

func TestValidateNeverPanicsAndNeverThrows(t *testing.T) {
	schema := Schema{"speed": {Type: TypeNumber}}
	// validation is advisory: weird shapes become field errors, not
	// panics or hard failures
	for _, v := range []any{nil, struct{}{}, map[string]any{"nested": 1}, []byte("x")} {
		_ = Validate(map[string]any{"speed": v}, schema)
	}
}

func TestLoadDocument(t *testing.T) {
	doc := []byte(`defaults:
  speed: 1.5
  color: "#00ff88"
schema:
  speed:
    type: number
    min: 0
    max: 10
  color:
    type: color
  easing:
    type: select
    options: [linear, ease-in]
`)
	d, err := LoadDocument(doc)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if d.Defaults["speed"] != 1.5 {
		t.Errorf("defaults.speed = %v", d.Defaults["speed"])
	}
	if d.Schema["speed"].Type != TypeNumber || *d.Schema["speed"].Max != 10 {
		t.Errorf("schema.speed = %+v", d.Schema["speed"])
	}
	if len(d.Schema["easing"].Options) != 2 {
		t.Errorf("schema.easing.options = %v", d.Schema["easing"].Options)
	}

	if errs := Validate(Resolve(d.Defaults, nil), d.Schema); len(errs) != 0 {
		t.Errorf("document defaults fail their own schema: %v", errs)
	}
}

func TestLoadDocumentBadYAML(t *testing.T) {
	if _, err := LoadDocument([]byte("defaults: [")); err == nil {
		t.Error("malformed YAML accepted")
	}
}
