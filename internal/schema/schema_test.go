package schema

import "testing"

func TestValidator(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "minimal valid document",
			doc:  `{"id": "w1"}`,
		},
		{
			name: "full document",
			doc: `{
				"id": "rust-worker-01",
				"static_analysis_tools": [
					{"tool_name": "clippy", "required": true, "alternatives": ["cargo-clippy"]}
				],
				"security_scanning_tools": [
					{"tool_name": "cargo-audit", "required": false}
				],
				"flags": {"ast_support": true},
				"metadata": {"platform": "linux"}
			}`,
		},
		{
			name:    "missing id",
			doc:     `{"static_analysis_tools": []}`,
			wantErr: true,
		},
		{
			name:    "empty id",
			doc:     `{"id": ""}`,
			wantErr: true,
		},
		{
			name:    "tool without name",
			doc:     `{"id": "w1", "fuzzing_tools": [{"required": true}]}`,
			wantErr: true,
		},
		{
			name:    "flag with non-boolean value",
			doc:     `{"id": "w1", "flags": {"ast_support": "yes"}}`,
			wantErr: true,
		},
		{
			name:    "metadata with non-string value",
			doc:     `{"id": "w1", "metadata": {"max_jobs": 8}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			doc:     `{"id": `,
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate([]byte(tc.doc))
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
