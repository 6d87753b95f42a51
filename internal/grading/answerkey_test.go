package grading

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLetterFor(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{2, "C"},
		{25, "Z"},
		{26, "?"},
		{-1, "?"},
	}
	for _, tt := range tests {
		if got := LetterFor(tt.index); got != tt.want {
			t.Errorf("LetterFor(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestAnswerKey_Validate(t *testing.T) {
	tests := []struct {
		name         string
		key          AnswerKey
		alternatives int
		wantErr      bool
	}{
		{"valid", AnswerKey{1: "A", 2: "E"}, 5, false},
		{"empty", AnswerKey{}, 5, false},
		{"letter beyond alternatives", AnswerKey{1: "F"}, 5, true},
		{"lowercase", AnswerKey{1: "c"}, 5, true},
		{"two letters", AnswerKey{1: "AB"}, 5, true},
		{"empty letter", AnswerKey{1: ""}, 5, true},
		{"question zero", AnswerKey{0: "A"}, 5, true},
		{"negative question", AnswerKey{-3: "A"}, 5, true},
		{"no alternatives", AnswerKey{1: "A"}, 0, true},
		{"too many alternatives", AnswerKey{1: "A"}, 27, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate(tt.alternatives)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAnswerKey) {
				t.Errorf("error %v does not wrap ErrInvalidAnswerKey", err)
			}
		})
	}
}

func TestAnswerKey_Numbers(t *testing.T) {
	key := AnswerKey{10: "A", 2: "B", 7: "C"}
	if got := key.Numbers(); !reflect.DeepEqual(got, []int{2, 7, 10}) {
		t.Errorf("Numbers() = %v", got)
	}
}

func TestParseAnswerString(t *testing.T) {
	tests := []struct {
		input   string
		want    AnswerKey
		wantErr bool
	}{
		{"CDDCE", AnswerKey{1: "C", 2: "D", 3: "D", 4: "C", 5: "E"}, false},
		{"CD-E", AnswerKey{1: "C", 2: "D", 4: "E"}, false},
		{"A, B . C _ D", AnswerKey{1: "A", 2: "B", 4: "C", 6: "D"}, false},
		{"", AnswerKey{}, false},
		{"AB3", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAnswerString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnswerString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAnswerString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAnswerKey(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    AnswerKey
		wantErr bool
	}{
		{
			name: "mapping",
			doc:  "answers:\n  1: C\n  2: D\n  10: A\n",
			want: AnswerKey{1: "C", 2: "D", 10: "A"},
		},
		{
			name: "sequence",
			doc:  "answers:\n  - C\n  - \"-\"\n  - E\n",
			want: AnswerKey{1: "C", 3: "E"},
		},
		{
			name: "string",
			doc:  "answers: CDDCE\n",
			want: AnswerKey{1: "C", 2: "D", 3: "D", 4: "C", 5: "E"},
		},
		{
			name: "json",
			doc:  `{"answers": {"1": "B", "3": "A"}}`,
			want: AnswerKey{1: "B", 3: "A"},
		},
		{name: "missing answers", doc: "title: quiz\n", wantErr: true},
		{name: "non-numeric question", doc: "answers:\n  one: A\n", wantErr: true},
		{name: "question keyed twice", doc: "answers:\n  1: A\n  01: B\n", wantErr: true},
		{name: "nested list item", doc: "answers:\n  - [A, B]\n", wantErr: true},
		{name: "malformed yaml", doc: "answers: [A, B\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswerKey([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnswerKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAnswerKey) {
					t.Errorf("error %v does not wrap ErrInvalidAnswerKey", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAnswerKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadAnswerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.yaml")
	if err := os.WriteFile(path, []byte("answers: CA\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	key, err := LoadAnswerKey(path)
	if err != nil {
		t.Fatalf("LoadAnswerKey() error = %v", err)
	}
	if !reflect.DeepEqual(key, AnswerKey{1: "C", 2: "A"}) {
		t.Errorf("LoadAnswerKey() = %v", key)
	}

	if _, err := LoadAnswerKey(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
