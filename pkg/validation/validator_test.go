package validation

import (
	"errors"
	"testing"
)

type color string

func (c color) Valid() bool { return c == "red" || c == "blue" }

type sample struct {
	ID     string   `json:"id" validate:"required"`
	Color  color    `json:"color" validate:"enum"`
	Accent *color   `json:"accent,omitempty" validate:"omitempty,enum"`
	Score  float64  `json:"score" validate:"gte=0,lte=1"`
	Tags   []string `json:"tags" validate:"dive,required"`
}

func TestStruct(t *testing.T) {
	bad := color("green")
	good := color("blue")

	tests := []struct {
		name      string
		in        sample
		wantField string
		wantTag   string
	}{
		{"valid", sample{ID: "a", Color: "red", Score: 0.5}, "", ""},
		{"valid optional enum", sample{ID: "a", Color: "red", Accent: &good}, "", ""},
		{"missing id", sample{Color: "red"}, "id", "required"},
		{"bad enum", sample{ID: "a", Color: "green"}, "color", "enum"},
		{"bad optional enum", sample{ID: "a", Color: "red", Accent: &bad}, "accent", "enum"},
		{"score out of range", sample{ID: "a", Color: "red", Score: 1.5}, "score", "lte"},
		{"empty tag", sample{ID: "a", Color: "red", Tags: []string{""}}, "tags[0]", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct("sample", &tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected *FieldError, got %T (%v)", err, err)
			}
			if fe.Field != tt.wantField || fe.Tag != tt.wantTag {
				t.Errorf("got field=%q tag=%q, want field=%q tag=%q", fe.Field, fe.Tag, tt.wantField, tt.wantTag)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Error("Expected errors.Is(err, ErrInvalid)")
			}
			if fe.Record != "sample" {
				t.Errorf("Record = %q", fe.Record)
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("node", "node_type", "widget")
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("Expected ErrInvalid")
	}
	if got := err.Error(); got != "node.node_type: invalid value widget" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStructNil(t *testing.T) {
	if err := Struct("sample", nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for nil, got %v", err)
	}
}
