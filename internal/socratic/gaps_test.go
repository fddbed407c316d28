package socratic

import (
	"testing"

	"github.com/tutorkit/tutorkit/internal/content"
	"github.com/tutorkit/tutorkit/internal/prereq"
)

func TestDetectGaps(t *testing.T) {
	ancestors := []prereq.Ancestor{
		{ConceptID: "product-rule", Name: "Product Rule", Depth: 1},
		{ConceptID: "power-rule", Name: "Power Rule", Depth: 2},
		{ConceptID: "limits", Name: "Limits", Depth: 3},
	}

	tests := []struct {
		name  string
		turns []Turn
		want  []content.ConceptID
	}{
		{
			name: "single mention",
			turns: []Turn{
				{Role: RoleTutor, Content: "What rule applies here?"},
				{Role: RoleLearner, Content: "I always mix up the product rule"},
			},
			want: []content.ConceptID{"product-rule"},
		},
		{
			name: "multiple mentions sorted by depth",
			turns: []Turn{
				{Role: RoleLearner, Content: "is this limits? or the power rule thing?"},
			},
			want: []content.ConceptID{"power-rule", "limits"},
		},
		{
			name: "tutor mentions ignored",
			turns: []Turn{
				{Role: RoleTutor, Content: "Remember the product rule."},
				{Role: RoleLearner, Content: "ok let me try"},
			},
			want: nil,
		},
		{
			name: "case insensitive",
			turns: []Turn{
				{Role: RoleLearner, Content: "POWER RULE? never heard of it"},
			},
			want: []content.ConceptID{"power-rule"},
		},
		{
			name:  "empty transcript",
			turns: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectGaps(tt.turns, ancestors)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("gap %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectGapsNoAncestors(t *testing.T) {
	turns := []Turn{{Role: RoleLearner, Content: "product rule?"}}
	if got := DetectGaps(turns, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
