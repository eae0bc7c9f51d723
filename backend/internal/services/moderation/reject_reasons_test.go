package moderation

import "testing"

func TestListRejectReasonsCoversTemplates(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nil)
	items := svc.ListRejectReasons()

	if len(items) != len(rejectReasonTemplates) {
		t.Fatalf("unexpected reject reasons count: got=%d want=%d", len(items), len(rejectReasonTemplates))
	}

	for i, item := range items {
		if i > 0 && items[i-1].ReasonCode >= item.ReasonCode {
			t.Fatalf("reason codes are not sorted: %s before %s", items[i-1].ReasonCode, item.ReasonCode)
		}
		if item.Label == "" || item.ReasonText == "" || item.RequiredFixStep == "" {
			t.Fatalf("incomplete template for reason code: %s", item.ReasonCode)
		}
	}
}

func TestResolveNotesPrefersModeratorText(t *testing.T) {
	got, err := resolveNotes(" see comments, x<y ", "OTHER")
	if err != nil {
		t.Fatalf("resolve notes: %v", err)
	}
	if got != "see comments, x<y" {
		t.Fatalf("unexpected notes: %q", got)
	}
}
