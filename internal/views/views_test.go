package views

import (
	"strings"
	"testing"
)

func TestRenderDayPanel(t *testing.T) {
	out := RenderDayPanel(DayPanelData{
		Name:       "Monday",
		Percent:    "33%",
		SelectedID: "mon2",
		Items: []TaskItemData{
			{ID: "mon1", Time: "9:00", Title: "Python basics", Category: "python", Done: true},
			{ID: "mon2", Time: "14:00", Title: "Wireframes", Category: "uiux", Priority: "1", DateTime: "2026-03-02 14:00", Notified: true},
		},
	})
	if !strings.Contains(out, "Monday  33% complete") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "> [ ] 14:00") || !strings.Contains(out, "#1") {
		t.Fatalf("missing selected row:\n%s", out)
	}
	if !strings.Contains(out, "@ 2026-03-02 14:00 (notified)") {
		t.Fatalf("missing datetime line:\n%s", out)
	}
}

func TestRenderDayPanelEmpty(t *testing.T) {
	out := RenderDayPanel(DayPanelData{Name: "Friday", Percent: "0%", Filter: "lectures"})
	if !strings.Contains(out, "(no lectures tasks)") {
		t.Fatalf("unexpected empty panel:\n%s", out)
	}
}

func TestRenderTaskDetail(t *testing.T) {
	if out := RenderTaskDetail(TaskDetailData{}); !strings.Contains(out, "(no selection)") {
		t.Fatalf("unexpected empty detail: %s", out)
	}
	out := RenderTaskDetail(TaskDetailData{ID: "tue1", Title: "Lecture", Day: "Tuesday", Category: "lectures"})
	if !strings.Contains(out, "datetime: (not set)") || !strings.Contains(out, "priority: (unranked)") {
		t.Fatalf("unexpected detail:\n%s", out)
	}
}

func TestRenderEditorHiddenWhenInactive(t *testing.T) {
	if RenderEditor(EditorData{}) != "" {
		t.Fatal("expected inactive editor to render nothing")
	}
	out := RenderEditor(EditorData{Active: true, TaskTitle: "X", InputView: "> 2026", ErrorText: "bad"})
	if !strings.Contains(out, "error: bad") {
		t.Fatalf("expected error text:\n%s", out)
	}
}

func TestRenderAppIncludesSections(t *testing.T) {
	out := RenderApp(AppData{Header: "Week 1 Schedule", DayStrip: "Monday 0%", LeftPane: "L", RightPane: "R", StatusLine: "ok", Footer: "keys"})
	for _, want := range []string{"Week 1 Schedule", "Monday 0%", "ok", "keys"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
