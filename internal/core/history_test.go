package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

func summary(id, project, outcome string) RunSummary {
	return RunSummary{ID: id, Project: project, Outcome: outcome, CreatedAt: time.Now()}
}

func ids(runs []RunSummary) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

func TestMemoryRunStore_NewestFirstAndBounded(t *testing.T) {
	store := NewMemoryRunStore(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := store.Save(ctx, summary(fmt.Sprint(i), "Prospectos", "clean")); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.List(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"5", "4", "3"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("List() = %v, want %v", ids(got), want)
	}

	if _, err := store.Get(ctx, "1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get(evicted) error = %v, want ErrRunNotFound", err)
	}
	if r, err := store.Get(ctx, "4"); err != nil || r.ID != "4" {
		t.Errorf("Get(4) = %v, %v", r.ID, err)
	}
}

func TestMemoryRunStore_Filter(t *testing.T) {
	store := NewMemoryRunStore(10)
	ctx := context.Background()
	runs := []RunSummary{
		summary("a", "Prospectos", "clean"),
		summary("b", "SPV_Marketing", "findings"),
		summary("c", "Prospectos", "structural"),
		summary("d", "Prospectos", "findings"),
		summary("e", "SPV_Marketing", "clean"),
	}
	for _, r := range runs {
		if err := store.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all", RunFilter{}, []string{"e", "d", "c", "b", "a"}},
		{"by project", RunFilter{Project: "Prospectos"}, []string{"d", "c", "a"}},
		{"by outcome", RunFilter{Outcome: "findings"}, []string{"d", "b"}},
		{"both", RunFilter{Project: "SPV_Marketing", Outcome: "clean"}, []string{"e"}},
		{"limit", RunFilter{Limit: 2}, []string{"e", "d"}},
		{"offset", RunFilter{Project: "Prospectos", Offset: 1, Limit: 1}, []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("List() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestListRunsQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    RunFilter
		wantWhere string
		wantTail  string
		wantArgs  []any
	}{
		{
			name:     "no filter",
			filter:   RunFilter{},
			wantTail: "ORDER BY created_at DESC LIMIT $1 OFFSET $2",
			wantArgs: []any{DefaultHistoryLimit, 0},
		},
		{
			name:      "project and outcome",
			filter:    RunFilter{Project: "Prospectos", Outcome: "clean", Limit: 10, Offset: 20},
			wantWhere: " WHERE project = $1 AND outcome = $2",
			wantTail:  "LIMIT $3 OFFSET $4",
			wantArgs:  []any{"Prospectos", "clean", 10, 20},
		},
		{
			name:      "outcome only",
			filter:    RunFilter{Outcome: "structural", Offset: -5},
			wantWhere: " WHERE outcome = $1",
			wantTail:  "LIMIT $2 OFFSET $3",
			wantArgs:  []any{"structural", DefaultHistoryLimit, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := listRunsQuery(tt.filter)
			if tt.wantWhere == "" && strings.Contains(query, "WHERE") {
				t.Errorf("query has WHERE clause: %s", query)
			}
			if !strings.Contains(query, tt.wantWhere) {
				t.Errorf("query missing %q: %s", tt.wantWhere, query)
			}
			if !strings.HasSuffix(query, tt.wantTail) {
				t.Errorf("query should end with %q: %s", tt.wantTail, query)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestToPgText(t *testing.T) {
	if v := toPgText(""); v.Valid {
		t.Error("toPgText(\"\") should be NULL")
	}
	if v := toPgText("STR003"); !v.Valid || v.String != "STR003" {
		t.Errorf("toPgText(STR003) = %+v", v)
	}
}
