package layout

import (
	"sort"
	"time"

	"plannercal/internal/model"
)

// Assignment is one event's lane within its overlap group.
type Assignment struct {
	Event       model.CalendarEvent
	ColumnIndex int
}

// OverlapGroup is a maximal set of events whose intervals transitively
// intersect. ColumnCount is the minimal number of side-by-side lanes needed
// to draw the group without two overlapping events sharing a lane.
type OverlapGroup struct {
	Assignments []Assignment
	ColumnCount int
}

// ResolveResult carries the groups plus warnings for events dropped before
// resolution.
type ResolveResult struct {
	Groups   []OverlapGroup
	Warnings []model.Warning
}

// effectiveEnd gives zero-duration events a nominal extent so two events at
// the same instant still land in separate columns.
func effectiveEnd(ev model.CalendarEvent) time.Time {
	if ev.End.After(ev.Start) {
		return ev.End
	}
	return ev.Start.Add(time.Minute)
}

func intervalsOverlap(a, b model.CalendarEvent) bool {
	return a.Start.Before(effectiveEnd(b)) && b.Start.Before(effectiveEnd(a))
}

// malformed reports whether an event must be dropped before layout:
// missing timestamps or an inverted interval. Start == End is not
// malformed; it renders at minimum height.
func malformed(ev model.CalendarEvent) (string, bool) {
	if ev.Start.IsZero() || ev.End.IsZero() {
		return "missing start or end time", true
	}
	if ev.Start.After(ev.End) {
		return "start time after end time", true
	}
	return "", false
}

// union-find over event indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		// Root at the smaller index so group identity is deterministic.
		if ra < rb {
			u.parent[rb] = ra
		} else {
			u.parent[ra] = rb
		}
	}
}

// Resolve partitions events into overlap groups and assigns each event a
// column via greedy interval coloring. The result is fully deterministic:
// events are processed in (start, id) order and equal starts break ties by
// lexicographic id, so identical input always yields identical layout.
//
// Malformed events are dropped and reported in Warnings; the resolver
// itself cannot fail.
func Resolve(events []model.CalendarEvent) ResolveResult {
	var res ResolveResult

	valid := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if reason, bad := malformed(ev); bad {
			res.Warnings = append(res.Warnings, model.Warning{EventID: ev.ID, Reason: reason})
			continue
		}
		valid = append(valid, ev)
	}
	if len(valid) == 0 {
		return res
	}

	sort.Slice(valid, func(i, j int) bool {
		if !valid[i].Start.Equal(valid[j].Start) {
			return valid[i].Start.Before(valid[j].Start)
		}
		return valid[i].ID < valid[j].ID
	})

	// Transitive grouping: sweep in start order, unioning each event with
	// every earlier event whose interval it intersects.
	uf := newUnionFind(len(valid))
	for i := 1; i < len(valid); i++ {
		for j := 0; j < i; j++ {
			if intervalsOverlap(valid[i], valid[j]) {
				uf.union(i, j)
			}
		}
	}

	// Greedy coloring within each group: lowest column index not occupied
	// by an overlapping, already-placed event.
	columns := make([]int, len(valid))
	for i := range valid {
		used := map[int]bool{}
		for j := 0; j < i; j++ {
			if uf.find(i) == uf.find(j) && intervalsOverlap(valid[i], valid[j]) {
				used[columns[j]] = true
			}
		}
		col := 0
		for used[col] {
			col++
		}
		columns[i] = col
	}

	// Collect groups in order of their first event.
	groupIdx := map[int]int{}
	for i, ev := range valid {
		root := uf.find(i)
		gi, ok := groupIdx[root]
		if !ok {
			gi = len(res.Groups)
			groupIdx[root] = gi
			res.Groups = append(res.Groups, OverlapGroup{})
		}
		g := &res.Groups[gi]
		g.Assignments = append(g.Assignments, Assignment{Event: ev, ColumnIndex: columns[i]})
		if columns[i]+1 > g.ColumnCount {
			g.ColumnCount = columns[i] + 1
		}
	}

	return res
}
