package dag

import (
	"fmt"
	"slices"
	"strings"

	"cbgen/internal/diag"
	"cbgen/internal/types"
)

type Graph struct {
	Edges   [][]StructID // Edges[dep] = structs that contain dep
	Deps    [][]StructID // Deps[container] = structs it contains
	Indeg   []int        // number of present dependencies, for Kahn
	Present []bool       // the struct is declared, not only referenced
}

type StructSlot struct {
	Def     *types.StructDef
	Present bool
}

// BuildGraph links every declared struct to the structs its fields reference.
// Duplicate declarations and references to undeclared structs are reported
// through r, which may be nil.
func BuildGraph(idx StructIndex, defs []*types.StructDef, r diag.Reporter) (Graph, []StructSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]StructID, nodeCount),
		Deps:    make([][]StructID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]StructSlot, nodeCount)

	for _, def := range defs {
		id, ok := idx.NameToID[def.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			if r != nil {
				diag.ReportError(r, diag.LayDuplicateStruct, def.Span, fmt.Sprintf("duplicate struct %q", def.Name)).
					WithNote(slot.Def.Span, fmt.Sprintf("previous declaration of %q", def.Name)).
					Emit()
			}
			continue
		}
		slot.Def = def
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Def.Deps) == 0 {
			continue
		}
		for _, dep := range slot.Def.Deps {
			toID, ok := idx.NameToID[dep]
			if !ok {
				continue
			}
			if !g.Present[int(toID)] {
				if r != nil {
					sp := slot.Def.Span
					if f := firstUse(slot.Def, dep); f != nil {
						sp = f.Span
					}
					r.Report(diag.LayUnknownType, diag.SevError, sp,
						fmt.Sprintf("struct %q references unknown type %q", slot.Def.Name, dep), nil)
				}
				continue
			}
			g.Deps[from] = append(g.Deps[from], toID)
			g.Edges[int(toID)] = append(g.Edges[int(toID)], mustID(from))
			g.Indeg[from]++
		}
		slices.Sort(g.Deps[from])
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}

	return g, slots
}

func firstUse(def *types.StructDef, name string) *types.Field {
	for i := range def.Fields {
		f := &def.Fields[i]
		if f.Type.Kind == types.KindStruct && f.Type.Name == name {
			return f
		}
	}
	return nil
}

// OnCycle filters the structs Kahn could not order down to those that reach
// themselves. The rest merely contain a cyclic struct.
func OnCycle(g Graph, topo *Topo) []StructID {
	if !topo.Cyclic {
		return nil
	}
	left := make(map[StructID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		left[id] = true
	}
	var out []StructID
	for _, id := range topo.Cycles {
		if reaches(g, left, id, id) {
			out = append(out, id)
		}
	}
	return out
}

func reaches(g Graph, left map[StructID]bool, from, target StructID) bool {
	seen := make(map[StructID]bool)
	stack := slices.Clone(g.Deps[int(from)])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] || !left[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.Deps[int(id)]...)
	}
	return false
}

// ReportCycles reports every struct on a containment cycle.
func ReportCycles(idx StructIndex, g Graph, slots []StructSlot, topo *Topo, r diag.Reporter) {
	members := OnCycle(g, topo)
	if len(members) == 0 || r == nil {
		return
	}
	summary := strings.Join(idx.Names(members), ", ")
	for _, id := range members {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		msg := fmt.Sprintf("struct %q participates in a containment cycle among: %s", slot.Def.Name, summary)
		r.Report(diag.LayCyclicStruct, diag.SevError, slot.Def.Span, msg, nil)
	}
}
