package dag

import (
	"slices"
)

// SourceDeps maps each source file to the other files whose structs its own
// structs contain, directly or transitively. A layout change in any of them
// changes the generated output of the file.
func SourceDeps(g Graph, slots []StructSlot) map[string][]string {
	out := make(map[string][]string)
	for id := range slots {
		slot := &slots[id]
		if !slot.Present {
			continue
		}
		src := slot.Def.Source
		if _, ok := out[src]; !ok {
			out[src] = nil
		}
		seen := make(map[StructID]bool)
		stack := slices.Clone(g.Deps[id])
		for len(stack) > 0 {
			dep := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[dep] {
				continue
			}
			seen[dep] = true
			depSrc := slots[int(dep)].Def.Source
			if depSrc != src && !slices.Contains(out[src], depSrc) {
				out[src] = append(out[src], depSrc)
			}
			stack = append(stack, g.Deps[int(dep)]...)
		}
	}
	for src := range out {
		slices.Sort(out[src])
	}
	return out
}
