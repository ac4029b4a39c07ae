package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []StructID   // dependencies before the structs that contain them
	Batches [][]StructID // waves of structs whose dependencies are all laid out
	Cyclic  bool
	Cycles  []StructID // structs left on a cycle
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]StructID, 0, nodeCount),
		Batches: make([][]StructID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]StructID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]StructID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]StructID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

func mustID(i int) StructID {
	id, err := safecast.Conv[StructID](i)
	if err != nil {
		panic(fmt.Errorf("struct id overflow: %w", err))
	}
	return id
}
