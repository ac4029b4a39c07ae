package dag

import (
	"sort"

	"cbgen/internal/types"
)

type StructID uint32

type StructIndex struct {
	NameToID map[string]StructID
	IDToName []string
}

// BuildIndex collects declared and referenced struct names, sorts them and
// hands out IDs in that order.
func BuildIndex(defs []*types.StructDef) StructIndex {
	uniq := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.Name != "" {
			uniq[def.Name] = struct{}{}
		}
		for _, dep := range def.Deps {
			if dep == "" {
				continue
			}
			uniq[dep] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]StructID, len(names))
	for i, name := range names {
		nameToID[name] = StructID(i)
	}

	return StructIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}

// Names maps ids back to struct names.
func (idx StructIndex) Names(ids []StructID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
