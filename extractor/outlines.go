package extractor

import (
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/parser"
)

// Bookmark is one entry of the document's embedded outline tree,
// flattened depth first. Level starts at 1; Page is 1-based, 0 when the
// destination could not be resolved.
type Bookmark struct {
	Level int
	Title string
	Page  int
}

// extractBookmarks walks the /Outlines tree. Destinations are resolved
// through direct /Dest entries, /GoTo actions, and named destinations.
func extractBookmarks(doc *raw.Document, catalog raw.Dictionary, pageIndex map[raw.ObjectRef]int) []Bookmark {
	outlinesObj, ok := catalog.Get(raw.NameObj{Val: "Outlines"})
	if !ok {
		return nil
	}
	outlines, ok := doc.Resolve(outlinesObj).(raw.Dictionary)
	if !ok {
		return nil
	}
	dests := namedDestinations(doc, catalog)

	var out []Bookmark
	visited := make(map[raw.ObjectRef]bool)

	var walk func(itemObj raw.Object, level int)
	walk = func(itemObj raw.Object, level int) {
		for itemObj != nil && len(out) < 1<<14 {
			if ref, ok := itemObj.(raw.Reference); ok {
				if visited[ref.Ref()] {
					return
				}
				visited[ref.Ref()] = true
			}
			item, ok := doc.Resolve(itemObj).(raw.Dictionary)
			if !ok {
				return
			}
			title := ""
			if t, ok := item.Get(raw.NameObj{Val: "Title"}); ok {
				if s, ok := doc.Resolve(t).(raw.String); ok {
					title = parser.DecodeTextString(s.Value())
				}
			}
			if title != "" {
				out = append(out, Bookmark{
					Level: level,
					Title: title,
					Page:  destPage(doc, item, dests, pageIndex),
				})
			}
			if first, ok := item.Get(raw.NameObj{Val: "First"}); ok {
				walk(first, level+1)
			}
			itemObj, _ = item.Get(raw.NameObj{Val: "Next"})
		}
	}

	if first, ok := outlines.Get(raw.NameObj{Val: "First"}); ok {
		walk(first, 1)
	}
	return out
}

// destPage resolves an outline item's target page number.
func destPage(doc *raw.Document, item raw.Dictionary, dests map[string]raw.Object, pageIndex map[raw.ObjectRef]int) int {
	var destObj raw.Object
	if d, ok := item.Get(raw.NameObj{Val: "Dest"}); ok {
		destObj = d
	} else if a, ok := item.Get(raw.NameObj{Val: "A"}); ok {
		if action, ok := doc.Resolve(a).(raw.Dictionary); ok {
			if s, ok := action.Get(raw.NameObj{Val: "S"}); ok {
				if n, ok := doc.Resolve(s).(raw.Name); ok && n.Value() == "GoTo" {
					destObj, _ = action.Get(raw.NameObj{Val: "D"})
				}
			}
		}
	}
	if destObj == nil {
		return 0
	}

	// Named destinations indirect through the catalog's name tree.
	switch d := doc.Resolve(destObj).(type) {
	case raw.Name:
		destObj = dests[d.Value()]
	case raw.String:
		destObj = dests[string(d.Value())]
	}
	if destObj == nil {
		return 0
	}

	dest := doc.Resolve(destObj)
	// A named destination may resolve to << /D [...] >>.
	if dict, ok := dest.(raw.Dictionary); ok {
		if d, ok := dict.Get(raw.NameObj{Val: "D"}); ok {
			dest = doc.Resolve(d)
		}
	}
	arr, ok := dest.(raw.Array)
	if !ok || arr.Len() == 0 {
		return 0
	}
	first, _ := arr.Get(0)
	if ref, ok := first.(raw.Reference); ok {
		return pageIndex[ref.Ref()]
	}
	// Some producers write a page number instead of a reference.
	if n, ok := first.(raw.Number); ok {
		return int(n.Int()) + 1
	}
	return 0
}

// namedDestinations flattens both the PDF 1.1 /Dests dictionary and the
// /Names name tree into one lookup table.
func namedDestinations(doc *raw.Document, catalog raw.Dictionary) map[string]raw.Object {
	out := make(map[string]raw.Object)

	if d, ok := catalog.Get(raw.NameObj{Val: "Dests"}); ok {
		if dict, ok := doc.Resolve(d).(raw.Dictionary); ok {
			for _, key := range dict.Keys() {
				v, _ := dict.Get(key)
				out[key.Value()] = v
			}
		}
	}

	namesObj, ok := catalog.Get(raw.NameObj{Val: "Names"})
	if !ok {
		return out
	}
	names, ok := doc.Resolve(namesObj).(raw.Dictionary)
	if !ok {
		return out
	}
	destsObj, ok := names.Get(raw.NameObj{Val: "Dests"})
	if !ok {
		return out
	}

	visited := make(map[raw.ObjectRef]bool)
	var walk func(nodeObj raw.Object)
	walk = func(nodeObj raw.Object) {
		if ref, ok := nodeObj.(raw.Reference); ok {
			if visited[ref.Ref()] {
				return
			}
			visited[ref.Ref()] = true
		}
		node, ok := doc.Resolve(nodeObj).(raw.Dictionary)
		if !ok {
			return
		}
		if kids, ok := node.Get(raw.NameObj{Val: "Kids"}); ok {
			if arr, ok := doc.Resolve(kids).(raw.Array); ok {
				for i := 0; i < arr.Len(); i++ {
					kid, _ := arr.Get(i)
					walk(kid)
				}
			}
		}
		if pairs, ok := node.Get(raw.NameObj{Val: "Names"}); ok {
			if arr, ok := doc.Resolve(pairs).(raw.Array); ok {
				for i := 0; i+1 < arr.Len(); i += 2 {
					keyObj, _ := arr.Get(i)
					val, _ := arr.Get(i + 1)
					if s, ok := doc.Resolve(keyObj).(raw.String); ok {
						out[string(s.Value())] = val
					}
				}
			}
		}
	}
	walk(destsObj)
	return out
}
