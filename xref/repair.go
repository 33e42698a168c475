package xref

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strconv"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
)

var objHeaderRe = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]+(\d+)[ \t]+obj\b`)

// repair rebuilds the xref by scanning the whole file for object headers.
// Later definitions of the same object number win, matching incremental
// update semantics.
func (r *resolver) repair(ctx context.Context, data []byte) (Table, error) {
	tbl := &table{entries: make(map[int]entry), kind: "repaired"}

	for _, loc := range objHeaderRe.FindAllSubmatchIndex(data, -1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		num, err1 := strconv.Atoi(string(data[loc[2]:loc[3]]))
		gen, err2 := strconv.Atoi(string(data[loc[4]:loc[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		start := int64(loc[2])
		tbl.entries[num] = entry{offset: start, gen: gen}
	}
	if len(tbl.entries) == 0 {
		return nil, errors.New("repair found no objects")
	}

	if r.trailer == nil {
		r.trailer = r.repairTrailer(data, tbl)
	}
	return tbl, nil
}

// repairTrailer recovers a usable trailer: the last trailer dictionary in
// the file, or a synthesized one pointing at a scanned /Type /Catalog.
func (r *resolver) repairTrailer(data []byte, tbl *table) raw.Dictionary {
	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		if dict, err := parseDictAt(data, int64(idx+len("trailer")), r.cfg.Recovery); err == nil {
			if _, ok := dict.Get(raw.NameObj{Val: "Root"}); ok {
				return dict
			}
		}
	}

	nums := tbl.Objects()
	for i := len(nums) - 1; i >= 0; i-- {
		offset, gen, ok := tbl.Lookup(nums[i])
		if !ok {
			continue
		}
		obj, err := parseIndirectAt(data, offset, r.cfg.Recovery)
		if err != nil {
			continue
		}
		dict, ok := obj.(raw.Dictionary)
		if !ok {
			continue
		}
		if t, ok := dict.Get(raw.NameObj{Val: "Type"}); ok {
			if name, ok := t.(raw.Name); ok && name.Value() == "Catalog" {
				trailer := raw.Dict()
				trailer.Set(raw.NameObj{Val: "Root"}, raw.Ref(nums[i], gen))
				trailer.Set(raw.NameObj{Val: "Size"}, raw.NumberInt(int64(nums[i]+1)))
				return trailer
			}
		}
	}
	return raw.Dict()
}
