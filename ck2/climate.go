package ck2

import (
	"fmt"
	"strings"

	"github.com/modconv/pdx"
)

// ReadClimate reads map/climate.txt.
func (r *Reader) ReadClimate(path string) (map[int]string, error) {
	doc, err := r.parser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	climate, err := Climate(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return climate, nil
}

// Climate maps province ids to the winter severity listing them, such as
// normal_winter or severe_winter. Keys that do not end in _winter are
// ignored. A repeated severity key adds to the same severity. A province
// listed twice keeps the last severity.
func Climate(doc *pdx.Document) (map[int]string, error) {
	climate := make(map[int]string)
	for _, n := range doc.Nodes {
		if !strings.HasSuffix(n.Key, "_winter") {
			continue
		}
		if err := addProvinces(climate, n.Key, n.Value); err != nil {
			return nil, err
		}
	}
	return climate, nil
}

// addProvinces records the ids of one severity block. Repeated blocks reach
// it as a list of lists.
func addProvinces(climate map[int]string, severity string, v pdx.Value) error {
	switch x := v.(type) {
	case pdx.List:
		for _, item := range x {
			if err := addProvinces(climate, severity, item); err != nil {
				return err
			}
		}
	case pdx.Integer:
		climate[int(x)] = severity
	case *pdx.Document:
		// An empty block lists no province.
		if x.Len() != 0 {
			return fmt.Errorf("%s: expected a list of province ids, got a block", severity)
		}
	default:
		return fmt.Errorf("%s: province id %s is not an integer", severity, pdx.Text(v))
	}
	return nil
}
