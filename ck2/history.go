package ck2

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/modconv/pdx"
)

// ProvinceHistory is the history/provinces file of one county province.
type ProvinceHistory struct {
	ID             int
	Title          string
	Culture        string
	Religion       string
	Terrain        string
	MaxSettlements int
	// Baronies holds every barony named in the file, with its starting
	// holding and later holding changes.
	Baronies map[string]*BaronyHistory
	// History holds the dated province-level changes, oldest first.
	History []HistoryEntry
}

// BaronyHistory is the holding record of one barony.
type BaronyHistory struct {
	// Holding is the starting holding type, or "none" when the barony is
	// only built later.
	Holding string
	Changes []HoldingChange
}

// HoldingChange is a holding set on a date.
type HoldingChange struct {
	Date    pdx.Date
	Holding string
}

// HistoryEntry is one dated block without its barony keys.
type HistoryEntry struct {
	Date    pdx.Date
	Changes *pdx.Document
}

// NoHolding marks a barony that has no starting holding.
const NoHolding = "none"

// ReadProvinceHistory reads the history file of province id.
func (r *Reader) ReadProvinceHistory(id int, path string) (*ProvinceHistory, error) {
	doc, err := r.parser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	return ProvinceHistoryOf(id, doc), nil
}

// ReadProvinceHistories reads the history of each id from dir, where files
// are named "<id> - <name>.txt". Ids without a file are skipped: sea and
// coastal provinces have none. The returned error joins the failures of
// individual files; the map still holds every history that was read.
func (r *Reader) ReadProvinceHistories(ctx context.Context, dir string, ids []int) (map[int]*ProvinceHistory, error) {
	files, err := historyFiles(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	var found []int
	for _, id := range ids {
		path, ok := files[id]
		if !ok {
			r.logger().Debug("ck2: no history file", "province", id)
			continue
		}
		paths = append(paths, path)
		found = append(found, id)
	}

	histories := make(map[int]*ProvinceHistory, len(paths))
	var errs []error
	for i, res := range r.parser().ParseFiles(ctx, paths, r.Workers) {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("province %d: %w", found[i], res.Err))
			continue
		}
		histories[found[i]] = ProvinceHistoryOf(found[i], res.Doc)
	}
	return histories, errors.Join(errs...)
}

// historyFiles maps province ids to their history file. When two files
// carry the same id the first by name wins.
func historyFiles(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, pdx.ErrNotFound)
		}
		return nil, err
	}

	files := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), " - ")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(prefix))
		if err != nil {
			continue
		}
		if _, dup := files[id]; !dup {
			files[id] = filepath.Join(dir, e.Name())
		}
	}
	return files, nil
}

// ProvinceHistoryOf builds the history of province id from its parsed file.
func ProvinceHistoryOf(id int, doc *pdx.Document) *ProvinceHistory {
	h := &ProvinceHistory{ID: id, Baronies: make(map[string]*BaronyHistory)}
	h.Title, _ = doc.String("title")
	h.Culture, _ = doc.String("culture")
	h.Religion, _ = doc.String("religion")
	h.Terrain, _ = doc.String("terrain")
	if n, ok := doc.Int("max_settlements"); ok {
		h.MaxSettlements = int(n)
	}

	for _, n := range doc.Nodes {
		if !isBarony(n.Key) {
			continue
		}
		if s, ok := n.Value.(pdx.String); ok {
			h.Baronies[n.Key] = &BaronyHistory{Holding: string(s)}
		}
	}

	for _, n := range doc.Nodes {
		date, ok := pdx.ParseDate(n.Key)
		if !ok {
			continue
		}
		for _, block := range blocks(n.Value) {
			h.addEntry(date, block)
		}
	}
	sort.SliceStable(h.History, func(i, j int) bool {
		return h.History[i].Date.Before(h.History[j].Date)
	})
	for _, b := range h.Baronies {
		sort.SliceStable(b.Changes, func(i, j int) bool {
			return b.Changes[i].Date.Before(b.Changes[j].Date)
		})
	}
	return h
}

func (h *ProvinceHistory) addEntry(date pdx.Date, block *pdx.Document) {
	var changes []pdx.Node
	for _, n := range block.Nodes {
		if !isBarony(n.Key) {
			changes = append(changes, n)
			continue
		}
		b, ok := h.Baronies[n.Key]
		if !ok {
			b = &BaronyHistory{Holding: NoHolding}
			h.Baronies[n.Key] = b
		}
		b.Changes = append(b.Changes, HoldingChange{Date: date, Holding: pdx.Text(n.Value)})
	}
	if len(changes) > 0 {
		h.History = append(h.History, HistoryEntry{Date: date, Changes: pdx.NewDocument(changes...)})
	}
}

// Setting returns the text of the value key takes at date: the latest dated
// change at or before date, or else the base value of the file for title,
// culture, religion, terrain and max_settlements.
func (h *ProvinceHistory) Setting(key string, date pdx.Date) (string, bool) {
	value, found := "", false
	switch key {
	case "title":
		value, found = h.Title, h.Title != ""
	case "culture":
		value, found = h.Culture, h.Culture != ""
	case "religion":
		value, found = h.Religion, h.Religion != ""
	case "terrain":
		value, found = h.Terrain, h.Terrain != ""
	case "max_settlements":
		value, found = strconv.Itoa(h.MaxSettlements), h.MaxSettlements != 0
	}
	for _, e := range h.History {
		if date.Before(e.Date) {
			break
		}
		if v, ok := e.Changes.Get(key); ok {
			value, found = pdx.Text(v), true
		}
	}
	return value, found
}

func isBarony(key string) bool {
	return strings.HasPrefix(key, "b_")
}
