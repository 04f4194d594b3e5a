// Package scanindex builds an in-memory lookup over the media scan
// inventory so episode synthesis can enrich rows with real file metadata.
// Matching is a cascade from exact filename stems down to folder layout,
// because upstream operators are not consistent about how they name files.
package scanindex

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/vodworks/catalog-backend/internal/types"
)

var (
	cjkEpisodePattern   = regexp.MustCompile(`第(\d+)集`)
	trailingNumPattern  = regexp.MustCompile(`(\d{1,3})$`)
	lastGroupNumPattern = regexp.MustCompile(`(\d+)\D*$`)
)

// ExtractEpisodeNumber pulls an episode number out of a file name. It tries
// the 第N集 form, then a trailing run of up to three digits on the stem,
// then the last digit group anywhere. Returns !ok when the name carries no
// digits at all.
func ExtractEpisodeNumber(fileName string) (int, bool) {
	stem := stemOf(fileName)
	if m := cjkEpisodePattern.FindStringSubmatch(stem); m != nil {
		return mustAtoi(m[1])
	}
	if m := trailingNumPattern.FindStringSubmatch(stem); m != nil {
		return mustAtoi(m[1])
	}
	if m := lastGroupNumPattern.FindStringSubmatch(stem); m != nil {
		return mustAtoi(m[1])
	}
	return 0, false
}

func mustAtoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stemOf(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

func folderOf(sourceFolder string) string {
	return path.Base(strings.TrimRight(strings.ReplaceAll(sourceFolder, "\\", "/"), "/"))
}

// Index is an immutable snapshot of the scan inventory. Build once, query
// many times; a rebuilt index replaces the old one wholesale.
type Index struct {
	byStem   map[string]*types.ScanEntry
	byAbbr   map[string]*types.ScanEntry
	byFolder map[string]map[int]*types.ScanEntry
	size     int
}

// Build indexes scan entries by filename stem, by the scanner's phonetic
// abbreviation and by (folder, episode number). On collisions the first
// entry wins, matching the keep-first rule used everywhere else in the
// pipeline.
func Build(entries []types.ScanEntry) *Index {
	ix := &Index{
		byStem:   make(map[string]*types.ScanEntry, len(entries)),
		byAbbr:   make(map[string]*types.ScanEntry, len(entries)),
		byFolder: make(map[string]map[int]*types.ScanEntry),
		size:     len(entries),
	}
	for i := range entries {
		e := &entries[i]
		stem := strings.ToLower(stemOf(e.FileName))
		if stem != "" {
			if _, seen := ix.byStem[stem]; !seen {
				ix.byStem[stem] = e
			}
		}
		abbr := strings.ToLower(strings.TrimSpace(e.PinyinAbbr))
		if abbr != "" {
			if _, seen := ix.byAbbr[abbr]; !seen {
				ix.byAbbr[abbr] = e
			}
		}
		folder := strings.ToLower(folderOf(e.SourceFolder))
		if folder == "" || folder == "." {
			continue
		}
		num, ok := ExtractEpisodeNumber(e.FileName)
		if !ok {
			continue
		}
		eps := ix.byFolder[folder]
		if eps == nil {
			eps = make(map[int]*types.ScanEntry)
			ix.byFolder[folder] = eps
		}
		if _, seen := eps[num]; !seen {
			eps[num] = e
		}
	}
	return ix
}

// Size reports how many entries were indexed.
func (ix *Index) Size() int { return ix.size }

// Match finds the scan entry for one episode of a title. The cascade:
//
//  1. exact stem "<title>第NN集"
//  2. stem "<title>NN" then "<title>N"
//  3. stem "<abbr>NN", "<abbr>NNN", "<abbr>N"
//  4. the same abbr keys against the scanner's own phonetic abbreviations,
//     which covers CJK filenames the stem keys can never hit
//  5. folder named after the title, then after the abbr, by episode number
//
// A miss returns nil, false; callers fall back to zero-valued metadata.
func (ix *Index) Match(title, abbr string, episodeNum int) (*types.ScanEntry, bool) {
	candidates := []string{
		fmt.Sprintf("%s第%02d集", title, episodeNum),
		fmt.Sprintf("%s%02d", title, episodeNum),
		fmt.Sprintf("%s%d", title, episodeNum),
	}
	var abbrKeys []string
	if abbr != "" {
		abbrKeys = []string{
			fmt.Sprintf("%s%02d", abbr, episodeNum),
			fmt.Sprintf("%s%03d", abbr, episodeNum),
			fmt.Sprintf("%s%d", abbr, episodeNum),
		}
		candidates = append(candidates, abbrKeys...)
	}
	for _, key := range candidates {
		if e, ok := ix.byStem[strings.ToLower(key)]; ok {
			return e, true
		}
	}
	for _, key := range abbrKeys {
		if e, ok := ix.byAbbr[strings.ToLower(key)]; ok {
			return e, true
		}
	}
	for _, folder := range []string{title, abbr} {
		if folder == "" {
			continue
		}
		if eps, ok := ix.byFolder[strings.ToLower(folder)]; ok {
			if e, ok := eps[episodeNum]; ok {
				return e, true
			}
		}
	}
	return nil, false
}

// TotalSeconds sums the matched durations for episodes 1..episodeCount of a
// title, skipping misses.
func (ix *Index) TotalSeconds(title, abbr string, episodeCount int) int {
	total := 0
	for n := 1; n <= episodeCount; n++ {
		if e, ok := ix.Match(title, abbr, n); ok {
			total += int(e.DurationSeconds)
		}
	}
	return total
}
