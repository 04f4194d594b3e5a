// Package pinyin derives the short Latin codes used in media file naming:
// CJK characters contribute the first letter of their romanization, Latin
// letters and digits pass through lowercased, everything else is dropped.
package pinyin

import (
	"strings"
	"sync"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

var (
	firstLetterArgs = func() gopinyin.Args {
		a := gopinyin.NewArgs()
		a.Style = gopinyin.FirstLetter
		return a
	}()

	cacheMu sync.RWMutex
	cache   = make(map[string]string)
)

// Abbr returns the phonetic abbreviation for name. Results are cached for
// the process lifetime since titles repeat heavily across imports.
func Abbr(name string) string {
	if name == "" {
		return ""
	}
	cacheMu.RLock()
	cached, ok := cache[name]
	cacheMu.RUnlock()
	if ok {
		return cached
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 0x4e00 && r <= 0x9fff:
			letters := gopinyin.SinglePinyin(r, firstLetterArgs)
			if len(letters) > 0 && letters[0] != "" {
				b.WriteString(letters[0])
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}

	abbr := b.String()
	cacheMu.Lock()
	cache[name] = abbr
	cacheMu.Unlock()
	return abbr
}
