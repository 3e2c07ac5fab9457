// Package answer holds the instructor answer key: for every graded sheet and
// cell, an ordered list of regular expressions any one of which accepts the
// submitted cell content.
package answer

import (
	"bufio"
	"io"
	"iter"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"xlcheck/internal/errors"
)

// isSkipLine reports whether a key line is blank or a comment. Any Unicode
// white space counts, so lines indented with full-width spaces (U+3000) are
// skipped too.
func isSkipLine(line string) bool {
	trimmed := strings.TrimFunc(line, unicode.IsSpace)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// Key maps sheet -> cell -> accepted patterns, remembering the order in
// which sheets and cells first appeared in the key file.
//
// A Key is built by Parse and is read-only afterwards; Match may then be
// called from several goroutines at once. Parse must not run concurrently
// with any other method.
type Key struct {
	sheets   []string
	cells    map[string][]string
	patterns map[string]map[string][]string

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// NewKey returns an empty key. Every Match against it fails.
func NewKey() *Key {
	return &Key{}
}

// Load reads and parses the answer key file at path
func Load(path string) (*Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open answer key %s", path)
	}
	defer f.Close()

	key := NewKey()
	if err := key.ParseReader(f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse answer key %s", path)
	}
	return key, nil
}

// ParseReader splits r into lines and parses them. A leading byte-order mark
// is dropped, so keys saved as UTF-8 with BOM (or UTF-16) read the same as
// plain UTF-8.
func (k *Key) ParseReader(r io.Reader) error {
	decoded := transform.NewReader(r, xunicode.BOMOverride(xunicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		k.reset()
		return errors.Wrap(err, "failed to read answer key")
	}
	return k.Parse(lines)
}

// Parse rebuilds the key from raw lines, discarding whatever it held before.
// Each payload line is SHEET<TAB>CELL<TAB>PATTERN once every space character
// has been removed. A payload line with fewer than three fields fails the
// whole parse and leaves the key empty.
func (k *Key) Parse(lines []string) error {
	k.reset()

	var sheets []string
	cells := make(map[string][]string)
	patterns := make(map[string]map[string][]string)

	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		if isSkipLine(line) {
			continue
		}

		fields := strings.Split(strings.ReplaceAll(line, " ", ""), "\t")
		if len(fields) < 3 {
			return errors.MalformedAnswerLine(i+1, len(fields))
		}
		sheet, cell, pattern := fields[0], fields[1], fields[2]

		byCell, ok := patterns[sheet]
		if !ok {
			byCell = make(map[string][]string)
			patterns[sheet] = byCell
			sheets = append(sheets, sheet)
		}
		if _, ok := byCell[cell]; !ok {
			cells[sheet] = append(cells[sheet], cell)
		}
		byCell[cell] = append(byCell[cell], pattern)
	}

	k.sheets, k.cells, k.patterns = sheets, cells, patterns
	return nil
}

func (k *Key) reset() {
	k.sheets, k.cells, k.patterns = nil, nil, nil

	k.mu.Lock()
	k.compiled = nil
	k.mu.Unlock()
}

// Sheets yields each sheet named in the key once, in first-seen order
func (k *Key) Sheets() iter.Seq[string] {
	return slices.Values(k.sheets)
}

// Cells yields each cell of sheet once, in first-seen order
func (k *Key) Cells(sheet string) iter.Seq[string] {
	return slices.Values(k.cells[sheet])
}

// Patterns returns a copy of the patterns registered for sheet!cell
func (k *Key) Patterns(sheet, cell string) []string {
	return slices.Clone(k.patterns[sheet][cell])
}

// Match reports whether value, with all whitespace removed, is fully matched
// by any pattern registered for sheet!cell. An unknown sheet or cell never
// matches. A pattern that is not a valid regular expression is an error,
// raised only when Match reaches it.
func (k *Key) Match(sheet, cell, value string) (bool, error) {
	candidate := Normalize(value)
	for _, pattern := range k.patterns[sheet][cell] {
		re, err := k.compile(sheet, cell, pattern)
		if err != nil {
			return false, err
		}
		if re.MatchString(candidate) {
			return true, nil
		}
	}
	return false, nil
}

// Validate compiles every pattern in key order and returns the first failure
func (k *Key) Validate() error {
	for _, sheet := range k.sheets {
		for _, cell := range k.cells[sheet] {
			for _, pattern := range k.patterns[sheet][cell] {
				if _, err := k.compile(sheet, cell, pattern); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// compile anchors pattern at both ends and caches the result
func (k *Key) compile(sheet, cell, pattern string) (*regexp.Regexp, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if re, ok := k.compiled[pattern]; ok {
		return re, nil
	}
	// The bare pattern is checked first so that unbalanced groups such as
	// "a)|(b" are rejected instead of being closed by the anchoring group.
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, errors.InvalidPattern(sheet, cell, pattern, err)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, errors.InvalidPattern(sheet, cell, pattern, err)
	}
	if k.compiled == nil {
		k.compiled = make(map[string]*regexp.Regexp)
	}
	k.compiled[pattern] = re
	return re, nil
}

// Normalize deletes every run of white space from value
func Normalize(value string) string {
	return strings.Join(strings.Fields(value), "")
}
