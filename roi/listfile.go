package roi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ListExt is the file extension of ROI list files.
const ListExt = ".rl"

// ErrListFormat is returned when an ROI list file cannot be parsed.
var ErrListFormat = errors.New("roi: malformed list file")

var listHeaders = [...]string{
	Plus:  "PlusRois:",
	Minus: "MinusRois:",
	Group: "GroupRois:",
}

// WriteList writes s as an ROI list: three count lines followed by one
// "lo hi" line per region, plus regions first, then minus, then group.
func WriteList(w io.Writer, s *Set) error {
	bw := bufio.NewWriter(w)
	for _, role := range Roles {
		fmt.Fprintf(bw, "%s %d\n", listHeaders[role], s.Len(role))
	}
	for _, role := range Roles {
		for _, r := range s.Collection(role) {
			fmt.Fprintf(bw, "%d %d\n", r.Lo, r.Hi)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("roi: write list: %w", err)
	}
	return nil
}

// ReadList parses an ROI list. Only the last field of each count line is
// read, so the header labels are free text. Lines after the announced
// regions are ignored.
func ReadList(r io.Reader) (*Set, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("roi: read list: %w", err)
	}
	if len(lines) < len(Roles) {
		return nil, fmt.Errorf("%w: %d lines, need at least %d header lines", ErrListFormat, len(lines), len(Roles))
	}

	var counts [len(Roles)]int
	for i := range Roles {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: empty header line %d", ErrListFormat, i+1)
		}
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad count on line %d: %q", ErrListFormat, i+1, lines[i])
		}
		counts[i] = n
	}

	set := &Set{}
	next := len(Roles)
	for i, role := range Roles {
		for range counts[i] {
			if next >= len(lines) {
				return nil, fmt.Errorf("%w: expected %d %s regions, file ended", ErrListFormat, counts[i], role)
			}
			region, err := parseRegionLine(lines[next], role)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrListFormat, next+1, err)
			}
			set.Add(region) //nolint:errcheck // role comes from Roles
			next++
		}
	}
	return set, nil
}

func parseRegionLine(line string, role Role) (Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Region{}, fmt.Errorf("want \"lo hi\", got %q", line)
	}
	lo, err := strconv.Atoi(fields[0])
	if err != nil {
		return Region{}, err
	}
	hi, err := strconv.Atoi(fields[1])
	if err != nil {
		return Region{}, err
	}
	return Restore(lo, hi, role)
}

// SaveList writes s to path, appending [ListExt] unless path already ends
// with it. It returns the path written.
func SaveList(path string, s *Set) (string, error) {
	if !strings.HasSuffix(path, ListExt) {
		path += ListExt
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("roi: create %s: %w", path, err)
	}
	if err := WriteList(f, s); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("roi: close %s: %w", path, err)
	}
	return path, nil
}

// LoadList reads an ROI list from path.
func LoadList(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roi: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadList(f)
}
