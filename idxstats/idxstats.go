// Package idxstats reads per-reference alignment summary statistics of the
// kind printed by "samtools idxstats": one tab-delimited row per reference
// sequence with name, sequence length, mapped read count, and unmapped read
// count.  Plain and gzipped text files are supported, as are BAM files with
// an adjacent .bai index (the counts are then taken from the index metadata
// directly).
package idxstats

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// Record is one row of an idxstats report: a reference sequence and its read
// counts.
type Record struct {
	// Name is the reference sequence name, e.g. "chrX".
	Name string
	// Length is the reference sequence length in bases.
	Length int64
	// Mapped is the number of reads mapped to this reference.
	Mapped int64
	// Unmapped is the number of placed-but-unmapped reads associated with
	// this reference.
	Unmapped int64
}

// NoRefError reports a reference sequence name that a caller required but an
// input file does not contain.
type NoRefError struct {
	Path string
	Ref  string
}

func (e *NoRefError) Error() string {
	return fmt.Sprintf("reference sequence %q not found in %s", e.Ref, e.Path)
}

// RecordError reports a malformed row in an idxstats text file.
type RecordError struct {
	Path string
	Line int
	Msg  string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Path, e.Line, e.Msg)
}

// ListDir returns the names of the regular files in dir whose names match
// ext, in lexical order.  Hidden files (leading '.') and subdirectories are
// always skipped.  A non-empty ext matches names ending with that string; an
// empty ext matches only names with no extension at all.
func ListDir(dir, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("idxstats.ListDir: %s is not a directory", dir)
	}
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if ext == "" {
			if filepath.Ext(name) != "" {
				continue
			}
		} else if !strings.HasSuffix(name, ext) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Read parses idxstats rows from reader.  path is used only for error
// messages.  Blank lines and lines starting with '#' are skipped; rows may
// carry extra trailing columns, which are ignored.
func Read(reader io.Reader, path string) ([]Record, error) {
	var (
		records []Record
		tokens  [4][]byte
		lineIdx int
	)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := splitTabs(tokens[:], curLine)
		if nToken == 0 {
			continue
		}
		if tokens[0][0] == '#' {
			continue
		}
		if nToken < 4 {
			return nil, &RecordError{path, lineIdx, fmt.Sprintf("%d columns, want at least 4", nToken)}
		}
		length, err := strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 64)
		if err != nil || length < 0 {
			return nil, &RecordError{path, lineIdx, fmt.Sprintf("invalid sequence length %q", tokens[1])}
		}
		mapped, err := strconv.ParseInt(gunsafe.BytesToString(tokens[2]), 10, 64)
		if err != nil || mapped < 0 {
			return nil, &RecordError{path, lineIdx, fmt.Sprintf("invalid mapped count %q", tokens[2])}
		}
		unmapped, err := strconv.ParseInt(gunsafe.BytesToString(tokens[3]), 10, 64)
		if err != nil || unmapped < 0 {
			return nil, &RecordError{path, lineIdx, fmt.Sprintf("invalid unmapped count %q", tokens[3])}
		}
		records = append(records, Record{
			Name:     string(tokens[0]),
			Length:   length,
			Mapped:   mapped,
			Unmapped: unmapped,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadFile is a wrapper for Read that takes a path instead of an io.Reader.
// Gzipped files are decompressed transparently.
func ReadFile(path string) (records []Record, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return Read(reader, path)
}

// FindRef returns the record for the reference sequence with the given name.
// When the name repeats, the first occurrence wins.
func FindRef(records []Record, name string) (Record, bool) {
	for _, rec := range records {
		if rec.Name == name {
			return rec, true
		}
	}
	return Record{}, false
}

// RequireRef is FindRef returning a NoRefError when the name is absent.
func RequireRef(records []Record, name, path string) (Record, error) {
	rec, ok := FindRef(records, name)
	if !ok {
		return Record{}, &NoRefError{Path: path, Ref: name}
	}
	return rec, nil
}

// splitTabs saves up to len(tokens) tab-separated tokens from curLine,
// returning the number saved.  An empty field ends tokenization early;
// idxstats columns are never legitimately empty, so the caller's
// column-count check reports it.
func splitTabs(tokens [][]byte, curLine []byte) int {
	if len(curLine) == 0 {
		return 0
	}
	pos := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		if pos > lineLen {
			return tokenIdx
		}
		posEnd := pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] == '\t' {
				break
			}
		}
		if posEnd == pos {
			return tokenIdx
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
		pos = posEnd + 1
	}
	return len(tokens)
}
