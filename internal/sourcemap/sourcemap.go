// Package sourcemap builds Source Map v3 documents that map generated
// JavaScript back to the GLSL it was generated from.
//
// See https://sourcemaps.info/spec.html for the format.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/HugoDaniel/glslkit/internal/diagnostic"
)

// Map is a Source Map v3 document for a single source file.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Segment maps a generated position to a source position. Lines and columns
// are 0-based; columns count UTF-16 code units.
type Segment struct {
	GenLine int
	GenCol  int
	SrcLine int
	SrcCol  int
	Name    int // index into Map.Names, -1 for none
}

// Options describes the files a map refers to.
type Options struct {
	File           string // generated file name
	SourceName     string // original file name
	IncludeContent bool   // embed the original source
}

// Builder collects segments in generated order.
type Builder struct {
	source   string
	lines    *diagnostic.LineIndex
	segments []Segment
	names    map[string]int
	nameList []string
}

// NewBuilder creates a builder for maps into source.
func NewBuilder(source string) *Builder {
	return &Builder{
		source: source,
		lines:  diagnostic.NewLineIndex(source),
		names:  make(map[string]int),
	}
}

// Add maps the generated position to a byte offset of the source. A second
// segment at the same generated position is dropped.
func (b *Builder) Add(genLine, genCol, srcOffset int, name string) {
	if n := len(b.segments); n > 0 {
		last := b.segments[n-1]
		if last.GenLine == genLine && last.GenCol == genCol {
			return
		}
	}
	line, col := b.sourcePosition(srcOffset)
	seg := Segment{GenLine: genLine, GenCol: genCol, SrcLine: line, SrcCol: col, Name: -1}
	if name != "" {
		idx, ok := b.names[name]
		if !ok {
			idx = len(b.nameList)
			b.names[name] = idx
			b.nameList = append(b.nameList, name)
		}
		seg.Name = idx
	}
	b.segments = append(b.segments, seg)
}

func (b *Builder) sourcePosition(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.source) {
		offset = len(b.source)
	}
	line, byteCol := b.lines.ByteOffsetToLineColumn(offset)
	return line, utf16Len(b.source[offset-byteCol : offset])
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Segments returns the collected segments.
func (b *Builder) Segments() []Segment {
	return b.segments
}

// Build encodes the collected segments.
func (b *Builder) Build(opts Options) *Map {
	m := &Map{
		Version:  3,
		File:     opts.File,
		Sources:  []string{opts.SourceName},
		Names:    append([]string{}, b.nameList...),
		Mappings: Encode(b.segments),
	}
	if opts.IncludeContent {
		m.SourcesContent = []string{b.source}
	}
	return m
}

// Encode renders segments, sorted by generated position, as a mappings
// string. Every field but the generated column is relative to the previous
// segment; the generated column restarts on each line.
func Encode(segments []Segment) string {
	var buf []byte
	var prev Segment
	prevName := 0
	line := 0
	for i, seg := range segments {
		if i == 0 || seg.GenLine != line {
			for ; line < seg.GenLine; line++ {
				buf = append(buf, ';')
			}
			prev.GenCol = 0
		} else {
			buf = append(buf, ',')
		}
		buf = appendVLQ(buf, seg.GenCol-prev.GenCol)
		buf = appendVLQ(buf, 0) // single source
		buf = appendVLQ(buf, seg.SrcLine-prev.SrcLine)
		buf = appendVLQ(buf, seg.SrcCol-prev.SrcCol)
		if seg.Name >= 0 {
			buf = appendVLQ(buf, seg.Name-prevName)
			prevName = seg.Name
		}
		prev = seg
	}
	return string(buf)
}

// Decode parses a mappings string produced by Encode.
func Decode(mappings string) ([]Segment, error) {
	var segments []Segment
	var srcLine, srcCol, name int
	for genLine, group := range strings.Split(mappings, ";") {
		genCol := 0
		for _, field := range strings.Split(group, ",") {
			if field == "" {
				continue
			}
			var values []int
			for len(field) > 0 {
				v, n, err := readVLQ(field)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", genLine+1)
				}
				values = append(values, v)
				field = field[n:]
			}
			switch len(values) {
			case 1, 4, 5:
			default:
				return nil, errors.Errorf("line %d: segment has %d fields", genLine+1, len(values))
			}
			genCol += values[0]
			seg := Segment{GenLine: genLine, GenCol: genCol, Name: -1}
			if len(values) >= 4 {
				srcLine += values[2]
				srcCol += values[3]
				seg.SrcLine, seg.SrcCol = srcLine, srcCol
			}
			if len(values) == 5 {
				name += values[4]
				seg.Name = name
			}
			segments = append(segments, seg)
		}
	}
	return segments, nil
}

// JSON returns the map as a JSON document.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// DataURL returns the map as a base64 data URL for inline embedding.
func (m *Map) DataURL() (string, error) {
	data, err := m.JSON()
	if err != nil {
		return "", err
	}
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Comment returns the trailing JavaScript comment that links generated
// code to its map.
func Comment(url string) string {
	return "//# sourceMappingURL=" + url
}
