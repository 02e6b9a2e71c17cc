package idxstats

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
)

// appendBAIRef appends one reference's index section: no regular bins, no
// intervals, just a metadata pseudo-bin whose second chunk carries the given
// counts.
func appendBAIRef(buf *bytes.Buffer, mapped, unmapped uint64) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, int32(1))
	_ = binary.Write(buf, le, uint32(metadataBin))
	_ = binary.Write(buf, le, int32(2))
	_ = binary.Write(buf, le, uint64(0))
	_ = binary.Write(buf, le, uint64(0))
	_ = binary.Write(buf, le, mapped)
	_ = binary.Write(buf, le, unmapped)
	_ = binary.Write(buf, le, int32(0))
}

func writeBAI(refCounts [][2]uint64) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{'B', 'A', 'I', 0x1})
	_ = binary.Write(&buf, binary.LittleEndian, int32(len(refCounts)))
	for _, counts := range refCounts {
		appendBAIRef(&buf, counts[0], counts[1])
	}
	return buf.Bytes()
}

func TestReadIndexMeta(t *testing.T) {
	data := writeBAI([][2]uint64{{120, 2}, {500, 10}})
	meta, err := readIndexMeta(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.EQ(t, meta, []refMeta{{mapped: 120, unmapped: 2}, {mapped: 500, unmapped: 10}})
}

func TestReadIndexMetaBadMagic(t *testing.T) {
	_, err := readIndexMeta(bytes.NewReader([]byte("BAM\x01")))
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "invalid magic")
}

func TestReadBAM(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	refY, err := sam.NewReference("chrY", "", "", 59373566, nil, nil)
	assert.NoError(t, err)
	refX, err := sam.NewReference("chrX", "", "", 155270560, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{refY, refX})
	assert.NoError(t, err)

	var buf bytes.Buffer
	bw, err := bam.NewWriter(&buf, header, 1)
	assert.NoError(t, err)
	assert.NoError(t, bw.Close())

	bamPath := filepath.Join(tmpdir, "sample.bam")
	assert.NoError(t, ioutil.WriteFile(bamPath, buf.Bytes(), 0644))
	baiData := writeBAI([][2]uint64{{120, 2}, {500, 10}})
	assert.NoError(t, ioutil.WriteFile(bamPath+".bai", baiData, 0644))

	records, err := ReadBAM(bamPath)
	assert.NoError(t, err)
	assert.EQ(t, records, []Record{
		{Name: "chrY", Length: 59373566, Mapped: 120, Unmapped: 2},
		{Name: "chrX", Length: 155270560, Mapped: 500, Unmapped: 10},
	})
}

func TestReadBAMMissingIndex(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	refY, err := sam.NewReference("chrY", "", "", 100, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{refY})
	assert.NoError(t, err)
	var buf bytes.Buffer
	bw, err := bam.NewWriter(&buf, header, 1)
	assert.NoError(t, err)
	assert.NoError(t, bw.Close())
	bamPath := filepath.Join(tmpdir, "noindex.bam")
	assert.NoError(t, ioutil.WriteFile(bamPath, buf.Bytes(), 0644))

	_, err = ReadBAM(bamPath)
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "index")
}
