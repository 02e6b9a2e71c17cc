package idxstats

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/pkg/errors"
)

// metadataBin is the pseudo-bin number under which .bai files store
// per-reference mapped/unmapped read counts.
const metadataBin = 37450

// refMeta holds the mapped/unmapped counts from one reference's metadata
// pseudo-bin.
type refMeta struct {
	mapped   uint64
	unmapped uint64
}

// ReadBAM computes idxstats records for a BAM file directly from its header
// and the adjacent "<path>.bai" index, the way "samtools idxstats" does.
// References without a metadata pseudo-bin in the index report zero counts.
func ReadBAM(path string) (records []Record, err error) {
	ctx := vcontext.Background()
	var bamIn file.File
	if bamIn, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := bamIn.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	bamr, err := bam.NewReader(bamIn.Reader(ctx), 1)
	if err != nil {
		return nil, errors.Wrapf(err, "reading BAM header of %s", path)
	}
	defer func() {
		if cerr := bamr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	refs := bamr.Header().Refs()

	baiPath := path + ".bai"
	var baiIn file.File
	if baiIn, err = file.Open(ctx, baiPath); err != nil {
		return nil, errors.Wrapf(err, "opening BAM index for %s", path)
	}
	defer func() {
		if cerr := baiIn.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	meta, err := readIndexMeta(bufio.NewReader(baiIn.Reader(ctx)))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", baiPath)
	}
	if len(meta) != len(refs) {
		return nil, errors.Errorf("%s: index has %d references, BAM header has %d", baiPath, len(meta), len(refs))
	}

	records = make([]Record, len(refs))
	for i, ref := range refs {
		records[i] = Record{
			Name:     ref.Name(),
			Length:   int64(ref.Len()),
			Mapped:   int64(meta[i].mapped),
			Unmapped: int64(meta[i].unmapped),
		}
	}
	return records, nil
}

// readIndexMeta decodes a .bai index stream, keeping only the per-reference
// metadata pseudo-bin counts and skipping all chunk and linear-interval
// offsets.
func readIndexMeta(r io.Reader) ([]refMeta, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != [4]byte{'B', 'A', 'I', 0x1} {
		return nil, errors.Errorf("bam index invalid magic: %v", magic)
	}

	var refCount int32
	if err := binary.Read(r, binary.LittleEndian, &refCount); err != nil {
		return nil, err
	}
	meta := make([]refMeta, refCount)
	for refID := int32(0); refID < refCount; refID++ {
		var binCount int32
		if err := binary.Read(r, binary.LittleEndian, &binCount); err != nil {
			return nil, err
		}
		for b := int32(0); b < binCount; b++ {
			var binNum uint32
			if err := binary.Read(r, binary.LittleEndian, &binNum); err != nil {
				return nil, err
			}
			var chunkCount int32
			if err := binary.Read(r, binary.LittleEndian, &chunkCount); err != nil {
				return nil, err
			}
			if binNum == metadataBin {
				if chunkCount != 2 {
					return nil, errors.Errorf("metadata bin has %d chunks, should have 2", chunkCount)
				}
				// Chunk 0 holds the start/end virtual offsets of the
				// reference's records; chunk 1 repurposes its two offsets as
				// the mapped and unmapped read counts.
				var offsets [4]uint64
				for c := range offsets {
					if err := binary.Read(r, binary.LittleEndian, &offsets[c]); err != nil {
						return nil, err
					}
				}
				meta[refID] = refMeta{mapped: offsets[2], unmapped: offsets[3]}
				continue
			}
			for c := int32(0); c < chunkCount; c++ {
				var begin, end uint64
				if err := binary.Read(r, binary.LittleEndian, &begin); err != nil {
					return nil, err
				}
				if err := binary.Read(r, binary.LittleEndian, &end); err != nil {
					return nil, err
				}
			}
		}
		var intervalCount int32
		if err := binary.Read(r, binary.LittleEndian, &intervalCount); err != nil {
			return nil, err
		}
		for inv := int32(0); inv < intervalCount; inv++ {
			var ioffset uint64
			if err := binary.Read(r, binary.LittleEndian, &ioffset); err != nil {
				return nil, err
			}
		}
	}
	return meta, nil
}
