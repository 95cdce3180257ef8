package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/tuning"
)

const Version = 1

type Header struct {
	Version   int    `json:"version"`
	SystemID  string `json:"system_id"`
	RunID     string `json:"run_id"`
	Digest    string `json:"digest"`
	CreatedAt int64  `json:"created_at"`
}

// SnapshotV1 is a resolved model together with everything needed to rebuild
// it: the input record, the options, and the effective tuning. The record and
// the view are kept as JSON since gob drops pointers to zero values such as
// body 0 or an all-zero economy map.
type SnapshotV1 struct {
	Header Header `json:"header"`

	RecordJSON    []byte   `json:"record"`
	UseIncomplete bool     `json:"use_incomplete"`
	Lenient       bool     `json:"lenient,omitempty"`
	BuildOrder    []string `json:"build_order,omitempty"`

	CatalogDigest string        `json:"catalog_digest"`
	Tuning        tuning.Tuning `json:"tuning"`

	ViewJSON []byte `json:"view"`
}

// FromModel captures m. rec must be the record m was built from.
func FromModel(runID string, createdAt int64, rec system.Record, m *model.Model, catalogDigest string, tune tuning.Tuning) (SnapshotV1, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("encode record: %w", err)
	}
	view, err := json.Marshal(m.View())
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("encode view: %w", err)
	}
	return SnapshotV1{
		Header: Header{
			Version:   Version,
			SystemID:  m.System.ID,
			RunID:     runID,
			Digest:    m.Digest(),
			CreatedAt: createdAt,
		},
		RecordJSON:    raw,
		UseIncomplete: m.Options.UseIncomplete,
		Lenient:       m.Options.Lenient,
		BuildOrder:    append([]string(nil), m.Options.BuildOrder...),
		CatalogDigest: catalogDigest,
		Tuning:        tune,
		ViewJSON:      view,
	}, nil
}

// Record decodes the input record the snapshot was built from.
func (s SnapshotV1) Record() (system.Record, error) {
	var rec system.Record
	if err := json.Unmarshal(s.RecordJSON, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Options returns the model options the snapshot was taken with.
func (s SnapshotV1) Options() model.Options {
	return model.Options{
		UseIncomplete: s.UseIncomplete,
		Lenient:       s.Lenient,
		BuildOrder:    s.BuildOrder,
	}
}

// ResolvedView decodes the view recorded when the snapshot was taken.
func (s SnapshotV1) ResolvedView() (model.View, error) {
	var v model.View
	if err := json.Unmarshal(s.ViewJSON, &v); err != nil {
		return v, fmt.Errorf("decode view: %w", err)
	}
	return v, nil
}

func (s SnapshotV1) Site(id string) (model.SiteView, bool) {
	v, err := s.ResolvedView()
	if err != nil {
		return model.SiteView{}, false
	}
	for _, sv := range v.Sites {
		if sv.ID == id {
			return sv, true
		}
	}
	return model.SiteView{}, false
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// Rebuild resolves the snapshot's record again with its own options and
// tuning and checks that the result matches the recorded digest.
func Rebuild(snap SnapshotV1, cats *catalogs.Catalogs, logger *log.Logger) (*model.Model, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cats.Sites.Digest != snap.CatalogDigest {
		logger.Printf("warn: snapshot %s: catalog digest %s differs from current %s", snap.Header.RunID, snap.CatalogDigest, cats.Sites.Digest)
	}
	rec, err := snap.Record()
	if err != nil {
		return nil, err
	}
	opts := snap.Options()
	opts.Logger = logger
	m, err := model.Build(rec, cats, snap.Tuning, opts)
	if err != nil {
		return nil, err
	}
	if got := m.Digest(); got != snap.Header.Digest {
		return m, fmt.Errorf("digest mismatch: got=%s want=%s", got, snap.Header.Digest)
	}
	return m, nil
}
