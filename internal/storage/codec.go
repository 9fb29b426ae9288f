package storage

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"adhesim/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is the version stamp new records are written with.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeScan(r model.ScanRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeScan(data []byte) (model.ScanRecord, error) {
	var record model.ScanRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.ScanRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.ScanRecord{}, err
	}
	return record, nil
}

func EncodeSimulation(r model.SimulationRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeSimulation(data []byte) (model.SimulationRecord, error) {
	var record model.SimulationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SimulationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.SimulationRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}

func sortRuns(runs []model.RunRef) {
	slices.SortFunc(runs, func(a, b model.RunRef) int {
		return cmp.Or(cmp.Compare(a.CreatedAtUTC, b.CreatedAtUTC), cmp.Compare(a.RunID, b.RunID))
	})
}
