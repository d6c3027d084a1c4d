// Package ingest decodes provider exports into the typed rows the engine
// consumes. Nothing untyped crosses this boundary: unknown fields,
// fractional counts and malformed numbers are rejected here.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/serpsmith/internal/models"
)

// ErrDecode wraps every decoding failure.
var ErrDecode = errors.New("decode failed")

// Format of an input file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	default:
		return FormatJSON
	}
}

// rawRow mirrors a reporting API row. Counts arrive as floats in several
// provider exports, so they are decoded loosely and checked for integrality.
type rawRow struct {
	Keys        []string `json:"keys" yaml:"keys"`
	Entity      string   `json:"entity" yaml:"entity"`
	Query       string   `json:"query" yaml:"query"`
	Page        string   `json:"page" yaml:"page"`
	Clicks      float64  `json:"clicks" yaml:"clicks"`
	Impressions float64  `json:"impressions" yaml:"impressions"`
	CTR         float64  `json:"ctr" yaml:"ctr"`
	Position    float64  `json:"position" yaml:"position"`
}

type rawEnvelope struct {
	Rows                    []rawRow `json:"rows" yaml:"rows"`
	ResponseAggregationType string   `json:"responseAggregationType" yaml:"responseAggregationType"`
}

// DecodeRows reads performance rows. JSON and YAML accept either a bare
// list of rows or a search-console style {"rows": [...]} envelope where the
// entity is the first element of "keys".
func DecodeRows(r io.Reader, format Format) ([]models.PerformanceRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrDecode, err)
	}

	var raws []rawRow
	switch format {
	case FormatCSV:
		return decodeCSV(data)
	case FormatYAML:
		raws, err = decodeYAMLRows(data)
	case FormatJSON, "":
		raws, err = decodeJSONRows(data)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrDecode, format)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]models.PerformanceRow, 0, len(raws))
	for i, raw := range raws {
		row, err := raw.typed()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDecode, i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeJSONRows(data []byte) ([]rawRow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var raws []rawRow
		if err := strictJSON(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return raws, nil
	}

	var env rawEnvelope
	if err := strictJSON(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return env.Rows, nil
}

func decodeYAMLRows(data []byte) ([]rawRow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var raws []rawRow
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := strictYAML(data, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	}

	var env rawEnvelope
	if err := strictYAML(data, &env); err != nil {
		return nil, err
	}
	return env.Rows, nil
}

func (r rawRow) typed() (models.PerformanceRow, error) {
	entity := r.Entity
	switch {
	case entity != "":
	case len(r.Keys) > 0:
		entity = r.Keys[0]
	case r.Query != "":
		entity = r.Query
	default:
		entity = r.Page
	}
	if strings.TrimSpace(entity) == "" {
		return models.PerformanceRow{}, errors.New("missing entity")
	}

	clicks, err := count("clicks", r.Clicks)
	if err != nil {
		return models.PerformanceRow{}, err
	}
	impressions, err := count("impressions", r.Impressions)
	if err != nil {
		return models.PerformanceRow{}, err
	}
	if math.IsNaN(r.CTR) || math.IsInf(r.CTR, 0) {
		return models.PerformanceRow{}, errors.New("ctr is not a number")
	}

	return models.PerformanceRow{
		Entity:      entity,
		Clicks:      clicks,
		Impressions: impressions,
		CTR:         r.CTR,
		Position:    r.Position,
	}, nil
}

// count accepts whole numbers only. Sign is left for the normalizer to judge.
func count(field string, v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%s must be a whole number, got %v", field, v)
	}
	if math.Abs(v) > 1<<53 {
		return 0, fmt.Errorf("%s out of range: %v", field, v)
	}
	return int64(v), nil
}

var csvColumns = []string{"entity", "clicks", "impressions", "ctr", "position"}

func decodeCSV(data []byte) ([]models.PerformanceRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(records) == 0 {
		return []models.PerformanceRow{}, nil
	}

	header := make(map[string]int)
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	// search console exports name the entity column after the dimension
	for _, alias := range []string{"query", "page", "top queries", "top pages"} {
		if _, ok := header["entity"]; ok {
			break
		}
		if i, ok := header[alias]; ok {
			header["entity"] = i
		}
	}
	for _, col := range csvColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: csv header missing column %q", ErrDecode, col)
		}
	}

	rows := make([]models.PerformanceRow, 0, len(records)-1)
	for line, rec := range records[1:] {
		raw := rawRow{Entity: rec[header["entity"]]}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"clicks", &raw.Clicks},
			{"impressions", &raw.Impressions},
			{"ctr", &raw.CTR},
			{"position", &raw.Position},
		}
		for _, f := range fields {
			v, err := parseNumber(rec[header[f.name]])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %v", ErrDecode, line+2, f.name, err)
			}
			*f.dst = v
		}

		row, err := raw.typed()
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDecode, line+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseNumber accepts plain numbers and percentages such as "4.5%".
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return v / 100, nil
	}
	return strconv.ParseFloat(s, 64)
}

// DecodeCandidates reads gap candidates from JSON or YAML.
func DecodeCandidates(r io.Reader, format Format) ([]models.GapCandidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrDecode, err)
	}

	var candidates []models.GapCandidate
	switch format {
	case FormatYAML:
		err = strictYAML(data, &candidates)
	case FormatJSON, "":
		if err = strictJSON(data, &candidates); err != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
		}
	default:
		err = fmt.Errorf("%w: unsupported format %q for candidates", ErrDecode, format)
	}
	if err != nil {
		return nil, err
	}

	for i, c := range candidates {
		if strings.TrimSpace(c.Input.Keyword) == "" {
			return nil, fmt.Errorf("%w: candidate %d: missing keyword", ErrDecode, i)
		}
	}
	return candidates, nil
}

// DecodeBenchmark reads a single Benchmark from JSON or YAML.
func DecodeBenchmark(r io.Reader, format Format) (models.Benchmark, error) {
	var b models.Benchmark
	data, err := io.ReadAll(r)
	if err != nil {
		return b, fmt.Errorf("%w: read input: %v", ErrDecode, err)
	}
	switch format {
	case FormatYAML:
		err = strictYAML(data, &b)
	case FormatJSON, "":
		if err = strictJSON(data, &b); err != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
		}
	default:
		err = fmt.Errorf("%w: unsupported format %q for benchmark", ErrDecode, format)
	}
	return b, err
}

func strictJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func strictYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
