// Package workload reads simulation inputs from files and generates random
// ones.
package workload

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miretskiy/mlqsim/simulator"
)

// csvHeader is the expected column order of CSV workloads
var csvHeader = []string{"id", "arrival", "burst", "priority"}

// Load reads a workload file, choosing the format by extension
// (.json, .yaml/.yml, .csv). CSV files carry processes only and get the
// default config. Zero config fields are filled from simulator.DefaultConfig.
func Load(path string) (simulator.Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return simulator.Workload{}, fmt.Errorf("failed to read workload: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".csv":
		procs, err := LoadCSV(bytes.NewReader(data))
		if err != nil {
			return simulator.Workload{}, err
		}
		return simulator.Workload{Config: simulator.DefaultConfig(), Processes: procs}, nil
	default:
		return simulator.Workload{}, fmt.Errorf("unsupported workload format %q (want .json, .yaml, .yml or .csv)", ext)
	}
}

// ParseJSON decodes a JSON workload
func ParseJSON(data []byte) (simulator.Workload, error) {
	var w simulator.Workload
	if err := json.Unmarshal(data, &w); err != nil {
		return simulator.Workload{}, fmt.Errorf("failed to parse JSON workload: %w", err)
	}
	w.ApplyDefaults()
	return w, nil
}

// ParseYAML decodes a YAML workload
func ParseYAML(data []byte) (simulator.Workload, error) {
	var w simulator.Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return simulator.Workload{}, fmt.Errorf("failed to parse YAML workload: %w", err)
	}
	w.ApplyDefaults()
	return w, nil
}

// LoadCSV reads "id,arrival,burst,priority" rows. A header row with those
// names is optional. Values are not range-checked here; NewSimulator does that.
func LoadCSV(r io.Reader) ([]simulator.ProcessDescriptor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var procs []simulator.ProcessDescriptor
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV workload: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), csvHeader[0]) {
			continue
		}

		var values [4]int
		for i, field := range record {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("CSV row %d: invalid %s %q: %w", line, csvHeader[i], field, err)
			}
			values[i] = v
		}
		procs = append(procs, simulator.ProcessDescriptor{
			ID:          values[0],
			ArrivalTime: values[1],
			BurstTime:   values[2],
			Priority:    values[3],
		})
	}
	return procs, nil
}

// WriteCSV writes procs in the format LoadCSV reads, header included
func WriteCSV(w io.Writer, procs []simulator.ProcessDescriptor) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range procs {
		row := []string{
			strconv.Itoa(p.ID),
			strconv.Itoa(p.ArrivalTime),
			strconv.Itoa(p.BurstTime),
			strconv.Itoa(p.Priority),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
