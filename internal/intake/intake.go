// Package intake decodes the project input document produced by the
// planning collaborator.
package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/sitegraph/internal/graph"
)

// Request is the decoded input document.
type Request struct {
	Tasks    []graph.RawTask `json:"tasks"`
	RegionID string          `json:"regionId"`
}

// required fields every task record must carry. A missing field would
// otherwise decode as a zero value and schedule silently. name, category,
// isCheckpoint, dependencies and costComponents are optional and default
// to empty, other, false, none and zero.
var required = []string{"id", "durationDays"}

// Decode reads and checks one input document.
func Decode(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Parse(data)
}

// DecodeFile reads an input document from path, or from stdin when path
// is "-".
func DecodeFile(path string) (*Request, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Parse checks the raw JSON shape and decodes it.
func Parse(data []byte) (*Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse input: malformed JSON")
	}
	if err := checkShape(gjson.ParseBytes(data)); err != nil {
		return nil, err
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return &req, nil
}

func checkShape(doc gjson.Result) error {
	tasks := doc.Get("tasks")
	if !tasks.Exists() {
		return &graph.ValidationError{Field: "tasks", Reason: "missing required field"}
	}
	if !tasks.IsArray() {
		return &graph.ValidationError{Field: "tasks", Reason: "must be an array"}
	}
	if region := doc.Get("regionId"); region.Exists() && region.Type != gjson.String {
		return &graph.ValidationError{Field: "regionId", Reason: "must be a string"}
	}

	for i, item := range tasks.Array() {
		if err := checkTask(i, item); err != nil {
			return err
		}
	}
	return nil
}

func checkTask(index int, item gjson.Result) error {
	if !item.IsObject() {
		return &graph.ValidationError{Field: "tasks", Reason: fmt.Sprintf("entry %d is not an object", index)}
	}
	id := item.Get("id").String()
	for _, field := range required {
		if !item.Get(field).Exists() {
			reason := "missing required field"
			if id == "" {
				reason = fmt.Sprintf("task at index %d: missing required field", index)
			}
			return &graph.ValidationError{TaskID: id, Field: field, Reason: reason}
		}
	}
	if v := item.Get("id"); v.Type != gjson.String {
		return &graph.ValidationError{Field: "id", Reason: fmt.Sprintf("task at index %d: must be a string", index)}
	}

	// The raw text must be a plain integer that fits an int: 2.0 and 1e3
	// are numerically whole but encoding/json refuses them for an int field.
	dur := item.Get("durationDays")
	if dur.Type != gjson.Number {
		return &graph.ValidationError{TaskID: id, Field: "durationDays", Reason: fmt.Sprintf("must be an integer, got %s", dur.Raw)}
	}
	if _, err := strconv.Atoi(dur.Raw); err != nil {
		reason := fmt.Sprintf("must be an integer, got %s", dur.Raw)
		if errors.Is(err, strconv.ErrRange) {
			reason = fmt.Sprintf("out of range: %s", dur.Raw)
		}
		return &graph.ValidationError{TaskID: id, Field: "durationDays", Reason: reason}
	}

	if deps := item.Get("dependencies"); deps.Exists() && deps.Type != gjson.Null {
		if !deps.IsArray() {
			return &graph.ValidationError{TaskID: id, Field: "dependencies", Reason: "must be an array of task ids"}
		}
		for i, dep := range deps.Array() {
			if dep.Type != gjson.String {
				return &graph.ValidationError{TaskID: id, Field: "dependencies", Reason: fmt.Sprintf("entry %d must be a string, got %s", i, dep.Raw)}
			}
		}
	}
	if cp := item.Get("isCheckpoint"); cp.Exists() && !cp.IsBool() && cp.Type != gjson.Null {
		return &graph.ValidationError{TaskID: id, Field: "isCheckpoint", Reason: "must be a boolean"}
	}

	costs := item.Get("costComponents")
	if !costs.Exists() || costs.Type == gjson.Null {
		return nil
	}
	if !costs.IsObject() {
		return &graph.ValidationError{TaskID: id, Field: "costComponents", Reason: "must be an object"}
	}
	for _, name := range []string{"labor", "materials", "equipment", "permits"} {
		if v := costs.Get(name); v.Exists() && v.Type != gjson.Number {
			return &graph.ValidationError{TaskID: id, Field: "costComponents." + name, Reason: "must be a number"}
		}
	}
	return nil
}
