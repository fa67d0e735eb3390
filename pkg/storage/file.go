// Package storage keeps the task list in a flat file, one JSON object per line.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nhzaci/ip/pkg/model"
)

const schemaURL = "duke://task.schema.json"

// Every stored line must satisfy this schema before it becomes a task.
const taskSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind", "done", "message"],
  "additionalProperties": false,
  "properties": {
    "id": {"type": "string"},
    "kind": {"enum": ["T", "D", "E"]},
    "done": {"type": "boolean"},
    "message": {"type": "string", "minLength": 1},
    "at": {"type": "string", "pattern": "^[0-9]{2}/[0-9]{2}/[0-9]{4} [0-9]{4}$"}
  },
  "if": {"properties": {"kind": {"enum": ["D", "E"]}}},
  "then": {"required": ["at"]}
}`

// Timestamp stores a time as DD/MM/YYYY HHMM.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	t, err := model.ParseTime(s)
	if err != nil {
		return fmt.Errorf("failed to parse stored time '%s': %w", s, err)
	}
	ts.Time = t
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + model.FormatTime(ts.Time) + `"`), nil
}

// Record is the stored form of one task.
type Record struct {
	ID      string     `json:"id,omitempty"`
	Kind    model.Kind `json:"kind"`
	Done    bool       `json:"done"`
	Message string     `json:"message"`
	At      *Timestamp `json:"at,omitempty"`
}

func recordOf(task *model.Task) Record {
	rec := Record{
		ID:      task.ID(),
		Kind:    task.Kind(),
		Done:    task.Done(),
		Message: task.Message(),
	}
	if task.HasTime() {
		rec.At = &Timestamp{Time: task.At()}
	}
	return rec
}

func (r Record) task() (*model.Task, error) {
	var at time.Time
	if r.At != nil {
		at = r.At.Time
	}
	return model.Restore(r.ID, r.Kind, r.Message, r.Done, at)
}

// File is a task file on disk.
type File struct {
	Path   string
	schema *jsonschema.Schema
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("data file path is empty")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(taskSchema)); err != nil {
		return nil, fmt.Errorf("failed to add task schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile task schema: %w", err)
	}
	return &File{Path: path, schema: schema}, nil
}

// Load reads all tasks. A missing file is an empty list.
func (f *File) Load() ([]*model.Task, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.Task{}, nil
		}
		return nil, err
	}
	defer file.Close()
	return f.Decode(file)
}

// Decode reads consecutive task records from r. Records that fail
// validation are skipped with a warning so one bad line does not lose the
// rest of the list.
func (f *File) Decode(r io.Reader) ([]*model.Task, error) {
	tasks := []*model.Task{}
	decoder := json.NewDecoder(r)
	for n := 1; ; n++ {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task record %d: %w", n, err)
		}

		task, err := f.decodeRecord(raw)
		if err != nil {
			log.Warn("skipping stored task", "record", n, "file", f.Path, "err", err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (f *File) decodeRecord(raw json.RawMessage) (*model.Task, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if err := f.schema.Validate(doc); err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.task()
}

// Encode writes one line per task. Vacant slots are not stored.
func Encode(w io.Writer, tasks []*model.Task) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for _, task := range tasks {
		if task == nil {
			continue
		}
		if err := encoder.Encode(recordOf(task)); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the file contents with tasks.
func (f *File) Save(tasks []*model.Task) error {
	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
