package floorplan

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNoSelection         = errors.New("no table selected")
	ErrDuplicateID         = errors.New("table id already exists")
	ErrTableNotFound       = errors.New("table not found")
	ErrUnknownPointerEvent = errors.New("unknown pointer event")
	ErrUnknownDialog       = errors.New("unknown dialog")
)

// ValidationError collects one message per offending form field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// OrNil returns nil when nothing was collected so callers can return it as error directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid table: " + strings.Join(parts, "; ")
}
