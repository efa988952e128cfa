package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"taskboard/internal/domain"
	"time"

	"github.com/araddon/dateparse"
)

type createTaskReq struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     string      `json:"dueDate"`
	Duration    optionalInt `json:"duration"`
}

func (req createTaskReq) toNewTask() (domain.NewTask, error) {
	in := domain.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration.v,
	}

	var err error
	if in.Status, err = parseStatus(req.Status); err != nil {
		return domain.NewTask{}, err
	}
	if in.Priority, err = parsePriority(req.Priority); err != nil {
		return domain.NewTask{}, err
	}
	if in.DueDate, err = parseDueDate(req.DueDate); err != nil {
		return domain.NewTask{}, err
	}
	return in, nil
}

type updateTaskReq struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     string      `json:"dueDate"`
	Duration    optionalInt `json:"duration"`
}

func (req updateTaskReq) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration.v,
	}

	var err error
	if patch.Status, err = parseStatus(req.Status); err != nil {
		return domain.TaskPatch{}, err
	}
	if patch.Priority, err = parsePriority(req.Priority); err != nil {
		return domain.TaskPatch{}, err
	}
	if patch.DueDate, err = parseDueDate(req.DueDate); err != nil {
		return domain.TaskPatch{}, err
	}
	return patch, nil
}

type messageResp struct {
	Message string `json:"message"`
}

// empty strings mean "not provided", matching what HTML forms send
func parseStatus(s string) (*domain.Status, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	st, err := domain.ParseStatus(s)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func parsePriority(s string) (*domain.Priority, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	p, err := domain.ParsePriority(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// parseDueDate accepts RFC 3339 as well as the date-only and local
// datetime strings browsers produce. Zone-less values are read as UTC.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil, &domain.ValidationError{Field: "dueDate", Message: fmt.Sprintf("invalid due date %q", s)}
	}
	return &t, nil
}

// optionalInt decodes a JSON integer, an integer string, "" or null.
// Fractions and values outside the int range are rejected.
type optionalInt struct {
	v *int
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		o.v = nil
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			o.v = nil
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return &domain.ValidationError{Field: "duration", Message: "Duration must be a whole number of minutes"}
	}
	o.v = &n
	return nil
}
