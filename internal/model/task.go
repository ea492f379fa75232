package model

import (
	"encoding/json"
	"strconv"
)

// TaskFilter selects which listing preset to apply upstream
type TaskFilter string

const (
	FilterPending TaskFilter = "pending"
	FilterExpired TaskFilter = "expired"
)

// FlexID tolerates upstream ids arriving as JSON numbers or strings.
// It marshals back as a number whenever the value is numeric, so
// submission payloads keep the exact shape the platform issued.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = FlexID(s)
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(f), 10, 64); err == nil {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

func (f FlexID) String() string {
	return string(f)
}

// TaskRef is a task summary item as returned by the listing endpoint.
// Only the id is interpreted; everything else is passed through untouched.
type TaskRef struct {
	ID FlexID `json:"id"`
}

// Task is the full task detail fetched per id
type Task struct {
	ID        FlexID     `json:"id"`
	Questions []Question `json:"questions"`
}

// Pacing bounds the randomized human-pacing delay, in minutes
type Pacing struct {
	TimeMin int
	TimeMax int
	IsDraft bool
}

// TaskOutcome is the per-task result of a submission attempt.
// ProcessingTime is the pacing delay that was applied, in seconds.
type TaskOutcome struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TaskID         FlexID `json:"task_id"`
	Result         any    `json:"result,omitempty"`
	ProcessingTime int    `json:"processing_time,omitempty"`
}
