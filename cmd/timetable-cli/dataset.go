package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
)

var clockType = reflect.TypeOf(scheduler.Clock(0))

// clockHook turns "HH:MM" strings into scheduler.Clock values.
func clockHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != clockType || from.Kind() != reflect.String {
		return data, nil
	}
	clock, err := scheduler.ParseClock(data.(string))
	if err != nil {
		return nil, err
	}
	return clock, nil
}

// decodeDataset reads a JSON catalog into an engine snapshot. Keys match the
// snapshot's field names case-insensitively; unknown keys are rejected.
func decodeDataset(r io.Reader) (scheduler.Snapshot, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return scheduler.Snapshot{}, fmt.Errorf("parse dataset: %w", err)
	}

	var snapshot scheduler.Snapshot
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(clockHook),
		ErrorUnused: true,
		Result:      &snapshot,
	})
	if err != nil {
		return scheduler.Snapshot{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return scheduler.Snapshot{}, fmt.Errorf("decode dataset: %w", err)
	}
	return snapshot, nil
}
