package state

import (
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

// IncidentDetails describes an open incident.
type IncidentDetails struct {
	Key                  int64  `json:"key"`
	BpmnProcessID        string `json:"bpmnProcessId"`
	ProcessDefinitionKey int64  `json:"processDefinitionKey"`
	ProcessInstanceKey   int64  `json:"processInstanceKey"`
	ElementInstanceKey   int64  `json:"elementInstanceKey"`
	ElementID            string `json:"elementId"`
	JobKey               int64  `json:"jobKey"`
	VariableScopeKey     int64  `json:"variableScopeKey"`
	ErrorType            string `json:"errorType"`
	ErrorMessage         string `json:"errorMessage"`
}

func newIncidentDetails(key int64, value []byte) (IncidentDetails, error) {
	f, err := decodeFields(value)
	if err != nil {
		return IncidentDetails{}, err
	}
	// The record is nested in the stored incident.
	if rec := f.object("incidentRecord"); rec != nil {
		f = rec
	}
	return IncidentDetails{
		Key:                  key,
		BpmnProcessID:        f.text("bpmnProcessId"),
		ProcessDefinitionKey: f.long("processDefinitionKey"),
		ProcessInstanceKey:   f.long("processInstanceKey"),
		ElementInstanceKey:   f.long("elementInstanceKey"),
		ElementID:            f.text("elementId"),
		JobKey:               f.long("jobKey"),
		VariableScopeKey:     f.long("variableScopeKey"),
		ErrorType:            f.text("errorType"),
		ErrorMessage:         f.text("errorMessage"),
	}, nil
}

// Incidents lists the incidents in key order.
func (r *Reader) Incidents() (Listing[IncidentDetails], error) {
	out := Listing[IncidentDetails]{Items: []IncidentDetails{}}
	err := r.Each(ForCategory(keyformat.Incidents), func(e Entry) error {
		keys, err := keyLongs(longKey, e.Key)
		if err != nil {
			out.Errors = append(out.Errors, valueError(e, err))
			return nil
		}
		inc, err := newIncidentDetails(keys[0], e.Value)
		if err != nil {
			out.Errors = append(out.Errors, valueError(e, err))
			return nil
		}
		out.Items = append(out.Items, inc)
		return nil
	})
	return out, err
}

// Incident returns the incident with the given key, or ErrNotFound.
func (r *Reader) Incident(key int64) (IncidentDetails, error) {
	value, err := r.GetLong(keyformat.Incidents, key)
	if err != nil {
		return IncidentDetails{}, err
	}
	return newIncidentDetails(key, value)
}
