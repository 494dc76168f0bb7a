package state

import (
	"errors"

	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

// processCategories hold deployed processes. Newer engines key them by tenant
// and process definition key, older ones by the key alone.
var processCategories = []keyformat.Category{keyformat.ProcessCache, keyformat.DeprecatedProcessCache}

// ProcessMeta summarizes a deployed process.
type ProcessMeta struct {
	BpmnProcessID        string `json:"bpmnProcessId"`
	ResourceName         string `json:"resourceName"`
	ProcessDefinitionKey int64  `json:"processDefinitionKey"`
	Version              int64  `json:"version"`
	TenantID             string `json:"tenantId,omitempty"`
}

// ProcessDetails is a deployed process with its BPMN resource.
type ProcessDetails struct {
	ProcessMeta
	Resource string `json:"resource"`
}

func newProcessDetails(f fields) ProcessDetails {
	return ProcessDetails{
		ProcessMeta: ProcessMeta{
			BpmnProcessID:        f.text("bpmnProcessId"),
			ResourceName:         f.text("resourceName"),
			ProcessDefinitionKey: f.long("key"),
			Version:              f.long("version"),
			TenantID:             f.text("tenantId"),
		},
		Resource: f.bytes("resource"),
	}
}

// eachProcess visits every decodable process. Entries repeated across the
// current and deprecated cache are visited once.
func (r *Reader) eachProcess(fn func(ProcessDetails) error) (Listing[ProcessMeta], error) {
	var out Listing[ProcessMeta]
	out.Items = []ProcessMeta{}
	seen := make(map[int64]bool)
	for _, c := range processCategories {
		err := r.Each(ForCategory(c), func(e Entry) error {
			f, err := decodeFields(e.Value)
			if err != nil {
				out.Errors = append(out.Errors, valueError(e, err))
				return nil
			}
			p := newProcessDetails(f)
			if seen[p.ProcessDefinitionKey] {
				return nil
			}
			seen[p.ProcessDefinitionKey] = true
			out.Items = append(out.Items, p.ProcessMeta)
			return fn(p)
		})
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// Processes lists the deployed processes.
func (r *Reader) Processes() (Listing[ProcessMeta], error) {
	return r.eachProcess(func(ProcessDetails) error { return nil })
}

// Process returns the deployed process with the given definition key, or
// ErrNotFound.
func (r *Reader) Process(processDefinitionKey int64) (ProcessDetails, error) {
	var found *ProcessDetails
	_, err := r.eachProcess(func(p ProcessDetails) error {
		if p.ProcessDefinitionKey == processDefinitionKey {
			found = &p
			return errStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return ProcessDetails{}, err
	}
	if found == nil {
		return ProcessDetails{}, ErrNotFound
	}
	return *found, nil
}
