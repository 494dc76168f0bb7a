package state

import (
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

// ProcessInstanceRecord is the record stored with an element instance.
type ProcessInstanceRecord struct {
	BpmnProcessID            string `json:"bpmnProcessId"`
	Version                  int64  `json:"version"`
	TenantID                 string `json:"tenantId,omitempty"`
	ProcessDefinitionKey     int64  `json:"processDefinitionKey"`
	ProcessInstanceKey       int64  `json:"processInstanceKey"`
	ElementID                string `json:"elementId"`
	FlowScopeKey             int64  `json:"flowScopeKey"`
	BpmnElementType          string `json:"bpmnElementType"`
	BpmnEventType            string `json:"bpmnEventType,omitempty"`
	ParentProcessInstanceKey int64  `json:"parentProcessInstanceKey"`
	ParentElementInstanceKey int64  `json:"parentElementInstanceKey"`
}

// InstanceDetails describes one element instance and its direct children.
type InstanceDetails struct {
	Key                      int64                 `json:"key"`
	ParentKey                int64                 `json:"parentKey"`
	State                    string                `json:"state"`
	ChildCount               int64                 `json:"childCount"`
	ChildActivatedCount      int64                 `json:"childActivatedCount"`
	ChildCompletedCount      int64                 `json:"childCompletedCount"`
	ChildTerminatedCount     int64                 `json:"childTerminatedCount"`
	MultiInstanceLoopCounter int64                 `json:"multiInstanceLoopCounter"`
	InterruptingEventKey     string                `json:"interruptingEventKey,omitempty"`
	CalledChildInstanceKey   int64                 `json:"calledChildInstanceKey"`
	JobKey                   int64                 `json:"jobKey"`
	Record                   ProcessInstanceRecord `json:"processInstanceRecord"`
	Children                 []int64               `json:"children"`
}

// ElementTypeProcess is the element type of a process instance's root element.
const ElementTypeProcess = "PROCESS"

// newInstanceDetails decodes an ELEMENT_INSTANCE_KEY value. The element
// record is nested as elementRecord.processInstanceRecord.
func newInstanceDetails(key int64, value []byte) (InstanceDetails, error) {
	f, err := decodeFields(value)
	if err != nil {
		return InstanceDetails{}, err
	}
	indexed := f.object("elementRecord")
	rec := indexed.object("processInstanceRecord")
	return InstanceDetails{
		Key:                      key,
		ParentKey:                f.long("parentKey"),
		State:                    indexed.text("state"),
		ChildCount:               f.long("childCount"),
		ChildActivatedCount:      f.long("childActivatedCount"),
		ChildCompletedCount:      f.long("childCompletedCount"),
		ChildTerminatedCount:     f.long("childTerminatedCount"),
		MultiInstanceLoopCounter: f.long("multiInstanceLoopCounter"),
		InterruptingEventKey:     f.text("interruptingEventKey"),
		CalledChildInstanceKey:   f.long("calledChildInstanceKey"),
		JobKey:                   f.long("jobKey"),
		Record: ProcessInstanceRecord{
			BpmnProcessID:            rec.text("bpmnProcessId"),
			Version:                  rec.long("version"),
			TenantID:                 rec.text("tenantId"),
			ProcessDefinitionKey:     rec.long("processDefinitionKey"),
			ProcessInstanceKey:       rec.long("processInstanceKey"),
			ElementID:                rec.text("elementId"),
			FlowScopeKey:             rec.long("flowScopeKey"),
			BpmnElementType:          rec.text("bpmnElementType"),
			BpmnEventType:            rec.text("bpmnEventType"),
			ParentProcessInstanceKey: rec.long("parentProcessInstanceKey"),
			ParentElementInstanceKey: rec.long("parentElementInstanceKey"),
		},
		Children: []int64{},
	}, nil
}

// children returns the child keys recorded for parent in ELEMENT_INSTANCE_PARENT_CHILD.
func (r *Reader) children(parent int64) ([]int64, error) {
	out := []int64{}
	prefix := keyformat.NewKey(keyformat.ElementInstanceParentChild).Long(parent).Bytes()
	err := r.Each(Filter{Prefix: prefix}, func(e Entry) error {
		keys, err := keyLongs(longPairKey, e.Key)
		if err != nil {
			return nil
		}
		out = append(out, keys[1])
		return nil
	})
	return out, err
}

// Instance returns the element instance with the given key, or ErrNotFound.
func (r *Reader) Instance(elementInstanceKey int64) (InstanceDetails, error) {
	value, err := r.GetLong(keyformat.ElementInstanceKey, elementInstanceKey)
	if err != nil {
		return InstanceDetails{}, err
	}
	inst, err := newInstanceDetails(elementInstanceKey, value)
	if err != nil {
		return InstanceDetails{}, err
	}
	if inst.Children, err = r.children(elementInstanceKey); err != nil {
		return InstanceDetails{}, err
	}
	return inst, nil
}

// ProcessInstances lists the process instances of a process definition, that
// is the element instances of type PROCESS with that definition key.
func (r *Reader) ProcessInstances(processDefinitionKey int64) (Listing[InstanceDetails], error) {
	out := Listing[InstanceDetails]{Items: []InstanceDetails{}}
	err := r.Each(ForCategory(keyformat.ElementInstanceKey), func(e Entry) error {
		keys, err := keyLongs(longKey, e.Key)
		if err != nil {
			out.Errors = append(out.Errors, valueError(e, err))
			return nil
		}
		inst, err := newInstanceDetails(keys[0], e.Value)
		if err != nil {
			out.Errors = append(out.Errors, valueError(e, err))
			return nil
		}
		if inst.Record.BpmnElementType != ElementTypeProcess || inst.Record.ProcessDefinitionKey != processDefinitionKey {
			return nil
		}
		out.Items = append(out.Items, inst)
		return nil
	})
	if err != nil {
		return out, err
	}
	for i := range out.Items {
		if out.Items[i].Children, err = r.children(out.Items[i].Key); err != nil {
			return out, err
		}
	}
	return out, nil
}
