package raftlog

import "strconv"

// RecordType distinguishes commands, events and rejections.
type RecordType uint8

const (
	RecordTypeEvent            RecordType = 0
	RecordTypeCommand          RecordType = 1
	RecordTypeCommandRejection RecordType = 2
)

func (t RecordType) String() string {
	switch t {
	case RecordTypeEvent:
		return "EVENT"
	case RecordTypeCommand:
		return "COMMAND"
	case RecordTypeCommandRejection:
		return "COMMAND_REJECTION"
	}
	return "UNKNOWN_" + strconv.Itoa(int(t))
}

// MarshalText renders the name in JSON output.
func (t RecordType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ValueType names the kind of record value.
type ValueType uint16

const (
	ValueTypeJob                           ValueType = 0
	ValueTypeDeployment                    ValueType = 4
	ValueTypeProcessInstance               ValueType = 5
	ValueTypeIncident                      ValueType = 6
	ValueTypeMessage                       ValueType = 10
	ValueTypeMessageSubscription           ValueType = 11
	ValueTypeProcessMessageSubscription    ValueType = 12
	ValueTypeJobBatch                      ValueType = 14
	ValueTypeTimer                         ValueType = 15
	ValueTypeMessageStartEventSubscription ValueType = 16
	ValueTypeVariable                      ValueType = 17
	ValueTypeVariableDocument              ValueType = 18
	ValueTypeProcessInstanceCreation       ValueType = 19
	ValueTypeError                         ValueType = 20
	ValueTypeProcessInstanceResult         ValueType = 21
	ValueTypeProcess                       ValueType = 22
	ValueTypeDeploymentDistribution        ValueType = 23
	ValueTypeProcessEvent                  ValueType = 24
	ValueTypeDecision                      ValueType = 25
	ValueTypeDecisionRequirements          ValueType = 26
	ValueTypeDecisionEvaluation            ValueType = 27
	ValueTypeProcessInstanceModification   ValueType = 28
	ValueTypeEscalation                    ValueType = 29
	ValueTypeSignalSubscription            ValueType = 30
	ValueTypeSignal                        ValueType = 31
	ValueTypeResourceDeletion              ValueType = 32
	ValueTypeCommandDistribution           ValueType = 33
	ValueTypeProcessInstanceBatch          ValueType = 34
	ValueTypeMessageBatch                  ValueType = 35
	ValueTypeForm                          ValueType = 36
	ValueTypeUserTask                      ValueType = 37
	ValueTypeProcessInstanceMigration      ValueType = 38
	ValueTypeCompensationSubscription      ValueType = 39
)

var valueTypeNames = map[ValueType]string{
	ValueTypeJob:                           "JOB",
	ValueTypeDeployment:                    "DEPLOYMENT",
	ValueTypeProcessInstance:               "PROCESS_INSTANCE",
	ValueTypeIncident:                      "INCIDENT",
	ValueTypeMessage:                       "MESSAGE",
	ValueTypeMessageSubscription:           "MESSAGE_SUBSCRIPTION",
	ValueTypeProcessMessageSubscription:    "PROCESS_MESSAGE_SUBSCRIPTION",
	ValueTypeJobBatch:                      "JOB_BATCH",
	ValueTypeTimer:                         "TIMER",
	ValueTypeMessageStartEventSubscription: "MESSAGE_START_EVENT_SUBSCRIPTION",
	ValueTypeVariable:                      "VARIABLE",
	ValueTypeVariableDocument:              "VARIABLE_DOCUMENT",
	ValueTypeProcessInstanceCreation:       "PROCESS_INSTANCE_CREATION",
	ValueTypeError:                         "ERROR",
	ValueTypeProcessInstanceResult:         "PROCESS_INSTANCE_RESULT",
	ValueTypeProcess:                       "PROCESS",
	ValueTypeDeploymentDistribution:        "DEPLOYMENT_DISTRIBUTION",
	ValueTypeProcessEvent:                  "PROCESS_EVENT",
	ValueTypeDecision:                      "DECISION",
	ValueTypeDecisionRequirements:          "DECISION_REQUIREMENTS",
	ValueTypeDecisionEvaluation:            "DECISION_EVALUATION",
	ValueTypeProcessInstanceModification:   "PROCESS_INSTANCE_MODIFICATION",
	ValueTypeEscalation:                    "ESCALATION",
	ValueTypeSignalSubscription:            "SIGNAL_SUBSCRIPTION",
	ValueTypeSignal:                        "SIGNAL",
	ValueTypeResourceDeletion:              "RESOURCE_DELETION",
	ValueTypeCommandDistribution:           "COMMAND_DISTRIBUTION",
	ValueTypeProcessInstanceBatch:          "PROCESS_INSTANCE_BATCH",
	ValueTypeMessageBatch:                  "MESSAGE_BATCH",
	ValueTypeForm:                          "FORM",
	ValueTypeUserTask:                      "USER_TASK",
	ValueTypeProcessInstanceMigration:      "PROCESS_INSTANCE_MIGRATION",
	ValueTypeCompensationSubscription:      "COMPENSATION_SUBSCRIPTION",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN_" + strconv.Itoa(int(t))
}

// MarshalText renders the name in JSON output.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
