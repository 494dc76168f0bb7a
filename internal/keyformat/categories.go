package keyformat

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Category identifies the namespace (column family) a key belongs to. It is the
// big-endian int64 that prefixes every key.
type Category int64

// Known categories. The ids follow the engine's column family enumeration.
const (
	Default Category = iota
	Key
	ProcessVersion
	ProcessCache
	ProcessCacheByIDAndVersion
	ProcessCacheDigestByID
	ElementInstanceParentChild
	ElementInstanceKey
	NumberOfTakenSequenceFlows
	ElementInstanceChildParent
	Variables
	Timers
	TimerDueDates
	PendingDeployment
	DeploymentRaw
	Jobs
	JobStates
	JobDeadlines
	JobActivatable
	MessageKey
	Messages
	MessageDeadlines
	MessageIDs
	MessageCorrelated
	MessageProcessesActiveByCorrelationKey
	MessageProcessInstanceCorrelationKeys
	MessageSubscriptionByKey
	MessageSubscriptionBySentTime
	MessageSubscriptionByNameAndCorrelationKey
	MessageStartEventSubscriptionByNameAndKey
	MessageStartEventSubscriptionByKeyAndName
	ProcessSubscriptionByKey
	ProcessSubscriptionBySentTime
	Incidents
	IncidentProcessInstances
	IncidentJobs
	EventScope
	EventTrigger
	BannedInstance
	Exporter
	AwaitWorkflowResult
	JobBackoff
	DMNDecisions
	DMNDecisionRequirements
	DMNLatestDecisionByID
	DMNLatestDecisionRequirementsByID
	DMNDecisionKeyByDecisionRequirementsKey
	DMNDecisionKeyByDecisionIDAndVersion
	DMNDecisionRequirementsKeyByDecisionRequirementIDAndVersion
	SignalSubscriptionByNameAndKey
	SignalSubscriptionByKeyAndName
	PendingDistribution
	CommandDistributionRecord
	MessageStats
	ProcessInstanceKeyByDefinitionKey
	MigrationsState
	Forms
	FormVersion
	FormByIDAndVersion
	UserTasks
	UserTaskStates
	CompensationSubscription
	DeprecatedProcessCache
)

// NoCategory labels keys too short to carry a category prefix.
const NoCategory Category = -1

type categoryInfo struct {
	name string
	spec string // "" means no known layout, rendered as hex
}

var catalog = map[Category]categoryInfo{
	Default:                                    {"DEFAULT", "s"},
	Key:                                        {"KEY", "s"},
	ProcessVersion:                             {"PROCESS_VERSION", "ss"},
	ProcessCache:                               {"PROCESS_CACHE", "sl"},
	ProcessCacheByIDAndVersion:                 {"PROCESS_CACHE_BY_ID_AND_VERSION", "ssl"},
	ProcessCacheDigestByID:                     {"PROCESS_CACHE_DIGEST_BY_ID", "ss"},
	ElementInstanceParentChild:                 {"ELEMENT_INSTANCE_PARENT_CHILD", "ll"},
	ElementInstanceKey:                         {"ELEMENT_INSTANCE_KEY", "l"},
	NumberOfTakenSequenceFlows:                 {"NUMBER_OF_TAKEN_SEQUENCE_FLOWS", "lss"},
	ElementInstanceChildParent:                 {"ELEMENT_INSTANCE_CHILD_PARENT", "l"},
	Variables:                                  {"VARIABLES", "ls"},
	Timers:                                     {"TIMERS", "ll"},
	TimerDueDates:                              {"TIMER_DUE_DATES", "lll"},
	PendingDeployment:                          {"PENDING_DEPLOYMENT", "li"},
	DeploymentRaw:                              {"DEPLOYMENT_RAW", "l"},
	Jobs:                                       {"JOBS", "l"},
	JobStates:                                  {"JOB_STATES", "l"},
	JobDeadlines:                               {"JOB_DEADLINES", "ll"},
	JobActivatable:                             {"JOB_ACTIVATABLE", "ssl"},
	MessageKey:                                 {"MESSAGE_KEY", "l"},
	Messages:                                   {"MESSAGES", "sssl"},
	MessageDeadlines:                           {"MESSAGE_DEADLINES", "l"},
	MessageIDs:                                 {"MESSAGE_IDS", "sss"},
	MessageCorrelated:                          {"MESSAGE_CORRELATED", "ls"},
	MessageProcessesActiveByCorrelationKey:     {"MESSAGE_PROCESSES_ACTIVE_BY_CORRELATION_KEY", "ss"},
	MessageProcessInstanceCorrelationKeys:      {"MESSAGE_PROCESS_INSTANCE_CORRELATION_KEYS", "l"},
	MessageSubscriptionByKey:                   {"MESSAGE_SUBSCRIPTION_BY_KEY", "ls"},
	MessageSubscriptionBySentTime:              {"MESSAGE_SUBSCRIPTION_BY_SENT_TIME", ""},
	MessageSubscriptionByNameAndCorrelationKey: {"MESSAGE_SUBSCRIPTION_BY_NAME_AND_CORRELATION_KEY", "sssl"},
	MessageStartEventSubscriptionByNameAndKey:  {"MESSAGE_START_EVENT_SUBSCRIPTION_BY_NAME_AND_KEY", "ssl"},
	MessageStartEventSubscriptionByKeyAndName:  {"MESSAGE_START_EVENT_SUBSCRIPTION_BY_KEY_AND_NAME", "lss"},
	ProcessSubscriptionByKey:                   {"PROCESS_SUBSCRIPTION_BY_KEY", "lss"},
	ProcessSubscriptionBySentTime:              {"PROCESS_SUBSCRIPTION_BY_SENT_TIME", ""},
	Incidents:                                  {"INCIDENTS", "l"},
	IncidentProcessInstances:                   {"INCIDENT_PROCESS_INSTANCES", "l"},
	IncidentJobs:                               {"INCIDENT_JOBS", "l"},
	EventScope:                                 {"EVENT_SCOPE", "l"},
	EventTrigger:                               {"EVENT_TRIGGER", "ll"},
	BannedInstance:                             {"BANNED_INSTANCE", "l"},
	Exporter:                                   {"EXPORTER", "s"},
	AwaitWorkflowResult:                        {"AWAIT_WORKLOW_RESULT", "l"},
	JobBackoff:                                 {"JOB_BACKOFF", "ll"},
	DMNDecisions:                               {"DMN_DECISIONS", "sl"},
	DMNDecisionRequirements:                    {"DMN_DECISION_REQUIREMENTS", "sl"},
	DMNLatestDecisionByID:                      {"DMN_LATEST_DECISION_BY_ID", "ss"},
	DMNLatestDecisionRequirementsByID:          {"DMN_LATEST_DECISION_REQUIREMENTS_BY_ID", "ss"},
	DMNDecisionKeyByDecisionRequirementsKey:    {"DMN_DECISION_KEY_BY_DECISION_REQUIREMENTS_KEY", "slsl"},
	DMNDecisionKeyByDecisionIDAndVersion:       {"DMN_DECISION_KEY_BY_DECISION_ID_AND_VERSION", "ssi"},
	DMNDecisionRequirementsKeyByDecisionRequirementIDAndVersion: {
		"DMN_DECISION_REQUIREMENTS_KEY_BY_DECISION_REQUIREMENT_ID_AND_VERSION", "ssi"},
	SignalSubscriptionByNameAndKey:    {"SIGNAL_SUBSCRIPTION_BY_NAME_AND_KEY", "ssl"},
	SignalSubscriptionByKeyAndName:    {"SIGNAL_SUBSCRIPTION_BY_KEY_AND_NAME", "lss"},
	PendingDistribution:               {"PENDING_DISTRIBUTION", "li"},
	CommandDistributionRecord:         {"COMMAND_DISTRIBUTION_RECORD", "l"},
	MessageStats:                      {"MESSAGE_STATS", "ls"},
	ProcessInstanceKeyByDefinitionKey: {"PROCESS_INSTANCE_KEY_BY_DEFINITION_KEY", "ll"},
	MigrationsState:                   {"MIGRATIONS_STATE", "s"},
	Forms:                             {"FORMS", "sl"},
	FormVersion:                       {"FORM_VERSION", "ss"},
	FormByIDAndVersion:                {"FORM_BY_ID_AND_VERSION", "ssl"},
	UserTasks:                         {"USER_TASKS", "l"},
	UserTaskStates:                    {"USER_TASK_STATES", "l"},
	CompensationSubscription:          {"COMPENSATION_SUBSCRIPTION", "sll"},
	DeprecatedProcessCache:            {"DEPRECATED_PROCESS_CACHE", ""},
}

var categoriesByName = func() map[string]Category {
	m := make(map[string]Category, len(catalog))
	for c, info := range catalog {
		m[info.name] = c
	}
	return m
}()

// String returns the category name, or UNKNOWN_<id> for ids outside the catalog.
func (c Category) String() string {
	if c == NoCategory {
		return "UNKNOWN"
	}
	if info, ok := catalog[c]; ok {
		return info.name
	}
	return "UNKNOWN_" + strconv.FormatInt(int64(c), 10)
}

// Known reports whether c is in the catalog.
func (c Category) Known() bool {
	_, ok := catalog[c]
	return ok
}

// DefaultSpec returns the built-in format spec for c, or "" if it has none.
func (c Category) DefaultSpec() string {
	return catalog[c].spec
}

// Prefix returns the 8-byte key prefix shared by all keys of c.
func (c Category) Prefix() []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, CategoryPrefixLength), uint64(c))
}

// CategoryOf reads the category prefix of key. ok is false when key is shorter
// than the prefix.
func CategoryOf(key []byte) (c Category, ok bool) {
	if len(key) < CategoryPrefixLength {
		return 0, false
	}
	return Category(binary.BigEndian.Uint64(key)), true
}

// ParseCategory accepts a category name (case-insensitive) or a numeric id.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if c, ok := categoriesByName[strings.ToUpper(s)]; ok {
		return c, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown category %q", s)
	}
	return Category(id), nil
}

// Categories returns all catalog categories in id order.
func Categories() []Category {
	out := make([]Category, 0, len(catalog))
	for c := Default; c <= DeprecatedProcessCache; c++ {
		if c.Known() {
			out = append(out, c)
		}
	}
	return out
}
