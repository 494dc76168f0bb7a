package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Zelldon/zdb-sub001/internal/keyformat"
)

// Consistency checks over the raw state.
const (
	// CheckElementInstances finds element instances whose parent no longer exists.
	CheckElementInstances = "element-instances"
	// CheckParentChild finds parent/child links where either side is missing.
	CheckParentChild = "parent-child"
	// CheckMessageDeadlines finds message deadlines for messages that no longer exist.
	CheckMessageDeadlines = "message-deadlines"
)

// Checks returns the names of all consistency checks in the order Check runs them.
func Checks() []string {
	return []string{CheckElementInstances, CheckParentChild, CheckMessageDeadlines}
}

// ErrUnknownCheck is returned by Check for a name not in Checks.
var ErrUnknownCheck = errors.New("unknown check")

// Inconsistency is one finding of a consistency check.
type Inconsistency struct {
	Check    string `json:"check"`
	Category string `json:"cf"`
	Key      string `json:"key"`
	Message  string `json:"message"`
}

// Check runs the named checks, or all of them when names is empty, and
// returns what they found. An unknown name is an error.
func (r *Reader) Check(names ...string) ([]Inconsistency, error) {
	if len(names) == 0 {
		names = Checks()
	}
	checks := map[string]func(*[]Inconsistency) error{
		CheckElementInstances: r.checkElementInstances,
		CheckParentChild:      r.checkParentChild,
		CheckMessageDeadlines: r.checkMessageDeadlines,
	}
	for _, name := range names {
		if _, ok := checks[name]; !ok {
			return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownCheck, name, Checks())
		}
	}

	found := []Inconsistency{}
	for _, name := range Checks() {
		if !slices.Contains(names, name) {
			continue
		}
		if err := checks[name](&found); err != nil {
			return nil, fmt.Errorf("check %s: %w", name, err)
		}
	}
	return found, nil
}

func report(found *[]Inconsistency, check string, e Entry, format string, args ...any) {
	*found = append(*found, Inconsistency{
		Check:    check,
		Category: e.Category.String(),
		Key:      e.FormattedKey,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Reader) elementInstanceExists(key int64) (bool, error) {
	return r.exists(keyformat.NewKey(keyformat.ElementInstanceKey).Long(key).Bytes())
}

func (r *Reader) checkElementInstances(found *[]Inconsistency) error {
	return r.Each(ForCategory(keyformat.ElementInstanceKey), func(e Entry) error {
		f, err := decodeFields(e.Value)
		if err != nil {
			report(found, CheckElementInstances, e, "value cannot be decoded: %v", err)
			return nil
		}
		parent := f.long("parentKey")
		if parent <= 0 {
			return nil
		}
		ok, err := r.elementInstanceExists(parent)
		if err != nil {
			return err
		}
		if !ok {
			report(found, CheckElementInstances, e, "parent %d does not exist", parent)
		}
		return nil
	})
}

func (r *Reader) checkParentChild(found *[]Inconsistency) error {
	return r.Each(ForCategory(keyformat.ElementInstanceParentChild), func(e Entry) error {
		keys, err := keyLongs(longPairKey, e.Key)
		if err != nil {
			report(found, CheckParentChild, e, "%v", err)
			return nil
		}
		for i, role := range []string{"parent", "child"} {
			ok, err := r.elementInstanceExists(keys[i])
			if err != nil {
				return err
			}
			if !ok {
				report(found, CheckParentChild, e, "%s %d does not exist", role, keys[i])
			}
		}
		return nil
	})
}

// checkMessageDeadlines reads deadline keys as (deadline, message key).
func (r *Reader) checkMessageDeadlines(found *[]Inconsistency) error {
	return r.Each(ForCategory(keyformat.MessageDeadlines), func(e Entry) error {
		keys, err := keyLongs(longPairKey, e.Key)
		if err != nil {
			report(found, CheckMessageDeadlines, e, "%v", err)
			return nil
		}
		ok, err := r.exists(keyformat.NewKey(keyformat.MessageKey).Long(keys[1]).Bytes())
		if err != nil {
			return err
		}
		if !ok {
			report(found, CheckMessageDeadlines, e, "message %d no longer exists", keys[1])
		}
		return nil
	})
}
