package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zelldon/zdb-sub001/internal/state"
)

func parseKeyArg(arg string) (int64, error) {
	key, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid key %q", arg), err)
	}
	return key, nil
}

// lookupError maps a failed typed lookup to an exit error.
func lookupError(what string, key int64, err error) error {
	if errors.Is(err, state.ErrNotFound) {
		return NewExitError(ExitFailure, fmt.Sprintf("no %s with key %d", what, key))
	}
	return WrapExitError(ExitFailure, "failed to read state", err)
}

// viewCommand builds a state subcommand that opens the state and passes it to run.
func viewCommand(opts *StateOptions, use, short, long string, args cobra.PositionalArgs,
	run func(cmd *cobra.Command, r *state.Reader, args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			result, err := run(cmd, r, args)
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(result)
		},
	}
}

func writeValueErrors(w io.Writer, errs []state.ValueError) {
	for _, e := range errs {
		fmt.Fprintf(w, "skipped %s %s: %s\n", e.Category, e.Key, e.Error)
	}
}

type processListResult state.Listing[state.ProcessMeta]

func (r processListResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tPROCESS\tVERSION\tRESOURCE")
	for _, p := range r.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ProcessDefinitionKey, p.BpmnProcessID, p.Version, p.ResourceName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeValueErrors(w, r.Errors)
	return nil
}

type processResult state.ProcessDetails

func (r processResult) renderText(w io.Writer) error {
	fmt.Fprintf(w, "key: %d\nprocess: %s\nversion: %d\nresource: %s\n",
		r.ProcessDefinitionKey, r.BpmnProcessID, r.Version, r.ResourceName)
	if r.TenantID != "" {
		fmt.Fprintf(w, "tenant: %s\n", r.TenantID)
	}
	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, strings.TrimRight(r.Resource, "\n"))
	return err
}

type instanceListResult state.Listing[state.InstanceDetails]

func (r instanceListResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tSTATE\tELEMENT\tTYPE\tCHILDREN")
	for _, inst := range r.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", inst.Key, inst.State, inst.Record.ElementID,
			inst.Record.BpmnElementType, len(inst.Children))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeValueErrors(w, r.Errors)
	return nil
}

type instanceResult state.InstanceDetails

func (r instanceResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "key:\t%d\n", r.Key)
	fmt.Fprintf(tw, "state:\t%s\n", r.State)
	fmt.Fprintf(tw, "element:\t%s (%s)\n", r.Record.ElementID, r.Record.BpmnElementType)
	fmt.Fprintf(tw, "process:\t%s v%d (%d)\n", r.Record.BpmnProcessID, r.Record.Version, r.Record.ProcessDefinitionKey)
	fmt.Fprintf(tw, "process instance:\t%d\n", r.Record.ProcessInstanceKey)
	fmt.Fprintf(tw, "parent:\t%d\n", r.ParentKey)
	fmt.Fprintf(tw, "child count:\t%d (activated %d, completed %d, terminated %d)\n",
		r.ChildCount, r.ChildActivatedCount, r.ChildCompletedCount, r.ChildTerminatedCount)
	if r.JobKey > 0 {
		fmt.Fprintf(tw, "job:\t%d\n", r.JobKey)
	}
	children := make([]string, len(r.Children))
	for i, c := range r.Children {
		children[i] = strconv.FormatInt(c, 10)
	}
	fmt.Fprintf(tw, "children:\t%s\n", strings.Join(children, " "))
	return tw.Flush()
}

type incidentListResult state.Listing[state.IncidentDetails]

func (r incidentListResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tTYPE\tINSTANCE\tELEMENT\tMESSAGE")
	for _, inc := range r.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", inc.Key, inc.ErrorType, inc.ProcessInstanceKey, inc.ElementID, inc.ErrorMessage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeValueErrors(w, r.Errors)
	return nil
}

type incidentResult state.IncidentDetails

func (r incidentResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "key:\t%d\n", r.Key)
	fmt.Fprintf(tw, "type:\t%s\n", r.ErrorType)
	fmt.Fprintf(tw, "message:\t%s\n", r.ErrorMessage)
	fmt.Fprintf(tw, "process:\t%s (%d)\n", r.BpmnProcessID, r.ProcessDefinitionKey)
	fmt.Fprintf(tw, "process instance:\t%d\n", r.ProcessInstanceKey)
	fmt.Fprintf(tw, "element instance:\t%d (%s)\n", r.ElementInstanceKey, r.ElementID)
	if r.JobKey > 0 {
		fmt.Fprintf(tw, "job:\t%d\n", r.JobKey)
	}
	return tw.Flush()
}

type bannedListResult state.Listing[int64]

func (r bannedListResult) renderText(w io.Writer) error {
	for _, key := range r.Items {
		fmt.Fprintln(w, key)
	}
	writeValueErrors(w, r.Errors)
	return nil
}

type checkResult []state.Inconsistency

func (r checkResult) renderText(w io.Writer) error {
	if len(r) == 0 {
		_, err := fmt.Fprintln(w, "no inconsistencies found")
		return err
	}
	for _, i := range r {
		fmt.Fprintf(w, "%s %s %s: %s\n", i.Check, i.Category, i.Key, i.Message)
	}
	return nil
}

func newStateProcessCommand(opts *StateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Inspect deployed processes",
	}
	cmd.AddCommand(viewCommand(opts, "list", "List deployed processes",
		`List the deployed processes of both the current and the deprecated process cache.

Examples:
  zdb state process list --path ./snapshots/1-1-1-1`,
		cobra.NoArgs,
		func(_ *cobra.Command, r *state.Reader, _ []string) (any, error) {
			list, err := r.Processes()
			if err != nil {
				return nil, WrapExitError(ExitFailure, "failed to read state", err)
			}
			return processListResult(list), nil
		}))
	cmd.AddCommand(viewCommand(opts, "entity KEY", "Show one process with its resource",
		`Show the deployed process with the given process definition key, including
its BPMN resource.

Examples:
  zdb state process entity 2251799813685249 --path ./runtime`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, r *state.Reader, args []string) (any, error) {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return nil, err
			}
			p, err := r.Process(key)
			if err != nil {
				return nil, lookupError("process", key, err)
			}
			return processResult(p), nil
		}))
	cmd.AddCommand(viewCommand(opts, "instances KEY", "List the instances of one process",
		`List the process instances of the process with the given definition key.

Examples:
  zdb state process instances 2251799813685249 --path ./runtime`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, r *state.Reader, args []string) (any, error) {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return nil, err
			}
			list, err := r.ProcessInstances(key)
			if err != nil {
				return nil, WrapExitError(ExitFailure, "failed to read state", err)
			}
			return instanceListResult(list), nil
		}))
	return cmd
}

func newStateIncidentCommand(opts *StateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Inspect incidents",
	}
	cmd.AddCommand(viewCommand(opts, "list", "List incidents",
		`List the open incidents.

Examples:
  zdb state incident list --path ./runtime`,
		cobra.NoArgs,
		func(_ *cobra.Command, r *state.Reader, _ []string) (any, error) {
			list, err := r.Incidents()
			if err != nil {
				return nil, WrapExitError(ExitFailure, "failed to read state", err)
			}
			return incidentListResult(list), nil
		}))
	cmd.AddCommand(viewCommand(opts, "entity KEY", "Show one incident",
		`Show the incident with the given key.

Examples:
  zdb state incident entity 2251799813685260 --path ./runtime`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, r *state.Reader, args []string) (any, error) {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return nil, err
			}
			inc, err := r.Incident(key)
			if err != nil {
				return nil, lookupError("incident", key, err)
			}
			return incidentResult(inc), nil
		}))
	return cmd
}

func newStateBannedCommand(opts *StateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banned",
		Short: "Inspect banned process instances",
	}
	cmd.AddCommand(viewCommand(opts, "list", "List banned process instances",
		`List the keys of the banned process instances.

Examples:
  zdb state banned list --path ./runtime`,
		cobra.NoArgs,
		func(_ *cobra.Command, r *state.Reader, _ []string) (any, error) {
			list, err := r.BannedInstances()
			if err != nil {
				return nil, WrapExitError(ExitFailure, "failed to read state", err)
			}
			return bannedListResult(list), nil
		}))
	cmd.AddCommand(viewCommand(opts, "entity KEY", "Show one banned process instance",
		`Show a banned process instance. Fails when the instance is not banned.

Examples:
  zdb state banned entity 2251799813685251 --path ./runtime`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, r *state.Reader, args []string) (any, error) {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return nil, err
			}
			banned, err := r.IsBanned(key)
			if err != nil {
				return nil, WrapExitError(ExitFailure, "failed to read state", err)
			}
			if !banned {
				return nil, NewExitError(ExitFailure, fmt.Sprintf("process instance %d is not banned", key))
			}
			inst, err := r.Instance(key)
			if err != nil {
				return nil, lookupError("element instance", key, err)
			}
			return instanceResult(inst), nil
		}))
	return cmd
}

func newStateInstanceCommand(opts *StateOptions) *cobra.Command {
	return viewCommand(opts, "instance KEY", "Show one element instance",
		`Show the element instance with the given key and its direct children.

Examples:
  zdb state instance 2251799813685251 --path ./runtime --format json`,
		cobra.ExactArgs(1),
		func(_ *cobra.Command, r *state.Reader, args []string) (any, error) {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return nil, err
			}
			inst, err := r.Instance(key)
			if err != nil {
				return nil, lookupError("element instance", key, err)
			}
			return instanceResult(inst), nil
		})
}

func newStateCheckCommand(opts *StateOptions) *cobra.Command {
	return viewCommand(opts, "check [CHECK...]", "Check the state for dangling references",
		fmt.Sprintf(`Run consistency checks over the raw state and report entries that point at
keys which no longer exist. Without arguments every check runs.

Checks: %s

Findings do not change the exit code.

Examples:
  zdb state check --path ./snapshots/1-1-1-1
  zdb state check parent-child --path ./runtime`, strings.Join(state.Checks(), ", ")),
		cobra.ArbitraryArgs,
		func(_ *cobra.Command, r *state.Reader, args []string) (any, error) {
			found, err := r.Check(args...)
			if err != nil {
				if errors.Is(err, state.ErrUnknownCheck) {
					return nil, WrapExitError(ExitCommandError, "invalid check", err)
				}
				return nil, WrapExitError(ExitFailure, "check failed", err)
			}
			return checkResult(found), nil
		})
}
