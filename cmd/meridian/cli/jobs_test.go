package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-campus/meridian/jobs"
)

func TestBuildTaskSupportedJobs(t *testing.T) {
	task, err := buildTask(jobs.TaskLedgerReconcile)
	require.NoError(t, err)
	require.Equal(t, jobs.TaskLedgerReconcile, task.Type())

	var payload jobs.ReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.False(t, payload.Repair)

	task, err = buildTask(jobs.TaskDuesScan)
	require.NoError(t, err)
	require.Equal(t, jobs.TaskDuesScan, task.Type())
}

func TestBuildTaskUnsupportedJob(t *testing.T) {
	_, err := buildTask("ledger:rewrite-history")
	require.Error(t, err)
}

func TestTriggerWithoutClient(t *testing.T) {
	var cli *JobsCLI
	_, err := cli.Trigger(context.Background(), jobs.TaskLedgerReconcile)
	require.Error(t, err)

	_, err = (&JobsCLI{}).Trigger(context.Background(), jobs.TaskLedgerReconcile)
	require.Error(t, err)
}
