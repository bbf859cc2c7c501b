// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_buildCountPendingQuery_SQLContainsParts(t *testing.T) {
	query, args, err := buildCountPendingQuery(42, "phone", nil)
	require.NoError(t, err)

	// squirrel renders Eq map keys alphabetically
	require.Equal(t, []any{"phone", "pending", int64(42)}, args)

	q := strings.ToLower(query)

	require.Contains(t, q, "select count(*)")
	require.Contains(t, q, "from sync_batches")
	require.Contains(t, q, "client_id")
	require.Contains(t, q, "status")
	require.Contains(t, q, "user_id")
	require.NotContains(t, q, "updated_at")

	// placeholder format should be $1 (Postgres)
	require.Contains(t, query, "$1")
	require.Contains(t, query, "$3")
}

func Test_buildCountPendingQuery_UpdatedAfterAddsGuard(t *testing.T) {
	after := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	query, args, err := buildCountPendingQuery(42, "phone", &after)
	require.NoError(t, err)

	require.Equal(t, []any{"phone", "pending", int64(42), after}, args)

	q := strings.ToLower(query)

	require.Contains(t, q, "updated_at >")
	require.Contains(t, query, "$4")
}

func Test_buildLastCompletedAtQuery(t *testing.T) {
	query, args, err := buildLastCompletedAtQuery(42, "phone")
	require.NoError(t, err)

	require.Equal(t, []any{"phone", "completed", int64(42)}, args)

	q := strings.ToLower(query)

	require.Contains(t, q, "select completed_at")
	require.Contains(t, q, "from sync_batches")
	require.Contains(t, q, "order by completed_at desc")
	require.Contains(t, q, "limit 1")
}

func Test_buildListPendingQuery(t *testing.T) {
	query, args, err := buildListPendingQuery(10)
	require.NoError(t, err)

	require.Equal(t, []any{"pending"}, args)

	q := strings.ToLower(query)

	require.Contains(t, q, "select batch_id")
	require.Contains(t, q, "from sync_batches")
	require.Contains(t, q, "order by created_at asc")
	require.Contains(t, q, "limit 10")
}

func Test_buildUserConflictsQuery_SelectsAllExpectedColumns(t *testing.T) {
	query, args, err := buildUserConflictsQuery(42)
	require.NoError(t, err)

	require.Equal(t, []any{"pending", int64(42)}, args)

	q := strings.ToLower(query)

	// every column scanConflict reads must be selected
	cols := []string{
		"conflict_id",
		"batch_id",
		"user_id",
		"record_id",
		"message",
		"server_record",
		"client_item",
		"status",
		"resolution",
		"resolved_data",
		"created_at",
		"resolved_at",
	}
	for _, col := range cols {
		require.Contains(t, q, col)
	}

	require.Contains(t, q, "from sync_conflicts")
	require.Contains(t, q, "order by created_at desc")
}

func Test_buildCountUnresolvedQuery(t *testing.T) {
	query, args, err := buildCountUnresolvedQuery(42)
	require.NoError(t, err)

	require.Equal(t, []any{"pending", int64(42)}, args)

	q := strings.ToLower(query)

	require.Contains(t, q, "select count(*)")
	require.Contains(t, q, "from sync_conflicts")
	require.Contains(t, q, "status")
	require.Contains(t, q, "user_id")
}
