package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/models"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
)

func countLogs(t *testing.T, env *testEnv, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.AssistantLog{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestAssistantAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.llm.answer = "Units 1204 and 1205 have leases ending in April."

	reply, err := env.assistant.Ask(context.Background(), "user-a", "sess-1", AssistantRequest{Question: "Which leases end soon?"})
	require.NoError(t, err)
	assert.Equal(t, env.llm.answer, reply.Response)
	assert.Equal(t, "sess-1", reply.SessionID)

	logs, err := env.assistant.Logs(context.Background(), "user-a", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Which leases end soon?", logs[0].Query)
	assert.Equal(t, "sess-1", logs[0].SessionID)
}

func TestAssistantTimeoutReturnsApology(t *testing.T) {
	env := newTestEnv(t)
	env.llm.delay = time.Second
	env.llm.answer = "too late"

	reply, err := env.assistant.Ask(context.Background(), "user-a", "", AssistantRequest{Question: "Hello?"})
	require.NoError(t, err)
	assert.Equal(t, AssistantApology, reply.Response)
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, int64(1), countLogs(t, env, "user-a"))
}

func TestAssistantCancelledCallerStillLogged(t *testing.T) {
	env := newTestEnv(t)
	env.llm.err = errors.New("rate limited")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := env.assistant.Ask(ctx, "user-a", "sess-1", AssistantRequest{Question: "Hello?"})
	require.NoError(t, err)
	assert.Equal(t, AssistantApology, reply.Response)
	assert.Equal(t, int64(1), countLogs(t, env, "user-a"))
}

func TestAssistantEmptyCompletion(t *testing.T) {
	env := newTestEnv(t)
	env.llm.answer = "   "

	reply, err := env.assistant.Ask(context.Background(), "user-a", "sess-1", AssistantRequest{Question: "Hello?"})
	require.NoError(t, err)
	assert.Equal(t, AssistantEmptyResponse, reply.Response)

	_, err = env.assistant.Ask(context.Background(), "user-a", "sess-1", AssistantRequest{Question: " "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, int64(1), countLogs(t, env, "user-a"))
}

func TestAssistantLogsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.llm.answer = "ok"

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		_, err := env.assistant.Ask(ctx, "user-a", "sess", AssistantRequest{Question: q})
		require.NoError(t, err)
		require.NoError(t, env.db.Model(&models.AssistantLog{}).
			Where("query = ?", q).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	_, err := env.assistant.Ask(ctx, "user-b", "other", AssistantRequest{Question: "not mine"})
	require.NoError(t, err)

	logs, err := env.assistant.Logs(ctx, "user-a", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Query)
	assert.Equal(t, "second", logs[1].Query)
}
