package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midnight_match/internal/models"
)

func TestUntilNextLaterToday(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	wait, err := untilNext("22:00", now)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, wait)
}

func TestUntilNextRollsToTomorrow(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// 今天的 09:00 已過，排到明天
	wait, err := untilNext("09:00", now)
	require.NoError(t, err)
	assert.Equal(t, 23*time.Hour, wait)

	// 正好等於當下時刻也排到明天，避免同一分鐘重複觸發
	wait, err = untilNext("10:00", now)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, wait)
}

func TestUntilNextRejectsBadFormat(t *testing.T) {
	_, err := untilNext("9pm", time.Now())
	assert.Error(t, err)

	_, err = untilNext("25:99", time.Now())
	assert.Error(t, err)
}

func newSchedulerFixture(t *testing.T) (*Scheduler, *matchFixture) {
	t.Helper()

	f := newMatchFixture(t, testUser(1, "CollegeA", models.GenderMale))
	scheduler := NewScheduler(f.phases, f.match, f.gateway, "22:00", "23:00", "23:30")
	return scheduler, f
}

func TestSchedulerOpenLobby(t *testing.T) {
	scheduler, f := newSchedulerFixture(t)
	ctx := context.Background()

	// 前一晚殘留的佇列條目
	require.NoError(t, f.store.ListPush(ctx, queueKey("CollegeA"), `{"user_id":9}`))
	client := registerTestClient(f.gateway, 1)

	scheduler.openLobby()

	phase, err := f.phases.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseLobby, phase)

	// 殘留佇列已清空
	entries, err := f.store.ListDrain(ctx, queueKey("CollegeA"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 所有連線收到階段變更廣播
	changed := eventsOfType(drainEvents(client), EventPhaseChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, string(PhaseLobby), changed[0].Phase)
}

func TestSchedulerStartMatchingIsSynchronous(t *testing.T) {
	scheduler, f := newSchedulerFixture(t)
	ctx := context.Background()

	client := registerTestClient(f.gateway, 1)
	require.NoError(t, f.phases.Set(ctx, PhaseLobby))
	_, err := f.pool.Join(ctx, 1)
	require.NoError(t, err)

	// startMatching 回傳時配對已完成：單人分區的輪空通知已送達
	scheduler.startMatching()

	phase, err := f.phases.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseMatching, phase)

	events := drainEvents(client)
	require.Len(t, eventsOfType(events, EventPhaseChanged), 1)
	failed := eventsOfType(events, EventMatchFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, ReasonOddCandidateOut, failed[0].Reason)
}

func TestSchedulerClosePhase(t *testing.T) {
	scheduler, f := newSchedulerFixture(t)

	client := registerTestClient(f.gateway, 1)
	scheduler.closePhase()

	phase, err := f.phases.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseClosed, phase)

	changed := eventsOfType(drainEvents(client), EventPhaseChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, string(PhaseClosed), changed[0].Phase)
}

func TestSchedulerRejectsBadConfig(t *testing.T) {
	_, f := newSchedulerFixture(t)

	bad := NewScheduler(f.phases, f.match, f.gateway, "ten o'clock", "23:00", "23:30")
	defer bad.Stop()
	assert.Error(t, bad.Start())
}
