package agent_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/agent"
	"github.com/xkilldash9x/cursorctl/internal/backend"
	"github.com/xkilldash9x/cursorctl/internal/config"
	"github.com/xkilldash9x/cursorctl/internal/conversation"
	"github.com/xkilldash9x/cursorctl/internal/dispatch"
	"github.com/xkilldash9x/cursorctl/internal/intent"
	"github.com/xkilldash9x/cursorctl/internal/observability"
	"github.com/xkilldash9x/cursorctl/internal/respond"
	"github.com/xkilldash9x/cursorctl/internal/translate"
)

var fullHD = schemas.ScreenGeometry{Width: 1920, Height: 1080}

// instantClock skips every pause so end-to-end tests run in real time.
type instantClock struct{}

func (instantClock) Now() time.Time { return time.Now() }

func (instantClock) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func instantClockOption() dispatch.Option { return dispatch.WithClock(instantClock{}) }

func setupRuntime(t *testing.T, geo schemas.ScreenGeometry) (*agent.Runtime, *backend.Virtual) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.SetBackendKind(config.BackendVirtual)
	cfg.BackendCfg.MaxEventsPerSecond = 0

	v := backend.NewVirtual(geo)
	rt, err := agent.Build(context.Background(), cfg, v, observability.GetLogger(), instantClockOption())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rt.Start(ctx)
	t.Cleanup(func() {
		rt.Stop()
		cancel()
	})
	return rt, v
}

func TestSession_TypeIsNeverAGreeting(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)

	reply := rt.Session.Handle(context.Background(), "type hello world")

	assert.Equal(t, schemas.IntentTypeText, reply.Intent.Kind)
	require.NotNil(t, reply.Result)
	assert.True(t, reply.Result.Success)
	assert.NoError(t, reply.Err)
	assert.Equal(t, "hello world", v.Typed())
	assert.Contains(t, reply.Text, `"hello world"`)
}

func TestSession_Greeting(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)

	for _, raw := range []string{"hello", "hi!"} {
		reply := rt.Session.Handle(context.Background(), raw)
		assert.Equal(t, schemas.IntentGreeting, reply.Intent.Kind, raw)
		assert.Nil(t, reply.Result, "conversational turns dispatch nothing")
		assert.NotEmpty(t, reply.Text)
	}
	assert.Empty(t, v.Events())

	first := rt.Session.History().Recent(2)
	assert.NotEqual(t, first[0].Reply, first[1].Reply, "consecutive greetings are phrased differently")
}

func TestSession_Moves(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)
	ctx := context.Background()

	reply := rt.Session.Handle(ctx, "move to center")
	require.True(t, reply.Result.Success)
	assert.Equal(t, &schemas.Point{X: 960, Y: 540}, reply.Result.Cursor)
	assert.Equal(t, []schemas.Action{schemas.MoveTo(960, 540, 500)}, reply.Actions)

	reply = rt.Session.Handle(ctx, "move cursor to position 300, 200")
	require.True(t, reply.Result.Success)
	assert.Equal(t, &schemas.Point{X: 300, Y: 200}, reply.Result.Cursor)

	reply = rt.Session.Handle(ctx, "move cursor to position 300, 200")
	require.True(t, reply.Result.Success)
	assert.Equal(t, &schemas.Point{X: 300, Y: 200}, reply.Result.Cursor, "repeating a move is idempotent")

	pos, err := v.PointerPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, schemas.Point{X: 300, Y: 200}, pos)
}

func TestSession_ClampsOutOfRangeCoordinates(t *testing.T) {
	rt, _ := setupRuntime(t, fullHD)
	reply := rt.Session.Handle(context.Background(), "move to 5000, 20")
	require.True(t, reply.Result.Success)
	assert.Equal(t, &schemas.Point{X: 1919, Y: 20}, reply.Result.Cursor)
}

func TestSession_MoveThenClickOrdering(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)

	reply := rt.Session.Handle(context.Background(), "double click at 100, 100")
	require.True(t, reply.Result.Success)

	events := v.Events()
	require.NotEmpty(t, events)
	lastMove := -1
	firstPress := -1
	for i, e := range events {
		if e.Kind == backend.EventMove {
			lastMove = i
		}
		if e.Kind == backend.EventButtonDown && firstPress < 0 {
			firstPress = i
		}
	}
	assert.Less(t, lastMove, firstPress)
	assert.Equal(t, schemas.Point{X: 100, Y: 100}, events[firstPress].Point)
}

func TestSession_DispatchFailureHalts(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)
	unplugged := errors.New("device unplugged")
	// 50 interpolation steps succeed, the press fails.
	v.FailAfter(50, unplugged)

	reply := rt.Session.Handle(context.Background(), "click at 100, 100")

	require.NotNil(t, reply.Result)
	assert.False(t, reply.Result.Success)
	assert.Len(t, reply.Result.Executed, 1)
	assert.Equal(t, 1, reply.Result.Failed.Index)
	assert.ErrorIs(t, reply.Err, dispatch.ErrBackendRejected)
	assert.ErrorIs(t, reply.Err, unplugged)
	assert.NotEmpty(t, reply.Error)
	assert.Contains(t, reply.Text, "device unplugged")

	next := rt.Session.Handle(context.Background(), "click")
	assert.True(t, next.Result.Success, "the session stays usable")
}

func TestSession_Unrecognized(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)

	reply := rt.Session.Handle(context.Background(), "do something random")

	assert.Equal(t, schemas.IntentUnrecognized, reply.Intent.Kind)
	assert.Nil(t, reply.Result)
	assert.NoError(t, reply.Err, "not understanding is not an error")
	for _, verb := range []string{"move", "click", "type", "press", "scroll"} {
		assert.Contains(t, reply.Text, verb)
	}
	assert.Empty(t, v.Events())
}

func TestSession_InvalidGeometryKeepsSessionUsable(t *testing.T) {
	rt, _ := setupRuntime(t, schemas.ScreenGeometry{Width: 150, Height: 150})

	reply := rt.Session.Handle(context.Background(), "move to center")
	assert.ErrorIs(t, reply.Err, translate.ErrInvalidGeometry)
	assert.Nil(t, reply.Result)
	assert.Contains(t, reply.Text, "too small")

	reply = rt.Session.Handle(context.Background(), "hello")
	assert.Equal(t, schemas.IntentGreeting, reply.Intent.Kind)
}

func TestSession_CommandsAndHistory(t *testing.T) {
	rt, _ := setupRuntime(t, fullHD)
	s := rt.Session
	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)

	var ids []string
	for i, raw := range []string{"hello", "scroll down", "press ctrl+c", "thanks"} {
		reply := s.Handle(context.Background(), raw)
		assert.Equal(t, i, reply.Command.Index)
		assert.Equal(t, s.ID(), reply.Command.SessionID)
		assert.Equal(t, raw, reply.Command.Raw)
		ids = append(ids, reply.Command.ID)
	}
	assert.Len(t, ids, 4)
	assert.NotEqual(t, ids[0], ids[1])

	turns := s.History().Recent(10)
	require.Len(t, turns, 4)
	assert.Equal(t, schemas.IntentScroll, turns[1].Intent.Kind)
	assert.NotNil(t, turns[1].Result)
	assert.Nil(t, turns[0].Result)
}

func TestSession_SerializesConcurrentCallers(t *testing.T) {
	rt, v := setupRuntime(t, fullHD)

	var wg sync.WaitGroup
	for _, raw := range []string{`type "aaaa"`, `type "bbbb"`, `type "cccc"`} {
		wg.Add(1)
		go func(raw string) {
			defer wg.Done()
			rt.Session.Handle(context.Background(), raw)
		}(raw)
	}
	wg.Wait()

	typed := v.Typed()
	require.Len(t, typed, 12)
	for i := 0; i < len(typed); i += 4 {
		assert.Equal(t, typed[i:i+1]+typed[i:i+1]+typed[i:i+1]+typed[i:i+1], typed[i:i+4], "commands never interleave")
	}
	assert.Equal(t, 3, rt.Session.History().Len())
}

func TestEngine_HandleWithExplicitHistory(t *testing.T) {
	v := backend.NewVirtual(fullHD)
	d := dispatch.New(v, dispatch.DefaultOptions(), nil, dispatch.WithClock(instantClock{}))
	engine := agent.NewEngine(
		intent.NewClassifier(intent.DefaultVocabulary()),
		translate.New(translate.DefaultOptions(), nil),
		agent.ExecutorFunc(func(ctx context.Context, actions []schemas.Action) (schemas.ExecutionResult, error) {
			return d.Dispatch(ctx, actions), nil
		}),
		respond.NewComposer(),
		fullHD,
		nil,
	)
	assert.Equal(t, fullHD, engine.Geometry())

	hist := conversation.NewHistory(2)
	engine.Handle(context.Background(), hist, schemas.Command{Raw: "scroll up 2"})
	engine.Handle(context.Background(), hist, schemas.Command{Raw: "scroll up 2"})
	engine.Handle(context.Background(), hist, schemas.Command{Raw: "bye"})
	assert.Equal(t, 2, hist.Len())
	assert.Equal(t, schemas.IntentFarewell, hist.Recent(1)[0].Intent.Kind)

	reply := engine.Handle(context.Background(), nil, schemas.Command{Raw: "press enter"})
	assert.True(t, reply.Result.Success, "history is optional")
}

func TestEngine_ExecutorErrors(t *testing.T) {
	engine := agent.NewEngine(
		intent.NewClassifier(intent.DefaultVocabulary()),
		translate.New(translate.DefaultOptions(), nil),
		agent.ExecutorFunc(func(context.Context, []schemas.Action) (schemas.ExecutionResult, error) {
			return schemas.ExecutionResult{}, dispatch.ErrQueueClosed
		}),
		respond.NewComposer(),
		fullHD,
		nil,
	)

	reply := engine.Handle(context.Background(), nil, schemas.Command{Raw: "click"})
	assert.ErrorIs(t, reply.Err, dispatch.ErrQueueClosed)
	assert.Nil(t, reply.Result)
	assert.Contains(t, reply.Text, "shutting down")
}
