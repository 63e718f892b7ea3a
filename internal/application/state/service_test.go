package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/botutils/pkg/adapters/storage/memory"
	"github.com/aescanero/botutils/pkg/ports"
	"github.com/aescanero/botutils/pkg/resolve"
)

type conversationState struct {
	Topic string   `json:"topic"`
	Steps []string `json:"steps"`
}

type recordedOp struct {
	operation string
	status    string
}

type fakeMetrics struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (f *fakeMetrics) ObserveResolution(string) {}
func (f *fakeMetrics) SetActiveListeners(int)   {}

func (f *fakeMetrics) RecordStateOperation(operation, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{operation, status})
}

func newTestService(t *testing.T) (*Service, *resolve.Domain, *fakeMetrics, *resolve.TypeModule) {
	t.Helper()

	d := resolve.NewDomain()
	metrics := &fakeMetrics{}
	svc := NewService(memory.NewInMemoryStateStorage(), d, metrics, zaptest.NewLogger(t), time.Hour)

	m := resolve.NewModule(resolve.Identity{Name: "Contoso.Bot", Version: "1.4.0", PublicKeyToken: "b77a5c561934e089"})
	require.NoError(t, m.Register("Conversation", conversationState{}))
	require.NoError(t, svc.RegisterModule(m))

	return svc, d, metrics, m
}

func TestServiceSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	svc, d, metrics, m := newTestService(t)

	key, err := svc.Save(ctx, "conv-1", m, "Conversation", conversationState{Topic: "weather", Steps: []string{"ask"}})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", key)

	got, err := svc.Load(ctx, key, m)
	require.NoError(t, err)
	assert.Equal(t, &conversationState{Topic: "weather", Steps: []string{"ask"}}, got)

	// The module is only resolvable while Load runs
	assert.Equal(t, 0, d.ListenerCount())
	_, err = d.Resolve(m.FullName())
	assert.ErrorIs(t, err, resolve.ErrModuleNotFound)

	assert.Equal(t, []recordedOp{{opSave, "ok"}, {opLoad, "ok"}}, metrics.ops)
}

func TestServiceSaveGeneratesKey(t *testing.T) {
	svc, _, _, m := newTestService(t)

	key, err := svc.Save(context.Background(), "", m, "Conversation", conversationState{})
	require.NoError(t, err)

	_, err = uuid.Parse(key)
	assert.NoError(t, err)
}

func TestServiceLoadReleasesScopeOnDecodeFailure(t *testing.T) {
	ctx := context.Background()
	svc, d, metrics, m := newTestService(t)

	other := resolve.NewModule(resolve.Identity{Name: "Contoso.Other"})
	require.NoError(t, other.Register("Conversation", conversationState{}))

	_, err := svc.Save(ctx, "conv-2", other, "Conversation", conversationState{Topic: "x"})
	require.NoError(t, err)

	_, err = svc.Load(ctx, "conv-2", m)
	assert.ErrorIs(t, err, resolve.ErrModuleNotFound)
	assert.Equal(t, 0, d.ListenerCount())
	assert.Equal(t, recordedOp{opLoad, "error"}, metrics.ops[len(metrics.ops)-1])
}

func TestServiceLoadMissing(t *testing.T) {
	svc, d, metrics, m := newTestService(t)

	_, err := svc.Load(context.Background(), "nope", m)
	assert.ErrorIs(t, err, ports.ErrStateNotFound)
	assert.Equal(t, 0, d.ListenerCount())
	assert.Equal(t, []recordedOp{{opLoad, "not_found"}}, metrics.ops)

	_, err = svc.Load(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, resolve.ErrNilModule)
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _, m := newTestService(t)

	_, err := svc.Save(ctx, "conv-3", m, "Conversation", conversationState{})
	require.NoError(t, err)

	keys, err := svc.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"conv-3"}, keys)

	require.NoError(t, svc.Delete(ctx, "conv-3"))
	_, err = svc.LoadRaw(ctx, "conv-3")
	assert.ErrorIs(t, err, ports.ErrStateNotFound)
}

func TestServiceRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	svc, _, _, m := newTestService(t)

	_, err := svc.Save(ctx, "bad key", m, "Conversation", conversationState{})
	assert.Error(t, err)
	_, err = svc.LoadRaw(ctx, "a*")
	assert.Error(t, err)
	assert.Error(t, svc.Delete(ctx, ""))
}

// ttlFailingStorage stores values but cannot set expiry
type ttlFailingStorage struct {
	*memory.InMemoryStateStorage
}

var errTTLUnavailable = errors.New("ttl unavailable")

func (s ttlFailingStorage) SetTTL(context.Context, string, time.Duration) error {
	return errTTLUnavailable
}

func TestServiceSaveRollsBackWithoutTTL(t *testing.T) {
	ctx := context.Background()
	store := ttlFailingStorage{memory.NewInMemoryStateStorage()}
	metrics := &fakeMetrics{}
	svc := NewService(store, resolve.NewDomain(), metrics, zaptest.NewLogger(t), time.Hour)

	m := resolve.NewModule(resolve.Identity{Name: "Contoso.Bot", Version: "1.4.0"})
	require.NoError(t, m.Register("Conversation", conversationState{}))

	_, err := svc.Save(ctx, "conv-ttl", m, "Conversation", conversationState{Topic: "expiring"})
	assert.ErrorIs(t, err, errTTLUnavailable)

	exists, err := store.Exists(ctx, "conv-ttl")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, []recordedOp{{opSave, "error"}}, metrics.ops)
}

func TestServiceModules(t *testing.T) {
	svc, _, _, m := newTestService(t)

	got, err := svc.Module(m.FullName())
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = svc.Module("Missing")
	assert.ErrorIs(t, err, ErrUnknownModule)

	_, err = svc.Module("Contoso.Bot, Version=1.4.0, Locale=en")
	assert.ErrorIs(t, err, resolve.ErrInvalidIdentity)
	_, err = svc.Module("")
	assert.ErrorIs(t, err, resolve.ErrInvalidIdentity)
	assert.Equal(t, []string{m.FullName()}, svc.Modules())
	assert.ErrorIs(t, svc.RegisterModule(nil), resolve.ErrNilModule)
}

func TestServiceConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	svc, d, _, m := newTestService(t)

	_, err := svc.Save(ctx, "conv-4", m, "Conversation", conversationState{Topic: "busy"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Load(ctx, "conv-4", m)
			assert.NoError(t, err)
			assert.Equal(t, &conversationState{Topic: "busy"}, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, d.ListenerCount())
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate("emulator:conversation:abc-123"))
	assert.ErrorIs(t, v.Validate(""), ErrInvalidKey)
	assert.Error(t, v.Validate("with space"))
	assert.Error(t, v.Validate(string(make([]byte, maxKeyLength+1))))
}

func TestBuiltinModule(t *testing.T) {
	ctx := context.Background()
	d := resolve.NewDomain()
	svc := NewService(memory.NewInMemoryStateStorage(), d, nil, nil, 0)
	m := BuiltinModule()
	require.NoError(t, svc.RegisterModule(m))

	assert.Equal(t, []string{"BotData", "ConversationReference"}, m.Types())
	assert.Equal(t, "Botutils.State, Version=1.0.0", m.FullName())

	ref := ConversationReference{ChannelID: "msteams", ServiceURL: "https://smba.example/", ConversationID: "c1"}
	_, err := svc.Save(ctx, "ref", m, "ConversationReference", &ref)
	require.NoError(t, err)

	got, err := svc.Load(ctx, "ref", m)
	require.NoError(t, err)
	assert.Equal(t, &ref, got)
}
