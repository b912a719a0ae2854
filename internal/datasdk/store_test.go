package datasdk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/waste-pickup/internal/config"
	"github.com/nurpe/waste-pickup/internal/db"
	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/repository"
)

type recordingListener struct {
	mu        sync.Mutex
	snapshots [][]*model.WasteRequest
}

func (l *recordingListener) OnDataChanged(snapshot []*model.WasteRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, snapshot)
}

func (l *recordingListener) last() []*model.WasteRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.snapshots) == 0 {
		return nil
	}
	return l.snapshots[len(l.snapshots)-1]
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.snapshots)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.New(&config.Config{
		Environment: "test",
		DB:          config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"},
	}, zerolog.Nop())
	require.NoError(t, err)
	return NewStore(repository.NewRequestRepository(database), zerolog.Nop())
}

func newRequest() *model.WasteRequest {
	return &model.WasteRequest{
		ID:        "1760860800000",
		UserType:  model.SubmitterPublic,
		Name:      "Ravi",
		Phone:     "9000000001",
		Address:   "4 Aminabad Road",
		Area:      "Aminabad",
		WasteType: "Plastic",
		Weight:    2,
		Price:     24,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	}
}

func TestInitDeliversCurrentDataset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newRequest()))

	listener := &recordingListener{}
	require.NoError(t, store.Init(ctx, listener))

	require.Equal(t, 1, listener.count())
	assert.Len(t, listener.last(), 1)
	assert.Equal(t, 1, store.ListenerCount())
}

func TestCreateNotifiesWithBackendID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	listener := &recordingListener{}
	require.NoError(t, store.Init(ctx, listener))

	req := newRequest()
	require.NoError(t, store.Create(ctx, req))

	assert.Equal(t, uuid.Nil, req.BackendID, "caller record must not be mutated")
	snapshot := listener.last()
	require.Len(t, snapshot, 1)
	assert.NotEqual(t, uuid.Nil, snapshot[0].BackendID)
	assert.Equal(t, req.ID, snapshot[0].ID)
}

func TestListenersReceiveIndependentCopies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a, b := &recordingListener{}, &recordingListener{}
	require.NoError(t, store.Init(ctx, a))
	require.NoError(t, store.Init(ctx, b))

	require.NoError(t, store.Create(ctx, newRequest()))

	snapA, snapB := a.last(), b.last()
	require.Len(t, snapA, 1)
	require.Len(t, snapB, 1)
	snapA[0].Status = model.StatusCollected
	assert.Equal(t, model.StatusPending, snapB[0].Status)
}

func TestUpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	listener := &recordingListener{}
	require.NoError(t, store.Init(ctx, listener))
	require.NoError(t, store.Create(ctx, newRequest()))

	rec := listener.last()[0]
	rec.Status = model.StatusCollected
	require.NoError(t, store.Update(ctx, rec))
	assert.Equal(t, model.StatusCollected, listener.last()[0].Status)

	require.NoError(t, store.Delete(ctx, rec))
	assert.Empty(t, listener.last())
}

func TestMutationsRequireBackendID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Update(ctx, newRequest()), ErrMissingBackendID)
	assert.ErrorIs(t, store.Delete(ctx, newRequest()), ErrMissingBackendID)

	unknown := newRequest()
	unknown.BackendID = uuid.New()
	assert.ErrorIs(t, store.Update(ctx, unknown), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, unknown), ErrNotFound)
}

func TestCreateRejectsInvalidStatus(t *testing.T) {
	store := newTestStore(t)
	req := newRequest()
	req.Status = "lost"
	assert.ErrorIs(t, store.Create(context.Background(), req), ErrInvalidRecord)
}

func TestDetachStopsNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	listener := &recordingListener{}
	require.NoError(t, store.Init(ctx, listener))
	store.Detach(listener)

	require.NoError(t, store.Create(ctx, newRequest()))
	assert.Equal(t, 1, listener.count())
	assert.Zero(t, store.ListenerCount())
}

type failingRepo struct {
	Repository
	listErr error
}

func (f failingRepo) List(context.Context) ([]*model.WasteRequest, error) {
	return nil, f.listErr
}

func (f failingRepo) Insert(context.Context, *model.WasteRequest) error {
	return nil
}

func TestFailedNotificationIsDropped(t *testing.T) {
	store := NewStore(failingRepo{listErr: errors.New("connection reset")}, zerolog.Nop())
	listener := &recordingListener{}

	err := store.Init(context.Background(), listener)
	require.Error(t, err)
	assert.Equal(t, 1, store.ListenerCount())

	require.NoError(t, store.Create(context.Background(), newRequest()))
	assert.Zero(t, listener.count())
}
