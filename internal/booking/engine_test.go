package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// fakeAPI is a minimal in-memory stand-in for the shelter REST API that
// records every write so tests can assert exact call counts.
type fakeAPI struct {
	mu sync.Mutex

	animal             domain.Animal
	animalReservations []*domain.Reservation
	ownReservations    []*domain.Reservation

	posts   []CreateReservationRequest
	patches []recordedPatch

	failPostAt           map[int]bool // index into posts, fail with 500
	failReservationFetch bool
	failPatch            bool

	nextID int64
}

type recordedPatch struct {
	ReservationID int64
	Doc           []patchOp
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		animal:     domain.Animal{ID: 1, Name: "Rex", Species: "dog"},
		failPostAt: map[int]bool{},
		nextID:     100,
	}
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": success, "message": msg, "data": data})
}

func (f *fakeAPI) server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /animals/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "ok", f.animal)
	})

	mux.HandleFunc("GET /reservations/animal/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failReservationFetch {
			writeEnvelope(w, http.StatusInternalServerError, false, "boom", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "ok", f.animalReservations)
	})

	mux.HandleFunc("GET /reservations/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, true, "ok", f.ownReservations)
	})

	mux.HandleFunc("POST /reservations", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		req := CreateReservationRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, http.StatusBadRequest, false, err.Error(), nil)
			return
		}

		idx := len(f.posts)
		f.posts = append(f.posts, req)

		if f.failPostAt[idx] {
			writeEnvelope(w, http.StatusOK, false, "the animal is already reserved for part of this time range", nil)
			return
		}

		start, _ := time.Parse(dateLayout+" "+clockLayout, req.ReservationDate+" "+req.StartTime)
		end, _ := time.Parse(dateLayout+" "+clockLayout, req.ReservationDate+" "+req.EndTime)

		f.nextID++
		res := &domain.Reservation{
			ID:        f.nextID,
			AnimalID:  req.AnimalID,
			UserID:    req.UserID,
			StartTime: start,
			EndTime:   end,
			Status:    domain.StatusNotDecided,
		}
		writeEnvelope(w, http.StatusCreated, true, "reservation created", res)
	})

	mux.HandleFunc("PATCH /reservations/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		doc := []patchOp{}
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.patches = append(f.patches, recordedPatch{ReservationID: id, Doc: doc})

		if f.failPatch {
			writeEnvelope(w, http.StatusInternalServerError, false, "boom", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "reservation updated", nil)
	})

	return httptest.NewServer(mux)
}

func (f *fakeAPI) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeAPI) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

type testRig struct {
	api     *fakeAPI
	engine  *Engine
	notices chan Notice
	refresh chan RefreshScope
}

func newTestRig(t *testing.T, api *fakeAPI) *testRig {
	t.Helper()

	srv := api.server()
	t.Cleanup(srv.Close)

	rig := &testRig{
		api:     api,
		notices: make(chan Notice, 32),
		refresh: make(chan RefreshScope, 32),
	}

	client := NewClient(srv.URL, AuthContext{Token: "test-token", UserID: 7, Role: domain.RoleVolunteer})
	rig.engine = NewEngine(client, Options{
		UndoWindow:      20 * time.Millisecond,
		ConfirmationTTL: time.Hour,
		Logger:          slog.Default(),
		Notify:          func(n Notice) { rig.notices <- n },
		OnRefresh:       func(s RefreshScope) { rig.refresh <- s },
	})

	require.NoError(t, rig.engine.FocusAnimal(context.Background(), 1))
	return rig
}

func (rig *testRig) waitNotice(t *testing.T, kind NoticeKind) Notice {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-rig.notices:
			if n.Kind == kind {
				return n
			}
		case <-deadline:
			t.Fatalf("timed out waiting for notice kind %d", kind)
		}
	}
}

func ownReservation(id int64, d time.Time, fromHour, toHour int, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:        id,
		AnimalID:  1,
		UserID:    7,
		StartTime: hourOn(d, fromHour),
		EndTime:   hourOn(d, toHour),
		Status:    status,
	}
}

func TestSubmitMergesAdjacentHoursIntoOnePost(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api)
	d := day(3)

	assert.Equal(t, ToggleAdded, rig.engine.ToggleSlot(KeyAt(d, 9)))
	assert.Equal(t, ToggleAdded, rig.engine.ToggleSlot(KeyAt(d, 10)))

	result, err := rig.engine.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Booked)
	assert.Zero(t, result.Failed)

	require.Equal(t, 1, api.postCount())
	post := api.posts[0]
	assert.Equal(t, d.Format(dateLayout), post.ReservationDate)
	assert.Equal(t, "09:00:00", post.StartTime)
	assert.Equal(t, "11:00:00", post.EndTime)
	assert.Equal(t, int64(7), post.UserID)
	assert.Equal(t, int64(1), post.AnimalID)
}

func TestSubmitGapProducesTwoPosts(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api)
	d := day(3)

	rig.engine.ToggleSlot(KeyAt(d, 9))
	rig.engine.ToggleSlot(KeyAt(d, 11))

	result, err := rig.engine.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Booked)

	require.Equal(t, 2, api.postCount())
	// strictly sequential, chronological order
	assert.Equal(t, "09:00:00", api.posts[0].StartTime)
	assert.Equal(t, "10:00:00", api.posts[0].EndTime)
	assert.Equal(t, "11:00:00", api.posts[1].StartTime)
	assert.Equal(t, "12:00:00", api.posts[1].EndTime)
}

func TestSubmitPartialFailureContinues(t *testing.T) {
	api := newFakeAPI()
	api.failPostAt[0] = true
	rig := newTestRig(t, api)
	d := day(3)

	rig.engine.ToggleSlot(KeyAt(d, 9))
	rig.engine.ToggleSlot(KeyAt(d, 11))

	result, err := rig.engine.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Booked)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, api.postCount(), "remaining ranges are still attempted")
	require.Error(t, result.Results[0].Err)
	assert.Contains(t, result.Results[0].Err.Error(), "already reserved")

	// selection is cleared even after a partial failure
	assert.Empty(t, rig.engine.Selected())
	assert.Equal(t, StateIdle, rig.engine.SelectionState())
}

func TestSubmitUpdatesOccupancyAndFiresRefreshes(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api)
	d := day(3)

	rig.engine.ToggleSlot(KeyAt(d, 9))
	rig.engine.ToggleSlot(KeyAt(d, 10))

	_, err := rig.engine.Submit(context.Background())
	require.NoError(t, err)

	weekStart := d
	wa := rig.engine.Week(weekStart)
	assert.True(t, wa.Slots[KeyAt(d, 9)].OwnedByUser)
	assert.True(t, wa.Slots[KeyAt(d, 10)].OwnedByUser)

	scopes := map[RefreshScope]bool{}
	for i := 0; i < 3; i++ {
		select {
		case s := <-rig.refresh:
			scopes[s] = true
		case <-time.After(time.Second):
			t.Fatal("missing refresh signal")
		}
	}
	assert.True(t, scopes[RefreshOccupancy])
	assert.True(t, scopes[RefreshOwnReservations])
	assert.True(t, scopes[RefreshSuggestions])

	assert.NotEmpty(t, rig.engine.LastBooked())
}

func TestSubmitWithEmptySelection(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api)

	_, err := rig.engine.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Zero(t, api.postCount())
}

func TestToggleOwnedSlotRoutesToCancellation(t *testing.T) {
	api := newFakeAPI()
	d := day(3)
	res := ownReservation(55, d, 10, 12, domain.StatusUpcoming)
	api.animalReservations = []*domain.Reservation{res}
	api.ownReservations = []*domain.Reservation{res}
	rig := newTestRig(t, api)

	result := rig.engine.ToggleSlot(KeyAt(d, 11))
	assert.Equal(t, ToggleRoutedToCancel, result)
	assert.Empty(t, rig.engine.Selected(), "selection must stay untouched")

	pending := rig.engine.PendingCancellation()
	require.NotNil(t, pending)
	assert.Equal(t, int64(55), pending.ID)

	n := rig.waitNotice(t, NoticeCancelPending)
	assert.Contains(t, n.Message, "Rex")

	// no network call while the window is open
	assert.Zero(t, api.patchCount())
	require.True(t, rig.engine.Undo())
}

func TestCancelUndoIssuesNoNetworkCall(t *testing.T) {
	api := newFakeAPI()
	d := day(3)
	res := ownReservation(55, d, 10, 11, domain.StatusUpcoming)
	api.animalReservations = []*domain.Reservation{res}
	api.ownReservations = []*domain.Reservation{res}
	rig := newTestRig(t, api)

	require.NoError(t, rig.engine.RequestCancel(55))
	require.True(t, rig.engine.Undo())

	// well past the undo window
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, api.patchCount())
	assert.Equal(t, domain.StatusUpcoming, res.Status)
	assert.Nil(t, rig.engine.PendingCancellation())

	// the slot is still the caller's own
	wa := rig.engine.Week(d)
	assert.True(t, wa.Slots[KeyAt(d, 10)].OwnedByUser)
}

func TestCancelCommitPatchesStatusOnce(t *testing.T) {
	api := newFakeAPI()
	d := day(3)
	res := ownReservation(55, d, 10, 11, domain.StatusUpcoming)
	api.animalReservations = []*domain.Reservation{res}
	api.ownReservations = []*domain.Reservation{res}
	rig := newTestRig(t, api)

	require.NoError(t, rig.engine.RequestCancel(55))
	rig.waitNotice(t, NoticeCancelCommitted)

	require.Equal(t, 1, api.patchCount())
	patch := api.patches[0]
	assert.Equal(t, int64(55), patch.ReservationID)
	require.Len(t, patch.Doc, 1)
	assert.Equal(t, "replace", patch.Doc[0].Op)
	assert.Equal(t, "/status", patch.Doc[0].Path)
	assert.Equal(t, float64(domain.StatusCanceled), patch.Doc[0].Value)

	// the reservation is gone from the caller's caches
	assert.Nil(t, rig.engine.PendingCancellation())
	wa := rig.engine.Week(d)
	assert.False(t, wa.Slots[KeyAt(d, 10)].OwnedByUser)
}

func TestSecondCancelReplacesPendingByCommittingIt(t *testing.T) {
	api := newFakeAPI()
	d := day(3)
	first := ownReservation(55, d, 10, 11, domain.StatusUpcoming)
	second := ownReservation(56, d, 14, 15, domain.StatusUpcoming)
	api.animalReservations = []*domain.Reservation{first, second}
	api.ownReservations = []*domain.Reservation{first, second}
	rig := newTestRig(t, api)

	require.NoError(t, rig.engine.RequestCancel(55))
	require.NoError(t, rig.engine.RequestCancel(56))

	// the first cancellation was flushed immediately
	require.Equal(t, 1, api.patchCount())
	assert.Equal(t, int64(55), api.patches[0].ReservationID)

	pending := rig.engine.PendingCancellation()
	require.NotNil(t, pending)
	assert.Equal(t, int64(56), pending.ID)

	require.True(t, rig.engine.Undo())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, api.patchCount(), "the undone cancellation must not patch")
}

func TestCancelFailureRollsBackOptimisticRemoval(t *testing.T) {
	api := newFakeAPI()
	api.failPatch = true
	d := day(3)
	res := ownReservation(55, d, 10, 11, domain.StatusUpcoming)
	api.animalReservations = []*domain.Reservation{res}
	api.ownReservations = []*domain.Reservation{res}
	rig := newTestRig(t, api)

	require.NoError(t, rig.engine.RequestCancel(55))
	rig.waitNotice(t, NoticeCancelFailed)

	assert.Equal(t, 1, api.patchCount())

	// the optimistic removal was compensated
	wa := rig.engine.Week(d)
	assert.True(t, wa.Slots[KeyAt(d, 10)].OwnedByUser)
	assert.Equal(t, domain.StatusUpcoming, res.Status)
}

func TestCancelRejectsForeignOrTerminalReservations(t *testing.T) {
	api := newFakeAPI()
	d := day(3)
	done := ownReservation(60, d, 10, 11, domain.StatusCompleted)
	api.ownReservations = []*domain.Reservation{done}
	rig := newTestRig(t, api)

	assert.Error(t, rig.engine.RequestCancel(12345), "unknown reservation")

	err := rig.engine.RequestCancel(60)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completed")
}

func TestFocusAnimalFetchFailureLeavesAvailabilityUnknown(t *testing.T) {
	api := newFakeAPI()
	api.failReservationFetch = true
	rig := newTestRig(t, api)

	wa := rig.engine.Week(day(2))
	assert.False(t, wa.Known)
	for key, state := range wa.Slots {
		assert.False(t, state.Selectable, "unknown availability offered %s", key)
	}

	// every toggle is rejected rather than risking a double booking
	assert.Equal(t, ToggleRejectedUnavailable, rig.engine.ToggleSlot(KeyAt(day(3), 9)))
}

func TestSubmitWithoutAnimalInFocus(t *testing.T) {
	srv := newFakeAPI().server()
	defer srv.Close()

	client := NewClient(srv.URL, AuthContext{Token: "t", UserID: 7})
	engine := NewEngine(client, Options{})

	_, err := engine.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no animal in focus")
}

func TestEngineRequiresAuthForSubmit(t *testing.T) {
	srv := newFakeAPI().server()
	defer srv.Close()

	client := NewClient(srv.URL, AuthContext{UserID: 7})
	engine := NewEngine(client, Options{})

	_, err := engine.Submit(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestToggleWarnsWhenSelectionFull(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api)

	added := 0
	for dd := 1; dd <= 3 && added < MaxSelection; dd++ {
		for hour := OpeningHour; hour < ClosingHour && added < MaxSelection; hour++ {
			if rig.engine.ToggleSlot(KeyAt(day(dd), hour)) == ToggleAdded {
				added++
			}
		}
	}
	require.Equal(t, MaxSelection, added)

	assert.Equal(t, ToggleRejectedFull, rig.engine.ToggleSlot(KeyAt(day(4), 9)))
	n := rig.waitNotice(t, NoticeWarning)
	assert.Contains(t, n.Message, fmt.Sprint(MaxSelection))
}
