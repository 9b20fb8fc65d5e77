package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/planner/internal/database"
	"github.com/mtlprog/planner/internal/domain"
	"github.com/mtlprog/planner/internal/history"
	"github.com/mtlprog/planner/internal/notify"
	"github.com/mtlprog/planner/internal/repository"
	"github.com/mtlprog/planner/internal/service"
)

const (
	tenantID      = "00000000-0000-0000-0000-000000000001"
	otherTenantID = "00000000-0000-0000-0000-000000000002"
	hotelID       = "hotel-zagreb"
	adminID       = "00000000-0000-0000-0000-000000000011"
	maidOneID     = "00000000-0000-0000-0000-000000000012"
	maidTwoID     = "00000000-0000-0000-0000-000000000013"
	configID      = "00000000-0000-0000-0000-000000000021"
	otherConfigID = "00000000-0000-0000-0000-000000000022"
	roomOne       = "00000000-0000-0000-0000-000000000031"
	roomTwo       = "00000000-0000-0000-0000-000000000032"
	warehouseOne  = "00000000-0000-0000-0000-000000000041"
)

// fixedNow is 10:00 UTC, 12:00 in Zagreb (CEST).
var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// recordingNotifier captures dispatched events synchronously.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.TasksChanged
}

func (n *recordingNotifier) Dispatch(_ context.Context, event notify.TasksChanged) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []notify.TasksChanged {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.TasksChanged(nil), n.events...)
}

// failingHistoryStore fails every append.
type failingHistoryStore struct {
	*repository.TaskHistoryRepository
}

func (failingHistoryStore) CreateBatch(context.Context, pgx.Tx, []*domain.TaskHistory) error {
	return errors.New("disk full")
}

// failingSaveStore fails when saving the given task.
type failingSaveStore struct {
	*repository.TaskRepository
	failOn string
}

func (s *failingSaveStore) Save(ctx context.Context, tx pgx.Tx, task *domain.Task) error {
	if task.ID == s.failOn {
		return errors.New("connection reset")
	}
	return s.TaskRepository.Save(ctx, tx, task)
}

// CoordinatorTestSuite is the test suite for Coordinator.
type CoordinatorTestSuite struct {
	suite.Suite
	pool        *pgxpool.Pool
	taskRepo    *repository.TaskRepository
	historyRepo *repository.TaskHistoryRepository
	hotelRepo   *repository.HotelRepository
	notifier    *recordingNotifier
	coordinator *service.Coordinator
}

// SetupSuite runs once before all tests.
func (s *CoordinatorTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set")
	}

	ctx := context.Background()

	db, err := database.New(ctx, databaseURL, database.DefaultOptions())
	s.Require().NoError(err, "failed to connect to database")
	s.pool = db.Pool()

	err = database.RunMigrations(ctx, s.pool)
	s.Require().NoError(err, "failed to run migrations")

	s.taskRepo = repository.NewTaskRepository(s.pool)
	s.historyRepo = repository.NewTaskHistoryRepository(s.pool)
	s.hotelRepo = repository.NewHotelRepository()
}

// SetupTest runs before each test.
func (s *CoordinatorTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, "TRUNCATE hotel_groups, hotels, users, system_task_configurations, system_tasks, system_task_actions, system_task_histories CASCADE")
	s.Require().NoError(err, "failed to truncate tables")

	_, err = s.pool.Exec(ctx, `
		INSERT INTO hotel_groups (id, name) VALUES ($1, 'Adriatic Group'), ($2, 'Other Group')
	`, tenantID, otherTenantID)
	s.Require().NoError(err)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO hotels (id, hotel_group_id, name, time_zone) VALUES ($1, $2, 'Zagreb Central', 'Europe/Zagreb')
	`, hotelID, tenantID)
	s.Require().NoError(err)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, hotel_group_id, user_name, token, role)
		VALUES
			($1, $4, 'admin', 'admin-token', 'ADMIN'),
			($2, $4, 'maid-1', 'maid-1-token', 'MOBILE'),
			($3, $4, 'maid-2', 'maid-2-token', 'MOBILE')
	`, adminID, maidOneID, maidTwoID, tenantID)
	s.Require().NoError(err)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO system_task_configurations (id, hotel_group_id, title)
		VALUES ($1, $3, 'Clean dirty rooms'), ($2, $3, 'Restock minibars')
	`, configID, otherConfigID, tenantID)
	s.Require().NoError(err)

	s.notifier = &recordingNotifier{}
	s.coordinator = s.newCoordinator(s.taskRepo, s.historyRepo)
}

// TearDownSuite runs once after all tests.
func (s *CoordinatorTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func (s *CoordinatorTestSuite) newCoordinator(tasks service.TaskStore, histories service.HistoryStore) *service.Coordinator {
	return service.NewCoordinator(s.pool, tasks, histories, s.hotelRepo, s.notifier, func() time.Time { return fixedNow })
}

type taskFixture struct {
	configID    string
	room        *string
	warehouse   *string
	reservation *string
	user        *string
	status      domain.TaskStatus
	shared      bool
}

func strPtr(v string) *string { return &v }

// createTask inserts a task with one action and returns its ID.
func (s *CoordinatorTestSuite) createTask(f taskFixture) string {
	ctx := context.Background()
	if f.configID == "" {
		f.configID = configID
	}
	if f.status == "" {
		f.status = domain.TaskStatusUnknown
	}

	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO system_tasks (hotel_group_id, system_task_configuration_id, to_hotel_id,
			to_warehouse_id, to_room_id, to_reservation_id, user_id, status_key, must_be_finished_by_all_whos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, tenantID, f.configID, hotelID, f.warehouse, f.room, f.reservation, f.user, f.status, f.shared).Scan(&id)
	s.Require().NoError(err, "failed to create task")

	_, err = s.pool.Exec(ctx, `
		INSERT INTO system_task_actions (system_task_id, action_name, asset_name, asset_quantity, sort_order)
		VALUES ($1, 'Clean', 'Room', 1, 0)
	`, id)
	s.Require().NoError(err, "failed to create task action")

	return id
}

func (s *CoordinatorTestSuite) status(taskID string) domain.TaskStatus {
	task, err := s.taskRepo.GetByID(context.Background(), taskID)
	s.Require().NoError(err)
	return task.StatusKey
}

func (s *CoordinatorTestSuite) histories(taskID string) []*domain.TaskHistory {
	histories, err := s.historyRepo.ListByTaskID(context.Background(), taskID)
	s.Require().NoError(err)
	return histories
}

func (s *CoordinatorTestSuite) snapshot(raw json.RawMessage) history.Snapshot {
	var snapshot history.Snapshot
	s.Require().NoError(json.Unmarshal(raw, &snapshot))
	return snapshot
}

func (s *CoordinatorTestSuite) claim(taskID, userID string) (*service.StatusChange, error) {
	return s.coordinator.UpdateStatus(context.Background(), service.UpdateStatusParams{
		TaskID:       taskID,
		Status:       "claimed",
		ActingUserID: userID,
		TenantID:     tenantID,
	})
}

// TestUpdateStatus_TokenMapping checks every recognised token and an unknown one.
func (s *CoordinatorTestSuite) TestUpdateStatus_TokenMapping() {
	ctx := context.Background()
	tokens := map[string]domain.TaskStatus{
		"Resume":    domain.TaskStatusStarted,
		"resumed":   domain.TaskStatusStarted,
		"STARTED":   domain.TaskStatusStarted,
		"claimed":   domain.TaskStatusWaiting,
		"Rejected":  domain.TaskStatusRejected,
		"paused":    domain.TaskStatusPaused,
		"completed": domain.TaskStatusFinished,
		"CANCELLED": domain.TaskStatusCancelled,
		"done":      domain.TaskStatusUnknown,
	}

	for token, want := range tokens {
		taskID := s.createTask(taskFixture{room: strPtr(roomOne), shared: true})

		_, err := s.coordinator.UpdateStatus(ctx, service.UpdateStatusParams{
			TaskID:       taskID,
			Status:       token,
			ActingUserID: maidOneID,
			TenantID:     tenantID,
		})
		s.Require().NoError(err, token)
		s.Equal(want, s.status(taskID), token)
	}
}

// TestUpdateStatus_SetsModifiedFieldsInHotelTime verifies the audit fields.
func (s *CoordinatorTestSuite) TestUpdateStatus_SetsModifiedFieldsInHotelTime() {
	taskID := s.createTask(taskFixture{room: strPtr(roomOne)})

	_, err := s.coordinator.UpdateStatus(context.Background(), service.UpdateStatusParams{
		TaskID:       taskID,
		Status:       "started",
		ActingUserID: maidOneID,
		TenantID:     tenantID,
	})
	s.Require().NoError(err)

	task, err := s.taskRepo.GetByID(context.Background(), taskID)
	s.Require().NoError(err)
	s.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), task.ModifiedAt.UTC())
	s.Require().NotNil(task.ModifiedByID)
	s.Equal(maidOneID, *task.ModifiedByID)
}

// TestUpdateStatus_ClaimMarksSameRoomSibling covers the basic conflict.
func (s *CoordinatorTestSuite) TestUpdateStatus_ClaimMarksSameRoomSibling() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID)})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidTwoID)})

	change, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	s.Equal(domain.TaskStatusWaiting, s.status(taskA))
	s.Equal(domain.TaskStatusClaimedBySomeoneElse, s.status(taskB))
	s.Require().Len(change.Siblings, 1)
	s.Equal(taskB, change.Siblings[0].ID)
}

// TestUpdateStatus_NoConflictAcrossDimensions ensures room and warehouse tasks never collide.
func (s *CoordinatorTestSuite) TestUpdateStatus_NoConflictAcrossDimensions() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne)})
	taskB := s.createTask(taskFixture{warehouse: strPtr(warehouseOne)})

	_, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	s.Equal(domain.TaskStatusWaiting, s.status(taskA))
	s.Equal(domain.TaskStatusUnknown, s.status(taskB))
}

// TestUpdateStatus_OtherTargetsAndConfigurationsUntouched limits the scan.
func (s *CoordinatorTestSuite) TestUpdateStatus_OtherTargetsAndConfigurationsUntouched() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne)})
	otherRoom := s.createTask(taskFixture{room: strPtr(roomTwo)})
	otherConfig := s.createTask(taskFixture{configID: otherConfigID, room: strPtr(roomOne)})

	_, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	s.Equal(domain.TaskStatusUnknown, s.status(otherRoom))
	s.Equal(domain.TaskStatusUnknown, s.status(otherConfig))
}

// TestUpdateStatus_ReservationConflict matches reservation targets.
func (s *CoordinatorTestSuite) TestUpdateStatus_ReservationConflict() {
	taskA := s.createTask(taskFixture{reservation: strPtr("RES-100")})
	same := s.createTask(taskFixture{reservation: strPtr("RES-100")})
	other := s.createTask(taskFixture{reservation: strPtr("RES-200")})

	_, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	s.Equal(domain.TaskStatusClaimedBySomeoneElse, s.status(same))
	s.Equal(domain.TaskStatusUnknown, s.status(other))
}

// TestUpdateStatus_RejectedSiblingIsImmune keeps REJECTED siblings as they are.
func (s *CoordinatorTestSuite) TestUpdateStatus_RejectedSiblingIsImmune() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne)})
	rejected := s.createTask(taskFixture{room: strPtr(roomOne), status: domain.TaskStatusRejected})

	change, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	s.Empty(change.Siblings)
	s.Equal(domain.TaskStatusRejected, s.status(rejected))
	s.Empty(s.histories(rejected))
}

// TestUpdateStatus_MustBeFinishedByAllWhosSkipsScan allows shared claims.
func (s *CoordinatorTestSuite) TestUpdateStatus_MustBeFinishedByAllWhosSkipsScan() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne), shared: true})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne)})

	change, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	s.Empty(change.Siblings)
	s.Equal(domain.TaskStatusWaiting, s.status(taskA))
	s.Equal(domain.TaskStatusUnknown, s.status(taskB))
}

// TestUpdateStatus_NonClaimSkipsScan only scans on WAITING.
func (s *CoordinatorTestSuite) TestUpdateStatus_NonClaimSkipsScan() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne)})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne)})

	_, err := s.coordinator.UpdateStatus(context.Background(), service.UpdateStatusParams{
		TaskID:       taskA,
		Status:       "started",
		ActingUserID: maidOneID,
		TenantID:     tenantID,
	})
	s.Require().NoError(err)

	s.Equal(domain.TaskStatusUnknown, s.status(taskB))
}

// TestUpdateStatus_HistoryCompleteness checks one record per mutation with before/after state.
func (s *CoordinatorTestSuite) TestUpdateStatus_HistoryCompleteness() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne), status: domain.TaskStatusPaused})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne), status: domain.TaskStatusStarted})

	_, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	primary := s.histories(taskA)
	s.Require().Len(primary, 1)
	s.Equal(domain.HistorySourceMobileUser, primary[0].Source)
	s.Equal("Status changed.", primary[0].Note)
	s.Equal("PAUSED", s.snapshot(primary[0].OldValue).StatusKey)
	s.Equal("WAITING", s.snapshot(primary[0].NewValue).StatusKey)
	s.Require().Len(s.snapshot(primary[0].NewValue).Actions, 1)

	sibling := s.histories(taskB)
	s.Require().Len(sibling, 1)
	s.Equal(domain.HistorySourceMobileUser, sibling[0].Source)
	s.Equal("Status changed. Claimed by someone else.", sibling[0].Note)
	s.Equal("STARTED", s.snapshot(sibling[0].OldValue).StatusKey)
	s.Equal("CLAIMED_BY_SOMEONE_ELSE", s.snapshot(sibling[0].NewValue).StatusKey)
	s.True(primary[0].CreatedAt.Before(sibling[0].CreatedAt) || primary[0].CreatedAt.Equal(sibling[0].CreatedAt))
}

// TestUpdateStatus_NotificationPayload checks ids and deduplicated assignees.
func (s *CoordinatorTestSuite) TestUpdateStatus_NotificationPayload() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID)})
	sibling1 := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidTwoID)})
	sibling2 := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID)})
	s.createTask(taskFixture{room: strPtr(roomOne), status: domain.TaskStatusRejected, user: strPtr(adminID)})

	_, err := s.claim(taskA, maidOneID)
	s.Require().NoError(err)

	events := s.notifier.Events()
	s.Require().Len(events, 1)
	s.Equal(tenantID, events[0].TenantID)
	s.Equal("Your task status changed", events[0].Message)
	s.ElementsMatch([]string{taskA, sibling1, sibling2}, events[0].TaskIDs)
	s.Equal(taskA, events[0].TaskIDs[0])
	s.ElementsMatch([]string{maidOneID, maidTwoID}, events[0].UserIDs)
}

// TestUpdateStatus_NotFound returns the sentinel and writes nothing.
func (s *CoordinatorTestSuite) TestUpdateStatus_NotFound() {
	_, err := s.claim("00000000-0000-0000-0000-00000000ffff", maidOneID)
	s.ErrorIs(err, domain.ErrTaskNotFound)
	s.Empty(s.notifier.Events())
}

// TestUpdateStatus_OtherTenant hides tasks of other hotel groups.
func (s *CoordinatorTestSuite) TestUpdateStatus_OtherTenant() {
	taskID := s.createTask(taskFixture{room: strPtr(roomOne)})

	_, err := s.coordinator.UpdateStatus(context.Background(), service.UpdateStatusParams{
		TaskID:       taskID,
		Status:       "claimed",
		ActingUserID: maidOneID,
		TenantID:     otherTenantID,
	})
	s.ErrorIs(err, domain.ErrTaskNotFound)
	s.Equal(domain.TaskStatusUnknown, s.status(taskID))
}

// TestUpdateStatus_HistoryFailureRollsBack verifies all-or-nothing persistence.
func (s *CoordinatorTestSuite) TestUpdateStatus_HistoryFailureRollsBack() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne)})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne)})

	coordinator := s.newCoordinator(s.taskRepo, failingHistoryStore{s.historyRepo})
	_, err := coordinator.UpdateStatus(context.Background(), service.UpdateStatusParams{
		TaskID:       taskA,
		Status:       "claimed",
		ActingUserID: maidOneID,
		TenantID:     tenantID,
	})
	s.Require().Error(err)

	s.Equal(domain.TaskStatusUnknown, s.status(taskA))
	s.Equal(domain.TaskStatusUnknown, s.status(taskB))
	s.Empty(s.histories(taskA))
	s.Empty(s.notifier.Events())
}

// TestUpdateStatus_SiblingSaveFailureRollsBack keeps the primary unchanged too.
func (s *CoordinatorTestSuite) TestUpdateStatus_SiblingSaveFailureRollsBack() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne)})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne)})

	coordinator := s.newCoordinator(&failingSaveStore{TaskRepository: s.taskRepo, failOn: taskB}, s.historyRepo)
	_, err := coordinator.UpdateStatus(context.Background(), service.UpdateStatusParams{
		TaskID:       taskA,
		Status:       "claimed",
		ActingUserID: maidOneID,
		TenantID:     tenantID,
	})
	s.Require().Error(err)

	s.Equal(domain.TaskStatusUnknown, s.status(taskA))
	s.Empty(s.histories(taskA))
	s.Empty(s.histories(taskB))
}

// TestUpdateStatus_CancelledContext aborts before anything is written.
func (s *CoordinatorTestSuite) TestUpdateStatus_CancelledContext() {
	taskID := s.createTask(taskFixture{room: strPtr(roomOne)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.coordinator.UpdateStatus(ctx, service.UpdateStatusParams{
		TaskID:       taskID,
		Status:       "claimed",
		ActingUserID: maidOneID,
		TenantID:     tenantID,
	})
	s.Require().Error(err)
	s.Equal(domain.TaskStatusUnknown, s.status(taskID))
}

// TestUpdateStatus_ConcurrentClaims serialises claims over the same configuration.
func (s *CoordinatorTestSuite) TestUpdateStatus_ConcurrentClaims() {
	taskA := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID)})
	taskB := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidTwoID)})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, claim := range []struct{ task, user string }{{taskA, maidOneID}, {taskB, maidTwoID}} {
		wg.Add(1)
		go func(taskID, userID string) {
			defer wg.Done()
			_, err := s.claim(taskID, userID)
			results <- err
		}(claim.task, claim.user)
	}
	wg.Wait()
	close(results)

	for err := range results {
		s.NoError(err)
	}

	statuses := []domain.TaskStatus{s.status(taskA), s.status(taskB)}
	s.ElementsMatch([]domain.TaskStatus{domain.TaskStatusWaiting, domain.TaskStatusClaimedBySomeoneElse}, statuses)
}

// TestCancelTask_Success cancels whatever the prior status.
func (s *CoordinatorTestSuite) TestCancelTask_Success() {
	for _, prior := range []domain.TaskStatus{domain.TaskStatusFinished, domain.TaskStatusCancelled, domain.TaskStatusWaiting} {
		taskID := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID), status: prior})
		siblingID := s.createTask(taskFixture{room: strPtr(roomOne)})

		change, err := s.coordinator.CancelTask(context.Background(), service.CancelTaskParams{
			TaskID:       taskID,
			ActingUserID: adminID,
			TenantID:     tenantID,
		})
		s.Require().NoError(err)
		s.Empty(change.Siblings)

		s.Equal(domain.TaskStatusCancelled, s.status(taskID))
		s.Equal(domain.TaskStatusUnknown, s.status(siblingID))

		histories := s.histories(taskID)
		s.Require().Len(histories, 1)
		s.Equal(domain.HistorySourceAdmin, histories[0].Source)
		s.Equal("Task cancelled.", histories[0].Note)
		s.Equal(string(prior), s.snapshot(histories[0].OldValue).StatusKey)
		s.Equal("CANCELLED", s.snapshot(histories[0].NewValue).StatusKey)
	}
}

// TestCancelTask_UsesUTC and notifies the assignee.
func (s *CoordinatorTestSuite) TestCancelTask_UsesUTC() {
	taskID := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID)})

	_, err := s.coordinator.CancelTask(context.Background(), service.CancelTaskParams{
		TaskID:       taskID,
		ActingUserID: adminID,
		TenantID:     tenantID,
	})
	s.Require().NoError(err)

	task, err := s.taskRepo.GetByID(context.Background(), taskID)
	s.Require().NoError(err)
	s.Equal(fixedNow, task.ModifiedAt.UTC())
	s.Equal(adminID, *task.ModifiedByID)

	events := s.notifier.Events()
	s.Require().Len(events, 1)
	s.Equal([]string{taskID}, events[0].TaskIDs)
	s.Equal([]string{maidOneID}, events[0].UserIDs)
	s.Equal("Your task has been cancelled", events[0].Message)
}

// TestCancelTask_NotFound writes nothing.
func (s *CoordinatorTestSuite) TestCancelTask_NotFound() {
	_, err := s.coordinator.CancelTask(context.Background(), service.CancelTaskParams{
		TaskID:       "00000000-0000-0000-0000-00000000ffff",
		ActingUserID: adminID,
		TenantID:     tenantID,
	})
	s.ErrorIs(err, domain.ErrTaskNotFound)

	var count int
	s.Require().NoError(s.pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM system_task_histories").Scan(&count))
	s.Zero(count)
	s.Empty(s.notifier.Events())
}

// TestCancelTasksByConfiguration closes open tasks only.
func (s *CoordinatorTestSuite) TestCancelTasksByConfiguration() {
	open1 := s.createTask(taskFixture{room: strPtr(roomOne), user: strPtr(maidOneID)})
	open2 := s.createTask(taskFixture{room: strPtr(roomTwo), status: domain.TaskStatusStarted, user: strPtr(maidTwoID)})
	finished := s.createTask(taskFixture{room: strPtr(roomOne), status: domain.TaskStatusFinished})
	rejected := s.createTask(taskFixture{room: strPtr(roomOne), status: domain.TaskStatusRejected})
	otherConfig := s.createTask(taskFixture{configID: otherConfigID, room: strPtr(roomOne)})

	change, err := s.coordinator.CancelTasksByConfiguration(context.Background(), service.CancelConfigurationParams{
		ConfigurationID: configID,
		ActingUserID:    adminID,
		TenantID:        tenantID,
	})
	s.Require().NoError(err)
	s.Len(change.Siblings, 2)
	s.Len(change.Histories, 2)

	s.Equal(domain.TaskStatusCancelled, s.status(open1))
	s.Equal(domain.TaskStatusCancelled, s.status(open2))
	s.Equal(domain.TaskStatusFinished, s.status(finished))
	s.Equal(domain.TaskStatusRejected, s.status(rejected))
	s.Equal(domain.TaskStatusUnknown, s.status(otherConfig))

	events := s.notifier.Events()
	s.Require().Len(events, 1)
	s.ElementsMatch([]string{open1, open2}, events[0].TaskIDs)
	s.ElementsMatch([]string{maidOneID, maidTwoID}, events[0].UserIDs)
}

// TestHistory returns the trail and hides other tenants.
func (s *CoordinatorTestSuite) TestHistory() {
	taskID := s.createTask(taskFixture{room: strPtr(roomOne)})

	_, err := s.claim(taskID, maidOneID)
	s.Require().NoError(err)
	_, err = s.coordinator.CancelTask(context.Background(), service.CancelTaskParams{
		TaskID:       taskID,
		ActingUserID: adminID,
		TenantID:     tenantID,
	})
	s.Require().NoError(err)

	task, histories, err := s.coordinator.History(context.Background(), tenantID, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusCancelled, task.StatusKey)
	s.Require().Len(task.Actions, 1)
	s.Require().Len(histories, 2)
	s.Equal(domain.HistorySourceMobileUser, histories[0].Source)
	s.Equal(domain.HistorySourceAdmin, histories[1].Source)

	_, _, err = s.coordinator.History(context.Background(), otherTenantID, taskID)
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

// TestCancelTasksByConfiguration_NotFound rejects unknown or foreign configurations.
func (s *CoordinatorTestSuite) TestCancelTasksByConfiguration_NotFound() {
	_, err := s.coordinator.CancelTasksByConfiguration(context.Background(), service.CancelConfigurationParams{
		ConfigurationID: configID,
		ActingUserID:    adminID,
		TenantID:        otherTenantID,
	})
	s.ErrorIs(err, domain.ErrConfigurationNotFound)
}
