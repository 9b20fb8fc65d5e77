package dto_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/planner/internal/domain"
	"github.com/mtlprog/planner/internal/handler/dto"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: abc", domain.ErrTaskNotFound), http.StatusNotFound, "TASK_NOT_FOUND"},
		{domain.ErrConfigurationNotFound, http.StatusNotFound, "CONFIGURATION_NOT_FOUND"},
		{domain.ErrPermissionDenied, http.StatusForbidden, "INSUFFICIENT_ACCESS"},
		{domain.ErrUserInactive, http.StatusUnauthorized, "USER_INACTIVE"},
		{domain.ErrUserNotFound, http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := dto.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestMapDomainError_HidesUnmappedErrors(t *testing.T) {
	status, code, message := dto.MapDomainError(errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", code)
	assert.Equal(t, "Internal server error", message)
}

func TestToTaskDetail(t *testing.T) {
	room := "room-1"
	task := &domain.Task{
		ID:                        "t1",
		SystemTaskConfigurationID: "c1",
		ToHotelID:                 "h1",
		ToRoomID:                  &room,
		StatusKey:                 domain.TaskStatusWaiting,
		ModifiedAt:                time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Actions: []domain.TaskAction{
			{ID: "a1", ActionName: "Replace", AssetName: "Towel", AssetQuantity: 2},
		},
	}

	detail := dto.ToTaskDetail(task)

	assert.Equal(t, "WAITING", detail.Status)
	assert.Equal(t, "c1", detail.ConfigurationID)
	assert.Equal(t, &room, detail.RoomID)
	require.Len(t, detail.Actions, 1)
	assert.Equal(t, "Towel", detail.Actions[0].AssetName)
	assert.Equal(t, 2, detail.Actions[0].AssetQuantity)
}

func TestToConfigurationSummary(t *testing.T) {
	summary := dto.ToConfigurationSummary("c1", map[string]int{
		"WAITING":                 1,
		"CLAIMED_BY_SOMEONE_ELSE": 2,
		"FINISHED":                3,
		"REJECTED":                1,
	})

	assert.Equal(t, 7, summary.Total)
	assert.Equal(t, 3, summary.Open)
}

func TestProcessResponses(t *testing.T) {
	assert.Equal(t, dto.ProcessResponse{HasError: true, Message: dto.MessageTaskNotFound}, dto.NewProcessFailure(dto.MessageTaskNotFound))
	assert.Equal(t, dto.ProcessResponse{IsSuccess: true, Message: dto.MessageTaskCancelled, Affected: 1}, dto.NewProcessSuccess(dto.MessageTaskCancelled, 1))
}
