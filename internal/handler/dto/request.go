package dto

// UpdateTaskStatusRequest represents the request body for POST /mobile/v1/tasks/status.
type UpdateTaskStatusRequest struct {
	HotelID string `json:"hotelId"`
	TaskID  string `json:"taskId"`
	Status  string `json:"status"` // client token, e.g. "claimed", "paused", "completed"
}

// ListTasksFilters represents query parameters for GET /tasks.
type ListTasksFilters struct {
	Status          []string // Multiple statuses: ?status=WAITING,STARTED
	UserID          *string  // ?user_id=<uuid>
	ConfigurationID *string  // ?configuration_id=<uuid>
	HotelID         *string  // ?hotel_id=<id>
	Limit           int      // ?limit=50
	Offset          int      // ?offset=0
}
