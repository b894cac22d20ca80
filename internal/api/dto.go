package api

type createProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type startSessionRequest struct {
	TopicID string `json:"topicId" validate:"required"`
	Mode    string `json:"mode" validate:"required,oneof=review evaluate teach_back"`
}

type appendEventRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=user_message ai_response"`
	Content string `json:"content" validate:"required"`
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type exchangeRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,dive"`
}

// completeSessionRequest carries the self-rated quality for review sessions.
// Out-of-range values are coerced by the scheduler.
type completeSessionRequest struct {
	Quality *float64 `json:"quality"`
}
