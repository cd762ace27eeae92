package hermes

import "time"

type ProjectSavedEvent struct {
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProjectDeletedEvent struct {
	ProjectID string `json:"project_id"`
}

type WeightsActivatedEvent struct {
	ConfigID    string    `json:"config_id"`
	ConfigName  string    `json:"config_name"`
	ActivatedAt time.Time `json:"activated_at"`
}

type WeightsDeletedEvent struct {
	ConfigID  string `json:"config_id"`
	WasActive bool   `json:"was_active"`
}

type WeightsDeactivatedEvent struct {
	DeactivatedAt time.Time `json:"deactivated_at"`
}
