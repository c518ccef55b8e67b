package session

import "time"

// Launch records one start or install of a VM
type Launch struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Profile   string    `json:"profile" yaml:"profile"`
	WorkDir   string    `json:"work_dir" yaml:"work_dir"`
	Args      []string  `json:"args" yaml:"args"`
	PID       int       `json:"pid,omitempty" yaml:"pid,omitempty"`
	Detached  bool      `json:"detached,omitempty" yaml:"detached,omitempty"`
	ISO       string    `json:"iso,omitempty" yaml:"iso,omitempty"` // set for installs
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
}
