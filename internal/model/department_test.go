package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDepartmentAcceptingAt(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		dept Department
		want bool
	}{
		{"open without window", Department{Open: true}, true},
		{"closed flag wins", Department{Open: false}, false},
		{"inside window", Department{Open: true, WindowStart: &before, WindowEnd: &after}, true},
		{"window not started", Department{Open: true, WindowStart: &after}, false},
		{"window already over", Department{Open: true, WindowEnd: &before}, false},
		{"window end is exclusive", Department{Open: true, WindowEnd: &now}, false},
		{"closed flag overrides window", Department{Open: false, WindowStart: &before, WindowEnd: &after}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dept.AcceptingAt(now))
		})
	}
}
