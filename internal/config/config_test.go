package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %s, muốn 8080", cfg.ServerPort)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, muốn 5432", cfg.DBPort)
	}
	if cfg.JWTExpirationHours != 24*time.Hour {
		t.Errorf("JWTExpirationHours = %v, muốn 24h", cfg.JWTExpirationHours)
	}
	if cfg.OneReservationPerUser {
		t.Error("OneReservationPerUser mặc định phải tắt")
	}
	if !cfg.EventWindowEnforced {
		t.Error("EventWindowEnforced mặc định phải bật")
	}
	if cfg.EventWindowLead != 30*time.Minute {
		t.Errorf("EventWindowLead = %v, muốn 30m", cfg.EventWindowLead)
	}
}

func TestLoadPolicyOverrides(t *testing.T) {
	t.Setenv("ONE_RESERVATION_PER_USER", "true")
	t.Setenv("EVENT_WINDOW_ENFORCED", "false")
	t.Setenv("EVENT_WINDOW_LEAD_MINUTES", "45")

	cfg := Load()

	if !cfg.OneReservationPerUser {
		t.Error("ONE_RESERVATION_PER_USER=true không được đọc")
	}
	if cfg.EventWindowEnforced {
		t.Error("EVENT_WINDOW_ENFORCED=false không được đọc")
	}
	if cfg.EventWindowLead != 45*time.Minute {
		t.Errorf("EventWindowLead = %v, muốn 45m", cfg.EventWindowLead)
	}
}

func TestGetBoolEnvInvalid(t *testing.T) {
	t.Setenv("EVENT_WINDOW_ENFORCED", "chắc chắn rồi")

	if !getBoolEnv("EVENT_WINDOW_ENFORCED", true) {
		t.Error("giá trị bool không parse được phải rơi về mặc định")
	}
}
