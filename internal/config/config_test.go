package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Synthesis.Mode != "mock" {
		t.Fatalf("expected mock synthesis by default, got %q", cfg.Synthesis.Mode)
	}
	if cfg.Encoder.DefaultFormat != "wav" {
		t.Fatalf("expected default format wav, got %q", cfg.Encoder.DefaultFormat)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AURIS_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("AURIS_BUS_USERNAME", "alice")
	t.Setenv("AURIS_BUS_PASSWORD", "secret")
	t.Setenv("AURIS_BUS_TLS_INSECURE", "true")
	t.Setenv("AURIS_BUS_CONNECT_TIMEOUT_MS", "5000")
	t.Setenv("AURIS_SYNTHESIS_MODE", "exec")
	t.Setenv("AURIS_SYNTHESIS_COMMAND", "auris-tts --model base")
	t.Setenv("AURIS_SYNTHESIS_SAMPLE_RATE", "22050")
	t.Setenv("AURIS_SYNTHESIS_DEFAULT_SPEAKER_SEED", "42")
	t.Setenv("AURIS_HISTORY_PATH", "./tmp.db")
	t.Setenv("AURIS_HISTORY_RETENTION_DAYS", "7")
	t.Setenv("AURIS_HISTORY_MAX_REQUESTS", "123")
	t.Setenv("AURIS_HISTORY_VACUUM_ON_START", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Bus.Username != "alice" || cfg.Bus.Password != "secret" {
		t.Fatalf("expected credentials override")
	}
	if !cfg.Bus.TLSInsecure {
		t.Fatal("expected tls insecure override true")
	}
	if cfg.Bus.ConnectTimeout != 5000 {
		t.Fatalf("expected timeout 5000, got %d", cfg.Bus.ConnectTimeout)
	}
	if cfg.Synthesis.Mode != "exec" || cfg.Synthesis.Command != "auris-tts --model base" {
		t.Fatalf("expected synthesis overrides, got %+v", cfg.Synthesis)
	}
	if cfg.Synthesis.SampleRate != 22050 {
		t.Fatalf("expected sample rate override, got %d", cfg.Synthesis.SampleRate)
	}
	if cfg.Synthesis.DefaultSpeakerSeed != 42 {
		t.Fatalf("expected default speaker seed override, got %d", cfg.Synthesis.DefaultSpeakerSeed)
	}
	if cfg.History.Path != "./tmp.db" {
		t.Fatalf("expected history path override")
	}
	if cfg.History.RetentionDays != 7 {
		t.Fatalf("expected history retention days override")
	}
	if cfg.History.MaxRequests != 123 {
		t.Fatalf("expected history max requests override")
	}
	if !cfg.History.VacuumOnStart {
		t.Fatalf("expected history vacuum flag override")
	}
}

func TestValidateRejectsExecWithoutCommand(t *testing.T) {
	t.Setenv("AURIS_SYNTHESIS_MODE", "exec")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for exec mode without command")
	}
}
