package config

import (
	"testing"
	"time"

	"easyfilter/pkg/log"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConfig("test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HistoryKey != DefaultHistoryKey || cfg.HistoryLimit != DefaultHistoryLimit {
			t.Errorf("unexpected history settings: %s/%d", cfg.HistoryKey, cfg.HistoryLimit)
		}
		if cfg.Facing != FacingEnvironment {
			t.Errorf("expected rear camera by default, got %s", cfg.Facing)
		}
		if cfg.FrameInterval != 100*time.Millisecond {
			t.Errorf("frame interval = %s", cfg.FrameInterval)
		}
	})

	t.Run("disk frames come from positional args", func(t *testing.T) {
		cfg, err := NewConfig("scan", []string{"-hw", "Disk", "-store", "memory", "a.png", "b.pdf"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Frames) != 2 || cfg.Frames[1] != "b.pdf" {
			t.Errorf("frames = %v", cfg.Frames)
		}
		if cfg.Store != StoreMemory {
			t.Errorf("store = %s", cfg.Store)
		}
	})

	t.Run("log format", func(t *testing.T) {
		defer log.Configure(log.Current())
		cfg, err := NewConfig("tui", []string{"-log-format", "JSON", "-log-level", "warn"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.LogFormat != log.FormatJSON || cfg.LogLevel != log.LevelWarn {
			t.Errorf("log settings = %s/%s", cfg.LogFormat, cfg.LogLevel)
		}
		if got := log.Current().Format; got != log.FormatJSON {
			t.Errorf("logger format = %s", got)
		}
		if cfg, _ = NewConfig("tui", []string{"-log-format", "xml"}); cfg.LogFormat != log.FormatText {
			t.Errorf("unknown format should fall back to text, got %s", cfg.LogFormat)
		}
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		if _, err := NewConfig("test", []string{"-history-limit", "0"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		if _, err := NewConfig("test", []string{"-nope"}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestGetImageCommand(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		cmd     string
		wantArg string
		wantErr bool
	}{
		{"pi rear", Config{System: SystemPi, Facing: FacingEnvironment}, "libcamera-still", "0", false},
		{"pi front", Config{System: SystemPi, Facing: FacingUser}, "libcamera-still", "1", false},
		{"mac", Config{System: SystemMac}, "imagesnap", "out.jpg", false},
		{"linux default device", Config{System: SystemLinux}, "fswebcam", "/dev/video0", false},
		{"unknown", Config{System: "Amiga"}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := tt.cfg.GetImageCommand("out.jpg")
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if cmd != tt.cmd {
				t.Errorf("cmd = %s, want %s", cmd, tt.cmd)
			}
			found := tt.wantArg == ""
			for _, a := range args {
				if a == tt.wantArg {
					found = true
				}
			}
			if !found {
				t.Errorf("args %v missing %s", args, tt.wantArg)
			}
		})
	}
}
