package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"textflix/internal/logging"
	"textflix/internal/testsupport"
)

func TestBootstrapWithoutOptionalIntegrations(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testsupport.NewConfig(t, testsupport.WithRedisAddr(mr.Addr()))

	app, err := bootstrap(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("bootstrap returned error: %v", err)
	}
	defer app.Close()

	if app.webhook == nil {
		t.Fatal("expected webhook server")
	}
	if app.monitor != nil {
		t.Fatal("monitor must be disabled without radarr")
	}
}

func TestBootstrapFailsWithoutRedis(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRedisAddr("127.0.0.1:1"))

	if _, err := bootstrap(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}

func TestBuildLibraryDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lib, err := buildLibrary(cfg)
	if err != nil {
		t.Fatalf("buildLibrary returned error: %v", err)
	}
	if lib != nil {
		t.Fatal("expected nil library when radarr is not configured")
	}

	cfg = testsupport.NewConfig(t, testsupport.WithRadarr("http://127.0.0.1:7878", "key"))
	lib, err = buildLibrary(cfg)
	if err != nil {
		t.Fatalf("buildLibrary returned error: %v", err)
	}
	if lib == nil {
		t.Fatal("expected library client when radarr is configured")
	}
}
