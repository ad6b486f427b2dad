package main

import (
	"os"
	"os/exec"
	"testing"
)

func TestMainProcess_ExitsOnUnsupportedDriver(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMainProcess_ExitsOnUnsupportedDriver")
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"SERVER_ENV=development",
		"DB_DRIVER=oracle",
		"REDIS_URL=redis://127.0.0.1:0",
	)

	if err := cmd.Run(); err == nil {
		t.Fatalf("expected helper process to exit with error")
	}
}

func TestMainProcess_ExitsOnInvalidServerPort(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") == "2" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMainProcess_ExitsOnInvalidServerPort")
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=2",
		"SERVER_ENV=development",
		"SERVER_PORT=invalid-port",
		"REDIS_URL=redis://127.0.0.1:0",
		// Mongo connects lazily, so boot reaches the listener.
		"DB_DRIVER=mongo",
		"MONGODB_URI=mongodb://127.0.0.1:1",
		"MONGODB_CONNECT_TIMEOUT=200ms",
		"HEALTH_PROBE_TIMEOUT=200ms",
	)

	if err := cmd.Run(); err == nil {
		t.Fatalf("expected helper process to exit with error on invalid port")
	}
}
