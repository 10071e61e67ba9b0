package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/edukernel/xv6core/kernel"
)

func TestDefaultBootsRoundRobin(t *testing.T) {
	cfg := Default()
	bc, err := cfg.BootConfig()
	if err != nil {
		t.Fatal(err)
	}
	if bc.Policy != kernel.PolicyDefault {
		t.Fatalf("default config policy = %v, want PolicyDefault", bc.Policy)
	}
	if bc.NumCPUs != 1 {
		// Default() sets one CPU explicitly.
		t.Fatalf("NumCPUs = %d, want 1 (Default's single CPU)", bc.NumCPUs)
	}
}

func TestLoadDecodesTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.toml")
	contents := `
policy = "mlfq"
num_cpus = 4
waiting_limit = 15
mlfq_slice = [2, 4, 8, 16, 32]
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Policy != "mlfq" || cfg.NumCPUs != 4 || cfg.WaitingLimit != 15 {
		t.Fatalf("unexpected decode: %+v", cfg)
	}

	bc, err := cfg.BootConfig()
	if err != nil {
		t.Fatal(err)
	}
	if bc.Policy != kernel.PolicyMLFQ {
		t.Fatalf("policy = %v, want PolicyMLFQ", bc.Policy)
	}
	if bc.MLFQSlice != [kernel.NMLFQ]int{2, 4, 8, 16, 32} {
		t.Fatalf("MLFQSlice = %v", bc.MLFQSlice)
	}
	if bc.Log.GetLevel().String() != "debug" {
		t.Fatalf("log level = %v, want debug", bc.Log.GetLevel())
	}
}

func TestUnknownPolicyNameErrors(t *testing.T) {
	cfg := Default()
	cfg.Policy = "not-a-policy"
	if _, err := cfg.BootConfig(); err == nil {
		t.Fatal("expected an error for an unknown policy name")
	}
}
