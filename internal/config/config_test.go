package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // no config file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CODENEXUS_DATA_DIR_NAME", ".metadata")
	t.Setenv("CODENEXUS_DEFAULT_GRAPH_DEPTH", "5")
	t.Setenv("CODENEXUS_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDirName != ".metadata" || cfg.DefaultGraphDepth != 5 || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Setenv("CODENEXUS_DATA_DIR_NAME", "nested/dir")
	if _, err := Load(); err == nil {
		t.Error("data_dir_name with a separator should be rejected")
	}

	t.Setenv("CODENEXUS_DATA_DIR_NAME", ".codenexus")
	t.Setenv("CODENEXUS_DEFAULT_GRAPH_DEPTH", "0")
	if _, err := Load(); err == nil {
		t.Error("default_graph_depth below 1 should be rejected")
	}
}
