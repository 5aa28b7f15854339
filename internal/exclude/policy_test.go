package exclude

import "testing"

func TestPolicyExcludeSystemPaths(t *testing.T) {
	p := NewDefault()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"dev root", "/dev", true},
		{"dev child", "/dev/null", true},
		{"tmp child", "/tmp/foo.txt", true},
		{"var folders", "/var/folders/a/b", true},
		{"ordinary home path", "/Users/alice/Documents/report.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Exclude(tt.path, "x", false); got != tt.want {
				t.Errorf("Exclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPolicyExcludeDevDirectories(t *testing.T) {
	p := NewDefault()

	tests := []struct {
		name        string
		basename    string
		isDirectory bool
		want        bool
	}{
		{"node_modules dir", "node_modules", true, true},
		{"node_modules as file", "node_modules", false, false},
		{"case insensitive git dir", ".GIT", true, true},
		{"ordinary dir", "src", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/Users/alice/project/" + tt.basename
			if got := p.Exclude(path, tt.basename, tt.isDirectory); got != tt.want {
				t.Errorf("Exclude(%q) = %v, want %v", tt.basename, got, tt.want)
			}
		})
	}
}

func TestPolicyExcludeVolumeMetadata(t *testing.T) {
	p := NewDefault()
	if !p.Exclude("/Volumes/External/.Spotlight-V100", ".Spotlight-V100", true) {
		t.Error("expected .Spotlight-V100 excluded")
	}
}

func TestPolicyHiddenFilesOptIn(t *testing.T) {
	p := NewDefault()
	path := "/Users/alice/.bashrc"

	if p.Exclude(path, ".bashrc", false) {
		t.Error("expected hidden files included by default")
	}

	p.SetSkipHidden(true)
	if !p.Exclude(path, ".bashrc", false) {
		t.Error("expected hidden files excluded once opted in")
	}
}

func TestPolicyDevExtensionsOptIn(t *testing.T) {
	p := NewDefault()
	path := "/Users/alice/project/main.o"

	if p.Exclude(path, "main.o", false) {
		t.Error("expected dev extensions included by default")
	}

	p.SetSkipDevExtensions(true)
	if !p.Exclude(path, "main.o", false) {
		t.Error("expected .o excluded once opted in")
	}
}

func TestPolicyAddDevDirectory(t *testing.T) {
	p := NewDefault()
	path := "/Users/alice/project/coverage"

	if p.Exclude(path, "coverage", true) {
		t.Error("expected coverage included before AddDevDirectory")
	}

	p.AddDevDirectory("coverage")
	if !p.Exclude(path, "coverage", true) {
		t.Error("expected coverage excluded after AddDevDirectory")
	}
}
